// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package imageload

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Fallback SVG raster size for documents without a usable viewBox.
const (
	svgDefaultWidth  = 120
	svgDefaultHeight = 64
)

// svgScale rasterizes SVG documents above their nominal size so the
// rasterizer's downscale keeps edges sharp.
const svgScale = 2

// svgMaxSide bounds the longer side of an SVG raster. Larger documents
// are scaled down, keeping their aspect ratio.
const svgMaxSide = 4096

func isSVG(data []byte, hint string) bool {
	hint = strings.ToLower(hint)
	if strings.Contains(hint, "svg") {
		return true
	}
	head := bytes.TrimSpace(data[:min(len(data), 512)])
	return bytes.HasPrefix(head, []byte("<svg")) ||
		(bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg")))
}

func decodeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("imageload: decode SVG: %w", err)
	}

	pw, ph := svgRasterSize(icon.ViewBox.W, icon.ViewBox.H)

	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	icon.SetTarget(0, 0, float64(pw), float64(ph))
	scanner := rasterx.NewScannerGV(pw, ph, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(pw, ph, scanner), 1)
	return img, nil
}

// svgRasterSize returns the raster size for a viewBox of w x h.
func svgRasterSize(w, h float64) (int, int) {
	if !(w > 0 && h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		w, h = svgDefaultWidth, svgDefaultHeight
	}
	w, h = w*svgScale, h*svgScale
	if longest := max(w, h); longest > svgMaxSide {
		w, h = w*svgMaxSide/longest, h*svgMaxSide/longest
	}
	return max(int(math.Ceil(w)), 1), max(int(math.Ceil(h)), 1)
}
