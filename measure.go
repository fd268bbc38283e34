// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package watermark

import (
	"math"

	"github.com/gogpu/gg/text"
)

// FontProvider resolves font descriptors to faces and measures text.
//
// Implementations never fail: a descriptor that cannot be resolved falls
// back to a default face. The fonts package provides the standard
// implementation; Face may return nil for providers that only measure.
type FontProvider interface {
	// Face returns a face for f at size pixels.
	Face(f Font, size float64) text.Face

	// Advance returns the horizontal advance of s rendered with f at size
	// pixels.
	Advance(f Font, size float64, s string) float64
}

// MeasureTile returns the content-derived tile size for cfg.
//
// For text content the width is the ceiling of the widest line and the
// height is lines*fontSize plus FontGap between consecutive lines. Image
// content, or a nil provider, yields DefaultTileWidth x DefaultTileHeight.
// Explicit dimensions in cfg are applied later by ComputeGeometry.
func MeasureTile(cfg Config, fonts FontProvider) Size {
	if cfg.IsImage() || fonts == nil {
		return Size{Width: DefaultTileWidth, Height: DefaultTileHeight}
	}

	lines := cfg.Lines()
	widest := 0.0
	for _, line := range lines {
		widest = max(widest, fonts.Advance(cfg.Font, cfg.Font.Size, line))
	}
	n := float64(len(lines))
	return Size{
		Width:  math.Ceil(widest),
		Height: cfg.Font.Size*n + (n-1)*FontGap,
	}
}
