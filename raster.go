// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package watermark

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/gogpu/gg/text"
	"github.com/gogpu/watermark/canvas"
)

// Surface is the 2D raster drawing surface the rasterizer draws on.
//
// The method set mirrors an HTML canvas 2D context: Push and Pop save and
// restore the transform and text state, Translate and Rotate post-multiply
// the current transform, and FillText/DrawImage draw through it.
// [canvas.Canvas] is the standard implementation.
type Surface interface {
	Push()
	Pop()
	Translate(x, y float64)
	// Rotate rotates by angle radians.
	Rotate(angle float64)

	SetFont(face text.Face)
	SetColor(c color.Color)
	SetTextAlign(a canvas.Align)
	SetTextBaseline(b canvas.Baseline)
	FillText(s string, x, y float64)

	// DrawImage draws img scaled to w x h with its top-left corner at (x, y).
	DrawImage(img image.Image, x, y, w, h float64)

	EncodePNG(w io.Writer) error
}

// SurfaceFactory creates a fresh surface of the given pixel size.
type SurfaceFactory func(width, height int) Surface

// NewCanvasSurface is the default SurfaceFactory.
func NewCanvasSurface(width, height int) Surface {
	return canvas.New(width, height)
}

// Content is what gets drawn into each tile.
// When Image is non-nil it is drawn instead of the text lines.
type Content struct {
	Lines []string
	Image image.Image

	// Face is the text face at device-pixel size. A nil face draws nothing.
	Face text.Face

	// FontSize is the font size in CSS pixels.
	FontSize float64

	Color color.Color
}

// TextContent builds the text content of cfg for a pass with ratio dpr.
func TextContent(cfg Config, dpr float64, fonts FontProvider) Content {
	c := Content{
		Lines:    cfg.Lines(),
		FontSize: cfg.Font.Size,
		Color:    ParseColor(cfg.Font.Color),
	}
	if fonts != nil {
		c.Face = fonts.Face(cfg.Font, cfg.Font.Size*dpr)
	}
	return c
}

// Rasterize draws content at both placements of g onto s.
//
// Each copy is drawn with the surface rotated about its own pivot: save,
// rotate about the primary pivot, draw, restore; then the same about the
// alternate pivot. The two copies differ only by one tiling period, which
// is what lets the raster repeat without a seam.
func Rasterize(s Surface, g Geometry, content Content) {
	angle := g.Radians()
	for _, p := range []Placement{g.Primary, g.Alternate} {
		s.Push()
		rotateAbout(s, angle, p.PivotX, p.PivotY)
		if content.Image != nil {
			s.DrawImage(content.Image, p.DrawX, p.DrawY, g.DrawWidth, g.DrawHeight)
		} else {
			fillLines(s, g, content, p)
		}
		s.Pop()
	}
}

// rotateAbout rotates s about (x, y): move the pivot to the origin,
// rotate, move it back.
func rotateAbout(s Surface, angle, x, y float64) {
	s.Translate(x, y)
	s.Rotate(angle)
	s.Translate(-x, -y)
}

func fillLines(s Surface, g Geometry, content Content, p Placement) {
	dpr := g.DevicePixelRatio
	size := content.FontSize * dpr
	step := size + FontGap*dpr

	s.SetFont(content.Face)
	if content.Color != nil {
		s.SetColor(content.Color)
	}
	s.SetTextAlign(canvas.AlignCenter)
	s.SetTextBaseline(canvas.BaselineTop)
	s.Translate(g.DrawWidth/2, 0)
	for i, line := range content.Lines {
		s.FillText(line, p.DrawX, p.DrawY+float64(i)*step)
	}
}

// Payload is an encoded tile raster.
type Payload struct {
	// PNG holds the encoded raster.
	PNG []byte

	// TileWidth is the tile width in CSS pixels used to size the pattern.
	TileWidth float64
}

// DataURI returns the payload as a data URI for a CSS url() reference.
func (p Payload) DataURI() string {
	return dataURI("image/png", p.PNG)
}

// Encode encodes s into a Payload for the pass described by g.
func Encode(s Surface, g Geometry) (Payload, error) {
	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		return Payload{}, fmt.Errorf("watermark: encode raster: %w", err)
	}
	return Payload{PNG: buf.Bytes(), TileWidth: g.TileWidth}, nil
}
