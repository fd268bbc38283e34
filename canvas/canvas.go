// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package canvas

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Align is the horizontal text alignment relative to the FillText x.
type Align int

// Text alignments.
const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// String returns the CSS name of the alignment.
func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// factor is the fraction of the text width left of the anchor.
func (a Align) factor() float64 {
	switch a {
	case AlignCenter:
		return 0.5
	case AlignRight:
		return 1
	default:
		return 0
	}
}

// Baseline is the vertical text anchor relative to the FillText y.
type Baseline int

// Text baselines.
const (
	BaselineAlphabetic Baseline = iota
	BaselineTop
	BaselineMiddle
	BaselineBottom
)

// String returns the CSS name of the baseline.
func (b Baseline) String() string {
	switch b {
	case BaselineTop:
		return "top"
	case BaselineMiddle:
		return "middle"
	case BaselineBottom:
		return "bottom"
	default:
		return "alphabetic"
	}
}

// offset is the distance from the top of the line box to the anchor.
func (b Baseline) offset(m text.Metrics) float64 {
	switch b {
	case BaselineTop:
		return 0
	case BaselineMiddle:
		return (m.Ascent + m.Descent) / 2
	case BaselineBottom:
		return m.Ascent + m.Descent
	default:
		return m.Ascent
	}
}

// state is the part of the drawing state saved by Push.
type state struct {
	face     text.Face
	color    color.Color
	align    Align
	baseline Baseline
}

// Canvas is an offscreen RGBA raster surface.
type Canvas struct {
	dc     *gg.Context
	dst    *image.RGBA
	interp xdraw.Interpolator

	state state
	saved []state
}

// New creates a transparent canvas of the given size.
// Non-positive dimensions are raised to 1.
func New(width, height int) *Canvas {
	width = max(width, 1)
	height = max(height, 1)

	// The RGBA view and the gg context share one pixel buffer.
	pm := gg.NewPixmap(width, height)
	dst := &image.RGBA{
		Pix:    pm.Data(),
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	return &Canvas{
		dc:     gg.NewContext(width, height, gg.WithPixmap(pm)),
		dst:    dst,
		interp: xdraw.BiLinear,
		state:  state{color: color.Black},
	}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.dst.Rect.Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.dst.Rect.Dy() }

// Image returns the canvas pixels. The image aliases the canvas buffer.
func (c *Canvas) Image() *image.RGBA { return c.dst }

// SetInterpolator sets the resampler used to composite text and images.
// The default is bilinear.
func (c *Canvas) SetInterpolator(i xdraw.Interpolator) {
	if i != nil {
		c.interp = i
	}
}

// Push saves the transform and text state.
func (c *Canvas) Push() {
	c.dc.Push()
	c.saved = append(c.saved, c.state)
}

// Pop restores the state saved by the matching Push.
// Pop without a matching Push does nothing.
func (c *Canvas) Pop() {
	if len(c.saved) == 0 {
		return
	}
	c.dc.Pop()
	c.state = c.saved[len(c.saved)-1]
	c.saved = c.saved[:len(c.saved)-1]
}

// Translate applies a translation to the current transform.
func (c *Canvas) Translate(x, y float64) { c.dc.Translate(x, y) }

// Rotate applies a rotation (angle in radians) to the current transform.
func (c *Canvas) Rotate(angle float64) { c.dc.Rotate(angle) }

// Transform returns the current transform.
func (c *Canvas) Transform() gg.Matrix { return c.dc.GetTransform() }

// SetFont sets the face used by FillText. A nil face disables text.
func (c *Canvas) SetFont(face text.Face) { c.state.face = face }

// SetColor sets the text color.
func (c *Canvas) SetColor(col color.Color) {
	if col != nil {
		c.state.color = col
	}
}

// SetTextAlign sets the horizontal text alignment.
func (c *Canvas) SetTextAlign(a Align) { c.state.align = a }

// SetTextBaseline sets the vertical text anchor.
func (c *Canvas) SetTextBaseline(b Baseline) { c.state.baseline = b }

// MeasureText returns the advance width of s in the current face.
func (c *Canvas) MeasureText(s string) float64 {
	if c.state.face == nil || s == "" {
		return 0
	}
	return c.state.face.Advance(s)
}

// FillText draws s anchored at (x, y) according to the current alignment
// and baseline. The text is laid out upright and then transformed, so it
// follows any rotation in the current transform.
func (c *Canvas) FillText(s string, x, y float64) {
	face := c.state.face
	if s == "" || face == nil {
		return
	}

	m := face.Metrics()
	width := face.Advance(s)
	height := m.Ascent + m.Descent
	if width <= 0 || height <= 0 {
		return
	}

	// Glyphs may overhang their advance box; leave room on every side.
	pad := math.Ceil(height / 4)
	sw := int(math.Ceil(width + 2*pad))
	sh := int(math.Ceil(height + 2*pad))
	sprite := image.NewRGBA(image.Rect(0, 0, sw, sh))
	text.Draw(sprite, s, face, pad, pad+m.Ascent, c.state.color)

	left := x - width*c.state.align.factor() - pad
	top := y - c.state.baseline.offset(m) - pad
	c.composite(sprite, left, top, float64(sw), float64(sh))
}

// DrawImage draws img scaled to w x h with its top-left corner at (x, y)
// in user space. Non-positive sizes use the image's own dimensions.
func (c *Canvas) DrawImage(img image.Image, x, y, w, h float64) {
	if img == nil {
		return
	}
	b := img.Bounds()
	if w <= 0 {
		w = float64(b.Dx())
	}
	if h <= 0 {
		h = float64(b.Dy())
	}
	c.composite(img, x, y, w, h)
}

// composite draws src into the rectangle (x, y, w, h) of user space,
// mapped through the current transform, with source-over blending.
func (c *Canvas) composite(src image.Image, x, y, w, h float64) {
	sb := src.Bounds()
	if sb.Empty() || w <= 0 || h <= 0 {
		return
	}

	m := c.dc.GetTransform().
		Multiply(gg.Translate(x, y)).
		Multiply(gg.Scale(w/float64(sb.Dx()), h/float64(sb.Dy()))).
		Multiply(gg.Translate(-float64(sb.Min.X), -float64(sb.Min.Y)))

	s2d := f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}
	c.interp.Transform(c.dst, s2d, src, sb, xdraw.Over, nil)
}

// EncodePNG writes the canvas as PNG to w.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.dst)
}
