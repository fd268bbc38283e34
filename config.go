// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package watermark

// Config is a fully resolved watermark configuration.
//
// A Config is an immutable snapshot: every render pass recomputes all
// derived state from it and nothing is carried over between passes.
// Use [Resolve] to build one from defaults and options; the rendering core
// applies no further defaulting.
type Config struct {
	// Width and Height are the tile dimensions in CSS pixels.
	// Zero means the dimension is derived from the content.
	Width, Height float64

	// Content holds the text lines of a text watermark.
	Content []string

	// Image is an image reference: a file path, an http(s) URL or a data URI.
	// When set it takes precedence over Content.
	Image string

	// Gap is the spacing between tile origins. Both values are non-negative.
	Gap Gap

	// Offset positions the whole pattern relative to the container.
	Offset Offset

	// Rotate is the rotation angle in degrees, interpreted modulo 360.
	Rotate float64

	// ZIndex is the z-order of the overlay element.
	ZIndex int

	// Font describes text rendering. It is ignored for image content.
	Font Font
}

// Gap is the horizontal and vertical spacing between tiles.
type Gap struct {
	X, Y float64
}

// Offset is the left/top position of the pattern inside its container.
type Offset struct {
	Left, Top float64
}

// Font is a CSS-like font descriptor.
type Font struct {
	// Color is a CSS color string such as "rgba(0,0,0,.2)" or "#ff0000".
	Color string

	// Size is the font size in CSS pixels.
	Size float64

	// Style is "normal", "italic" or "oblique".
	Style string

	// Weight is "normal", "bold", "light" or a numeric weight like "600".
	Weight string

	// Family is a font family name, a generic family ("sans-serif",
	// "monospace") or a path to a TrueType/OpenType file.
	Family string
}

// Env carries host environment information needed by the geometry
// calculation.
type Env struct {
	// DevicePixelRatio is the ratio of device pixels to CSS pixels.
	// Values <= 0 are treated as 1.
	DevicePixelRatio float64
}

// ratio returns the effective device pixel ratio.
func (e Env) ratio() float64 {
	if e.DevicePixelRatio <= 0 {
		return 1
	}
	return e.DevicePixelRatio
}

// IsImage reports whether the configuration describes an image watermark.
func (c Config) IsImage() bool {
	return c.Image != ""
}

// Lines returns the text lines to draw. A text watermark without content
// still has one (empty) line so that its tile keeps the height of one line.
func (c Config) Lines() []string {
	if len(c.Content) == 0 {
		return []string{""}
	}
	return c.Content
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	if c.Content != nil {
		c.Content = append([]string(nil), c.Content...)
	}
	return c
}
