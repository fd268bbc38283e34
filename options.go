// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package watermark

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Defaults used by DefaultConfig and by the geometry calculation.
const (
	// DefaultColor is the default text color.
	DefaultColor = "rgba(0,0,0,.2)"

	// DefaultFontSize is the default font size in CSS pixels.
	DefaultFontSize = 18.0

	// DefaultFontFamily is the default font family.
	DefaultFontFamily = "sans-serif"

	// DefaultRotate is the default rotation in degrees.
	DefaultRotate = -20.0

	// DefaultGap is the default horizontal and vertical gap.
	DefaultGap = 20.0

	// DefaultZIndex is the default z-order of the overlay element.
	DefaultZIndex = 9
)

// Option configures a Config during resolution.
// Use functional options to override defaults.
//
// Example:
//
//	cfg := watermark.Resolve(
//	    watermark.WithText("CONFIDENTIAL"),
//	    watermark.WithRotate(-30),
//	)
type Option func(*Config)

// DefaultConfig returns the configuration used when no option is given.
func DefaultConfig() Config {
	return Config{
		Gap:    Gap{X: DefaultGap, Y: DefaultGap},
		Rotate: DefaultRotate,
		ZIndex: DefaultZIndex,
		Font: Font{
			Color:  DefaultColor,
			Size:   DefaultFontSize,
			Style:  "normal",
			Weight: "normal",
			Family: DefaultFontFamily,
		},
	}
}

// Resolve merges opts over DefaultConfig and normalizes the result.
//
// Resolution never fails: negative gaps are clamped to zero, a missing font
// size, family, style, weight or color falls back to its default, and text
// lines are normalized to NFC.
func Resolve(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return normalize(cfg)
}

func normalize(cfg Config) Config {
	cfg = cfg.Clone()
	cfg.Gap.X = max(cfg.Gap.X, 0)
	cfg.Gap.Y = max(cfg.Gap.Y, 0)
	cfg.Width = max(cfg.Width, 0)
	cfg.Height = max(cfg.Height, 0)

	def := DefaultConfig().Font
	if cfg.Font.Size <= 0 {
		cfg.Font.Size = def.Size
	}
	if cfg.Font.Color == "" {
		cfg.Font.Color = def.Color
	}
	if cfg.Font.Style == "" {
		cfg.Font.Style = def.Style
	}
	if cfg.Font.Weight == "" {
		cfg.Font.Weight = def.Weight
	}
	if cfg.Font.Family == "" {
		cfg.Font.Family = def.Family
	}
	for i, line := range cfg.Content {
		cfg.Content[i] = norm.NFC.String(line)
	}
	return cfg
}

// WithContent sets the text lines of a text watermark.
func WithContent(lines ...string) Option {
	return func(c *Config) {
		c.Content = append([]string(nil), lines...)
	}
}

// WithText sets the watermark text, splitting it into lines at newlines.
func WithText(s string) Option {
	return func(c *Config) {
		c.Content = strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	}
}

// WithImage sets an image reference. An image takes precedence over text.
func WithImage(ref string) Option {
	return func(c *Config) {
		c.Image = ref
	}
}

// WithSize sets explicit tile dimensions in CSS pixels.
// A zero dimension is derived from the content.
func WithSize(width, height float64) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithGap sets the spacing between tiles.
func WithGap(x, y float64) Option {
	return func(c *Config) {
		c.Gap = Gap{X: x, Y: y}
	}
}

// WithOffset sets the position of the pattern inside the container.
func WithOffset(left, top float64) Option {
	return func(c *Config) {
		c.Offset = Offset{Left: left, Top: top}
	}
}

// WithRotate sets the rotation angle in degrees.
func WithRotate(degrees float64) Option {
	return func(c *Config) {
		c.Rotate = degrees
	}
}

// WithZIndex sets the z-order of the overlay element.
func WithZIndex(z int) Option {
	return func(c *Config) {
		c.ZIndex = z
	}
}

// WithFont merges the non-empty fields of f over the current font.
func WithFont(f Font) Option {
	return func(c *Config) {
		if f.Color != "" {
			c.Font.Color = f.Color
		}
		if f.Size > 0 {
			c.Font.Size = f.Size
		}
		if f.Style != "" {
			c.Font.Style = f.Style
		}
		if f.Weight != "" {
			c.Font.Weight = f.Weight
		}
		if f.Family != "" {
			c.Font.Family = f.Family
		}
	}
}

// WithFontColor sets the text color.
func WithFontColor(color string) Option {
	return WithFont(Font{Color: color})
}

// WithFontSize sets the font size in CSS pixels.
func WithFontSize(size float64) Option {
	return WithFont(Font{Size: size})
}

// WithFontFamily sets the font family.
func WithFontFamily(family string) Option {
	return WithFont(Font{Family: family})
}

// WithConfig replaces the configuration being resolved with cfg.
// Options applied afterwards still override it.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg.Clone()
	}
}
