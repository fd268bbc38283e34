// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config reads watermark configuration from TOML files and JSON
// request bodies.
//
// Both formats decode into a Partial whose fields are all optional; only
// the fields that are present override defaults when the Partial is turned
// into watermark options.
//
// Example file:
//
//	content = ["CONFIDENTIAL", "do not share"]
//	gap = [24, 24]
//	rotate = -30
//	device_pixel_ratio = 2
//
//	[font]
//	color = "rgba(200, 0, 0, .25)"
//	size = 20
//	family = "monospace"
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gogpu/watermark"
)

// Errors returned by Validate.
var (
	// ErrPairLength is returned when gap or offset does not have two values.
	ErrPairLength = errors.New("config: gap and offset take exactly two values")

	// ErrNotFinite is returned for NaN or infinite numbers.
	ErrNotFinite = errors.New("config: number is not finite")
)

// Font is the optional font section.
type Font struct {
	Color  *string  `toml:"color" json:"color,omitempty"`
	Size   *float64 `toml:"size" json:"size,omitempty"`
	Style  *string  `toml:"style" json:"style,omitempty"`
	Weight *Weight  `toml:"weight" json:"weight,omitempty"`
	Family *string  `toml:"family" json:"family,omitempty"`
}

// Partial is a watermark configuration in which every field is optional.
type Partial struct {
	Width   *float64  `toml:"width" json:"width,omitempty"`
	Height  *float64  `toml:"height" json:"height,omitempty"`
	Content []string  `toml:"content" json:"content,omitempty"`
	Image   *string   `toml:"image" json:"image,omitempty"`
	Gap     []float64 `toml:"gap" json:"gap,omitempty"`
	Offset  []float64 `toml:"offset" json:"offset,omitempty"`
	Rotate  *float64  `toml:"rotate" json:"rotate,omitempty"`
	ZIndex  *int      `toml:"z_index" json:"zIndex,omitempty"`
	Font    *Font     `toml:"font" json:"font,omitempty"`

	DevicePixelRatio *float64 `toml:"device_pixel_ratio" json:"devicePixelRatio,omitempty"`
}

// Server is the optional server section of a file.
type Server struct {
	Addr string `toml:"addr"`

	// AllowFiles lets requests reference images on the local filesystem.
	AllowFiles bool `toml:"allow_files"`

	// AllowRemote lets requests reference http(s) images. The server
	// then fetches any URL a caller sends.
	AllowRemote bool `toml:"allow_remote"`
}

// File is the content of a configuration file.
type File struct {
	Partial

	// SystemFonts enables lookup of installed fonts by family name.
	SystemFonts bool `toml:"system_fonts"`

	// Hinting is the glyph hinting mode: none, vertical or full.
	Hinting string `toml:"hinting"`

	Server Server `toml:"server"`
}

// Load reads a TOML configuration file. Unknown keys are logged and
// otherwise ignored.
func Load(path string) (File, error) {
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return File{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		watermark.Logger().Warn("config: unknown keys ignored",
			"file", path, "keys", strings.Join(keys, ", "))
	}
	if err := f.Validate(); err != nil {
		return File{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return f, nil
}

// Validate checks the shape of p and rejects NaN and infinite numbers.
// Finite values are never rejected; the resolver clamps them.
func (p Partial) Validate() error {
	if p.Gap != nil && len(p.Gap) != 2 {
		return fmt.Errorf("%w: gap has %d", ErrPairLength, len(p.Gap))
	}
	if p.Offset != nil && len(p.Offset) != 2 {
		return fmt.Errorf("%w: offset has %d", ErrPairLength, len(p.Offset))
	}

	numbers := map[string]*float64{
		"width":              p.Width,
		"height":             p.Height,
		"rotate":             p.Rotate,
		"device_pixel_ratio": p.DevicePixelRatio,
	}
	if p.Font != nil {
		numbers["font.size"] = p.Font.Size
	}
	for i := range p.Gap {
		numbers[fmt.Sprintf("gap[%d]", i)] = &p.Gap[i]
	}
	for i := range p.Offset {
		numbers[fmt.Sprintf("offset[%d]", i)] = &p.Offset[i]
	}
	for _, name := range slices.Sorted(maps.Keys(numbers)) {
		if v := numbers[name]; v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("%w: %s", ErrNotFinite, name)
		}
	}
	return nil
}

// Options returns resolver options for the fields present in p.
// Call Validate first; malformed pairs are skipped.
func (p Partial) Options() []watermark.Option {
	var opts []watermark.Option
	if p.Width != nil || p.Height != nil {
		opts = append(opts, func(c *watermark.Config) {
			if p.Width != nil {
				c.Width = *p.Width
			}
			if p.Height != nil {
				c.Height = *p.Height
			}
		})
	}
	if p.Content != nil {
		opts = append(opts, watermark.WithContent(p.Content...))
	}
	if p.Image != nil {
		opts = append(opts, watermark.WithImage(*p.Image))
	}
	if len(p.Gap) == 2 {
		opts = append(opts, watermark.WithGap(p.Gap[0], p.Gap[1]))
	}
	if len(p.Offset) == 2 {
		opts = append(opts, watermark.WithOffset(p.Offset[0], p.Offset[1]))
	}
	if p.Rotate != nil {
		opts = append(opts, watermark.WithRotate(*p.Rotate))
	}
	if p.ZIndex != nil {
		opts = append(opts, watermark.WithZIndex(*p.ZIndex))
	}
	if p.Font != nil {
		opts = append(opts, watermark.WithFont(p.Font.font()))
	}
	return opts
}

// Env returns the host environment described by p, using fallback when
// p has no device pixel ratio.
func (p Partial) Env(fallback watermark.Env) watermark.Env {
	if p.DevicePixelRatio != nil {
		return watermark.Env{DevicePixelRatio: *p.DevicePixelRatio}
	}
	return fallback
}

// Merge returns p with the fields present in over replacing its own.
func (p Partial) Merge(over Partial) Partial {
	out := p
	if over.Width != nil {
		out.Width = over.Width
	}
	if over.Height != nil {
		out.Height = over.Height
	}
	if over.Content != nil {
		out.Content = over.Content
	}
	if over.Image != nil {
		out.Image = over.Image
	}
	if over.Gap != nil {
		out.Gap = over.Gap
	}
	if over.Offset != nil {
		out.Offset = over.Offset
	}
	if over.Rotate != nil {
		out.Rotate = over.Rotate
	}
	if over.ZIndex != nil {
		out.ZIndex = over.ZIndex
	}
	if over.Font != nil {
		merged := Font{}
		if p.Font != nil {
			merged = *p.Font
		}
		merged = merged.merge(*over.Font)
		out.Font = &merged
	}
	if over.DevicePixelRatio != nil {
		out.DevicePixelRatio = over.DevicePixelRatio
	}
	return out
}

func (f Font) merge(over Font) Font {
	if over.Color != nil {
		f.Color = over.Color
	}
	if over.Size != nil {
		f.Size = over.Size
	}
	if over.Style != nil {
		f.Style = over.Style
	}
	if over.Weight != nil {
		f.Weight = over.Weight
	}
	if over.Family != nil {
		f.Family = over.Family
	}
	return f
}

func (f Font) font() watermark.Font {
	var out watermark.Font
	if f.Color != nil {
		out.Color = *f.Color
	}
	if f.Size != nil {
		out.Size = *f.Size
	}
	if f.Style != nil {
		out.Style = *f.Style
	}
	if f.Weight != nil {
		out.Weight = string(*f.Weight)
	}
	if f.Family != nil {
		out.Family = *f.Family
	}
	return out
}
