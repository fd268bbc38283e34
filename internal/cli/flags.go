// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"github.com/gogpu/watermark/internal/config"
	"github.com/spf13/pflag"
)

// configFlags are the watermark configuration flags shared by commands.
// Only flags set on the command line override the configuration file.
type configFlags struct {
	content     []string
	image       string
	width       float64
	height      float64
	gap         []float64
	offset      []float64
	rotate      float64
	zIndex      int
	fontColor   string
	fontSize    float64
	fontStyle   string
	fontWeight  string
	fontFamily  string
	dpr         float64
	systemFonts bool
	hinting     string
}

func (f *configFlags) register(fs *pflag.FlagSet) {
	fs.StringArrayVarP(&f.content, "text", "t", nil, "text line (repeatable)")
	fs.StringVarP(&f.image, "image", "i", "", "image file, URL or data URI (replaces text)")
	fs.Float64Var(&f.width, "width", 0, "tile width in CSS pixels (default: measured)")
	fs.Float64Var(&f.height, "height", 0, "tile height in CSS pixels (default: measured)")
	fs.Float64SliceVar(&f.gap, "gap", nil, "horizontal and vertical gap, e.g. 20,20")
	fs.Float64SliceVar(&f.offset, "offset", nil, "pattern offset left,top")
	fs.Float64VarP(&f.rotate, "rotate", "r", 0, "rotation in degrees (default -20)")
	fs.IntVar(&f.zIndex, "z-index", 0, "overlay z-index (default 9)")
	fs.StringVar(&f.fontColor, "font-color", "", `text color, e.g. "rgba(0,0,0,.2)"`)
	fs.Float64Var(&f.fontSize, "font-size", 0, "font size in CSS pixels (default 18)")
	fs.StringVar(&f.fontStyle, "font-style", "", "normal or italic")
	fs.StringVar(&f.fontWeight, "font-weight", "", "normal, bold or 100-900")
	fs.StringVar(&f.fontFamily, "font-family", "", "font family list or font file")
	fs.Float64Var(&f.dpr, "dpr", 0, "device pixel ratio (default 1)")
	fs.BoolVar(&f.systemFonts, "system-fonts", false, "look up installed fonts by family")
	fs.StringVar(&f.hinting, "hinting", "", "glyph hinting: none, vertical or full (default full)")
}

// partial returns the configuration set by the flags that were changed.
func (f *configFlags) partial(fs *pflag.FlagSet) config.Partial {
	var p config.Partial
	changed := fs.Changed

	if changed("text") {
		p.Content = f.content
	}
	if changed("image") {
		p.Image = &f.image
	}
	if changed("width") {
		p.Width = &f.width
	}
	if changed("height") {
		p.Height = &f.height
	}
	if changed("gap") {
		p.Gap = f.gap
	}
	if changed("offset") {
		p.Offset = f.offset
	}
	if changed("rotate") {
		p.Rotate = &f.rotate
	}
	if changed("z-index") {
		p.ZIndex = &f.zIndex
	}
	if changed("dpr") {
		p.DevicePixelRatio = &f.dpr
	}

	var font config.Font
	set := false
	if changed("font-color") {
		font.Color, set = &f.fontColor, true
	}
	if changed("font-size") {
		font.Size, set = &f.fontSize, true
	}
	if changed("font-style") {
		font.Style, set = &f.fontStyle, true
	}
	if changed("font-weight") {
		w := config.Weight(f.fontWeight)
		font.Weight, set = &w, true
	}
	if changed("font-family") {
		font.Family, set = &f.fontFamily, true
	}
	if set {
		p.Font = &font
	}
	return p
}
