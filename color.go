// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package watermark

import (
	"image/color"

	"github.com/mazznoer/csscolorparser"
)

// ParseColor parses a CSS color string. Unparseable input falls back to
// DefaultColor; the failure is logged at debug level, never returned.
func ParseColor(s string) color.NRGBA {
	c, err := csscolorparser.Parse(s)
	if err != nil {
		Logger().Debug("watermark: invalid color, using default", "color", s, "err", err)
		c, _ = csscolorparser.Parse(DefaultColor)
	}
	r, g, b, a := c.RGBA255()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}
