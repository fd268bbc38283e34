// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package watermark

import (
	"encoding/base64"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// OverlayStyle maps CSS property names to values for the overlay element.
// It is derived from a Geometry and carries no behavior of its own.
type OverlayStyle map[string]string

// propertyOrder is the order CSS renders properties in. Unknown properties
// follow in lexical order.
var propertyOrder = []string{
	"z-index",
	"position",
	"left",
	"top",
	"width",
	"height",
	"pointer-events",
	"background-repeat",
	"background-position",
	"background-image",
	"background-size",
}

// ComputeOverlayStyle returns the style of the overlay element.
//
// The overlay fills its container, never intercepts pointer input and
// repeats the tile in both directions. A positive offset insets the
// overlay itself and resets the background anchor on that axis; otherwise
// the raw offset anchors the background.
func ComputeOverlayStyle(g Geometry, offset Offset, zIndex int) OverlayStyle {
	style := OverlayStyle{
		"z-index":           strconv.Itoa(zIndex),
		"position":          "absolute",
		"left":              "0",
		"top":               "0",
		"width":             "100%",
		"height":            "100%",
		"pointer-events":    "none",
		"background-repeat": "repeat",
		"background-size":   px(g.BackgroundSize()),
	}

	left, top := offset.Left, offset.Top
	if left > 0 {
		style["left"] = px(left)
		style["width"] = "calc(100% - " + px(left) + ")"
		left = 0
	}
	if top > 0 {
		style["top"] = px(top)
		style["height"] = "calc(100% - " + px(top) + ")"
		top = 0
	}
	style["background-position"] = px(left) + " " + px(top)
	return style
}

// WithBackground returns a copy of s referencing the image at url.
func (s OverlayStyle) WithBackground(url string) OverlayStyle {
	out := maps.Clone(s)
	if out == nil {
		out = OverlayStyle{}
	}
	out["background-image"] = "url(" + url + ")"
	return out
}

// CSS renders s as a declaration list ("prop: value; prop: value;").
func (s OverlayStyle) CSS() string {
	var b strings.Builder
	for _, key := range s.keys() {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(s[key])
		b.WriteByte(';')
	}
	return b.String()
}

func (s OverlayStyle) keys() []string {
	keys := make([]string, 0, len(s))
	for _, k := range propertyOrder {
		if _, ok := s[k]; ok {
			keys = append(keys, k)
		}
	}
	var rest []string
	for k := range s {
		if !slices.Contains(propertyOrder, k) {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(keys, rest...)
}

// px formats v as a CSS pixel length using the shortest representation.
func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
