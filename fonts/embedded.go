// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fonts

import (
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Embedded family names.
const (
	FamilySans = "Go"
	FamilyMono = "Go Mono"
)

// embeddedFamily maps a requested family to an embedded family name.
// It reports false for families that are not embedded.
func embeddedFamily(family string) (string, bool) {
	switch strings.ToLower(family) {
	case "sans-serif", "system-ui", "ui-sans-serif", "go", "go regular":
		return FamilySans, true
	case "monospace", "ui-monospace", "go mono":
		return FamilyMono, true
	}
	return "", false
}

// embeddedTTF returns the font data of an embedded family in variant v.
func embeddedTTF(family string, v Variant) []byte {
	if family == FamilyMono {
		switch {
		case v.Bold() && v.Italic:
			return gomonobolditalic.TTF
		case v.Bold():
			return gomonobold.TTF
		case v.Italic:
			return gomonoitalic.TTF
		default:
			return gomono.TTF
		}
	}
	switch {
	case v.Bold() && v.Italic:
		return gobolditalic.TTF
	case v.Bold():
		return gobold.TTF
	case v.Medium() && v.Italic:
		return gomediumitalic.TTF
	case v.Medium():
		return gomedium.TTF
	case v.Italic:
		return goitalic.TTF
	default:
		return goregular.TTF
	}
}
