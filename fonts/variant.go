// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fonts

import (
	"strconv"
	"strings"
)

// Weight is a numeric CSS font weight.
type Weight int

// Common weights.
const (
	WeightLight  Weight = 300
	WeightNormal Weight = 400
	WeightMedium Weight = 500
	WeightBold   Weight = 700
)

// ParseWeight parses a CSS font-weight keyword or number.
// Unknown values are WeightNormal.
func ParseWeight(s string) Weight {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return WeightNormal
	case "bold", "bolder":
		return WeightBold
	case "light", "lighter":
		return WeightLight
	case "medium":
		return WeightMedium
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 1000 {
		return WeightNormal
	}
	return Weight(n)
}

// Variant selects one face of a family.
type Variant struct {
	Weight Weight
	Italic bool
}

// ParseVariant builds a Variant from CSS font-style and font-weight values.
// "italic" and "oblique" both select the italic face.
func ParseVariant(style, weight string) Variant {
	st := strings.ToLower(strings.TrimSpace(style))
	return Variant{
		Weight: ParseWeight(weight),
		Italic: st == "italic" || strings.HasPrefix(st, "oblique"),
	}
}

// Bold reports whether the variant uses a bold face.
func (v Variant) Bold() bool { return v.Weight >= 600 }

// Medium reports whether the variant uses a medium face.
func (v Variant) Medium() bool { return v.Weight >= 500 && v.Weight < 600 }

// String returns a short name such as "bold italic".
func (v Variant) String() string {
	var name string
	switch {
	case v.Bold():
		name = "bold"
	case v.Medium():
		name = "medium"
	default:
		name = "regular"
	}
	if v.Italic {
		name += " italic"
	}
	return name
}

// splitFamilies splits a CSS font-family list and strips quotes.
func splitFamilies(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		f = strings.Trim(f, `"'`)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
