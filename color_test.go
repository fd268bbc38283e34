// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package watermark

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	def := color.NRGBA{A: 51}
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"rgba(0,0,0,.2)", def},
		{"rgba(200, 0, 0, 0.5)", color.NRGBA{R: 200, A: 128}},
		{"#ff0000", color.NRGBA{R: 255, A: 255}},
		{"#00ff0080", color.NRGBA{G: 255, A: 128}},
		{"red", color.NRGBA{R: 255, A: 255}},
		{"transparent", color.NRGBA{}},
		{"", def},
		{"not-a-color", def},
	}
	for _, tt := range tests {
		if got := ParseColor(tt.in); got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
