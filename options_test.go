// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package watermark

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolveDefaults(t *testing.T) {
	got := Resolve()
	want := Config{
		Gap:    Gap{X: 20, Y: 20},
		Rotate: -20,
		ZIndex: 9,
		Font: Font{
			Color:  "rgba(0,0,0,.2)",
			Size:   18,
			Style:  "normal",
			Weight: "normal",
			Family: "sans-serif",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveOptions(t *testing.T) {
	got := Resolve(
		WithText("Top secret\r\nInternal"),
		WithSize(200, 0),
		WithGap(10, 30),
		WithOffset(5, -5),
		WithRotate(45),
		WithZIndex(100),
		WithFont(Font{Size: 24, Weight: "bold"}),
		WithFontColor("#333"),
		WithFontFamily("monospace"),
	)
	want := Config{
		Width:   200,
		Content: []string{"Top secret", "Internal"},
		Gap:     Gap{X: 10, Y: 30},
		Offset:  Offset{Left: 5, Top: -5},
		Rotate:  45,
		ZIndex:  100,
		Font: Font{
			Color:  "#333",
			Size:   24,
			Style:  "normal",
			Weight: "bold",
			Family: "monospace",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveClamps(t *testing.T) {
	got := Resolve(WithGap(-5, -1), WithSize(-10, -3), WithFontSize(-2), nil)
	if got.Gap != (Gap{}) {
		t.Errorf("Gap = %+v, want zero", got.Gap)
	}
	if got.Width != 0 || got.Height != 0 {
		t.Errorf("size = %v x %v, want 0 x 0", got.Width, got.Height)
	}
	if got.Font.Size != DefaultFontSize {
		t.Errorf("Font.Size = %v, want %v", got.Font.Size, DefaultFontSize)
	}
}

func TestResolveNormalizesText(t *testing.T) {
	got := Resolve(WithContent("Cafe\u0301"))
	if got.Content[0] != "Caf\u00e9" {
		t.Errorf("Content[0] = %+q, want NFC %+q", got.Content[0], "Caf\u00e9")
	}
}

func TestResolveImagePrecedence(t *testing.T) {
	cfg := Resolve(WithText("A"), WithImage("logo.svg"))
	if !cfg.IsImage() {
		t.Error("IsImage() = false with an image reference")
	}
	if Resolve(WithText("A")).IsImage() {
		t.Error("IsImage() = true for text")
	}
}

func TestWithConfig(t *testing.T) {
	base := Resolve(WithContent("a", "b"), WithRotate(10))
	got := Resolve(WithConfig(base), WithRotate(30))

	if got.Rotate != 30 {
		t.Errorf("Rotate = %v, want 30", got.Rotate)
	}
	got.Content[0] = "changed"
	if base.Content[0] != "a" {
		t.Error("resolved config aliases the WithConfig source")
	}
}

func TestWithContentCopies(t *testing.T) {
	lines := []string{"a"}
	cfg := Resolve(WithContent(lines...))
	lines[0] = "b"
	if cfg.Content[0] != "a" {
		t.Error("WithContent aliases the caller's slice")
	}
}

func TestConfigLines(t *testing.T) {
	if diff := cmp.Diff([]string{""}, Config{}.Lines()); diff != "" {
		t.Errorf("Lines() of empty config mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, Config{Content: []string{"a", "b"}}.Lines()); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
}
