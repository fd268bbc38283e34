// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fonts

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/gg/text"
	"github.com/gogpu/watermark"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/gofont/goregular"
)

func TestParseWeight(t *testing.T) {
	tests := []struct {
		in   string
		want Weight
	}{
		{"", WeightNormal},
		{"normal", WeightNormal},
		{"Bold", WeightBold},
		{"bolder", WeightBold},
		{"light", WeightLight},
		{"medium", WeightMedium},
		{" 600 ", 600},
		{"900", 900},
		{"0", WeightNormal},
		{"1200", WeightNormal},
		{"heavy", WeightNormal},
	}
	for _, tt := range tests {
		if got := ParseWeight(tt.in); got != tt.want {
			t.Errorf("ParseWeight(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		style, weight string
		want          Variant
		name          string
	}{
		{"normal", "normal", Variant{Weight: WeightNormal}, "regular"},
		{"italic", "bold", Variant{Weight: WeightBold, Italic: true}, "bold italic"},
		{"oblique 10deg", "500", Variant{Weight: 500, Italic: true}, "medium italic"},
		{"", "600", Variant{Weight: 600}, "bold"},
	}
	for _, tt := range tests {
		got := ParseVariant(tt.style, tt.weight)
		if got != tt.want {
			t.Errorf("ParseVariant(%q, %q) = %+v, want %+v", tt.style, tt.weight, got, tt.want)
		}
		if got.String() != tt.name {
			t.Errorf("ParseVariant(%q, %q).String() = %q, want %q", tt.style, tt.weight, got.String(), tt.name)
		}
	}
}

func TestSplitFamilies(t *testing.T) {
	got := splitFamilies(`"Helvetica Neue", 'Arial' ,sans-serif,,`)
	want := []string{"Helvetica Neue", "Arial", "sans-serif"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("splitFamilies() mismatch (-want +got):\n%s", diff)
	}
}

func TestEmbeddedFamily(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"sans-serif", FamilySans, true},
		{"System-UI", FamilySans, true},
		{"monospace", FamilyMono, true},
		{"Go Mono", FamilyMono, true},
		{"serif", "", false},
		{"Arial", "", false},
	}
	for _, tt := range tests {
		got, ok := embeddedFamily(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("embeddedFamily(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestProviderMonospace(t *testing.T) {
	p := NewProvider()
	f := watermark.Font{Family: "monospace"}
	narrow := p.Advance(f, 18, "iii")
	wide := p.Advance(f, 18, "WWW")
	if narrow <= 0 || math.Abs(narrow-wide) > 1e-6 {
		t.Errorf("monospace advances = %v and %v, want equal and positive", narrow, wide)
	}

	sans := watermark.Font{Family: "sans-serif"}
	if p.Advance(sans, 18, "iii") >= p.Advance(sans, 18, "WWW") {
		t.Error("proportional font measures iii as wide as WWW")
	}
}

func TestProviderAdvanceScalesWithSize(t *testing.T) {
	p := NewProvider()
	f := watermark.Font{Family: "sans-serif"}
	small := p.Advance(f, 20, "CONFIDENTIAL")
	large := p.Advance(f, 40, "CONFIDENTIAL")
	if ratio := large / small; math.Abs(ratio-2) > 0.1 {
		t.Errorf("advance ratio 40px/20px = %v, want about 2", ratio)
	}
	if got := p.Advance(f, 20, ""); got != 0 {
		t.Errorf("Advance(\"\") = %v, want 0", got)
	}
}

func TestProviderWeight(t *testing.T) {
	p := NewProvider()
	regular := p.Advance(watermark.Font{Family: "sans-serif"}, 18, "Watermark")
	bold := p.Advance(watermark.Font{Family: "sans-serif", Weight: "bold"}, 18, "Watermark")
	if bold <= regular {
		t.Errorf("bold advance %v <= regular advance %v", bold, regular)
	}
}

func TestProviderFallback(t *testing.T) {
	p := NewProvider()
	fallback := p.Source(watermark.Font{Family: "No Such Font, Another Missing"})
	sans := p.Source(watermark.Font{Family: "sans-serif"})
	if fallback == nil || fallback != sans {
		t.Errorf("unknown family source = %p, want embedded sans %p", fallback, sans)
	}
	if again := p.Source(watermark.Font{Family: "sans-serif"}); again != sans {
		t.Error("Source() did not reuse the cached source")
	}
}

func TestProviderFontFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o600); err != nil {
		t.Fatal(err)
	}

	p := NewProvider()
	fromFile := p.Advance(watermark.Font{Family: path}, 18, "Watermark")
	embedded := p.Advance(watermark.Font{Family: "sans-serif"}, 18, "Watermark")
	if math.Abs(fromFile-embedded) > 1e-6 {
		t.Errorf("font file advance = %v, want %v", fromFile, embedded)
	}

	missing := p.Advance(watermark.Font{Family: filepath.Join(t.TempDir(), "missing.ttf")}, 18, "Watermark")
	if math.Abs(missing-embedded) > 1e-6 {
		t.Errorf("missing font file advance = %v, want fallback %v", missing, embedded)
	}
}

func TestProviderFace(t *testing.T) {
	p := NewProvider()
	face := p.Face(watermark.Font{Family: "sans-serif"}, 36)
	if face == nil {
		t.Fatal("Face() = nil")
	}
	if face.Size() != 36 {
		t.Errorf("Face().Size() = %v, want 36", face.Size())
	}
	if m := face.Metrics(); m.Ascent <= 0 || m.Descent <= 0 {
		t.Errorf("Face().Metrics() = %+v, want positive ascent and descent", m)
	}
}

func TestMeasureTileWithProvider(t *testing.T) {
	p := NewProvider()
	cfg := watermark.Resolve(watermark.WithContent("AB", "A"), watermark.WithFontFamily("monospace"))
	got := watermark.MeasureTile(cfg, p)

	glyph := p.Advance(cfg.Font, cfg.Font.Size, "A")
	if want := math.Ceil(2 * glyph); got.Width != want {
		t.Errorf("MeasureTile().Width = %v, want %v", got.Width, want)
	}
	if want := 2*cfg.Font.Size + watermark.FontGap; got.Height != want {
		t.Errorf("MeasureTile().Height = %v, want %v", got.Height, want)
	}
}

func TestParseHinting(t *testing.T) {
	tests := []struct {
		in   string
		want text.Hinting
	}{
		{"none", text.HintingNone},
		{"Vertical", text.HintingVertical},
		{" full ", text.HintingFull},
	}
	for _, tt := range tests {
		got, err := ParseHinting(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseHinting(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseHinting("slight"); !errors.Is(err, ErrUnknownHinting) {
		t.Errorf("ParseHinting(slight) error = %v, want %v", err, ErrUnknownHinting)
	}
}

func TestProviderWithHinting(t *testing.T) {
	p := NewProvider(WithHinting(text.HintingNone))
	if len(p.faceOpts) != 1 {
		t.Fatalf("faceOpts = %d, want 1", len(p.faceOpts))
	}
	f := watermark.Font{Family: "sans-serif"}
	if got := p.Advance(f, 18, "Watermark"); got <= 0 {
		t.Errorf("Advance() with hinting none = %v, want > 0", got)
	}
	if face := p.Face(f, 18); face == nil || face.Size() != 18 {
		t.Errorf("Face() with hinting none = %v", face)
	}
}

// captureLog routes the package logger into a buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := watermark.Logger()
	t.Cleanup(func() { watermark.SetLogger(prev) })
	var buf bytes.Buffer
	watermark.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return &buf
}

func TestCachedMissNotLogged(t *testing.T) {
	buf := captureLog(t)
	p := NewProvider()

	src := p.cached(sourceKey{family: "system:absent"}, func() (*text.FontSource, error) {
		return nil, fmt.Errorf("%w: absent", errNotInstalled)
	})
	if src != nil {
		t.Errorf("cached() = %v, want nil for a missing family", src)
	}
	if buf.Len() != 0 {
		t.Errorf("missing family was logged: %s", buf)
	}

	p.cached(sourceKey{family: "broken.ttf"}, func() (*text.FontSource, error) {
		return nil, errors.New("bad font table")
	})
	if !strings.Contains(buf.String(), "fonts: load failed") {
		t.Errorf("load failure not logged: %q", buf)
	}
}
