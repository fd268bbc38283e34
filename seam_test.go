// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package watermark_test

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"github.com/gogpu/watermark"
	"github.com/gogpu/watermark/fonts"
)

// tiled repeats src cols x rows times, as a CSS repeating background does.
func tiled(src *image.NRGBA, cols, rows int) *image.NRGBA {
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx()*cols, b.Dy()*rows))
	for j := range rows {
		for i := range cols {
			r := b.Sub(b.Min).Add(image.Pt(i*b.Dx(), j*b.Dy()))
			draw.Draw(out, r, src, b.Min, draw.Src)
		}
	}
	return out
}

func decodeNRGBA(t *testing.T, data []byte) *image.NRGBA {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	out := image.NewNRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

func channelDiff(a, b color.NRGBA) int {
	d := 0
	for _, p := range [][2]uint8{{a.R, b.R}, {a.G, b.G}, {a.B, b.B}, {a.A, b.A}} {
		d = max(d, int(max(p[0], p[1])-min(p[0], p[1])))
	}
	return d
}

// checkSeamless verifies that the background pattern built from o looks
// the same when shifted by one period along both axes, including where
// the shift crosses from one raster repetition into the next.
func checkSeamless(t *testing.T, o watermark.Overlay) {
	t.Helper()
	g := o.Geometry
	pw, ph := int(g.PeriodWidth), int(g.PeriodHeight)
	if float64(pw) != g.PeriodWidth || float64(ph) != g.PeriodHeight {
		t.Fatalf("period %v x %v is not whole pixels", g.PeriodWidth, g.PeriodHeight)
	}

	raster := decodeNRGBA(t, o.Payload.PNG)
	w, h := raster.Bounds().Dx(), raster.Bounds().Dy()
	if w != 2*pw || h != 2*ph {
		t.Fatalf("raster %d x %d, want twice the period %d x %d", w, h, pw, ph)
	}

	ink := 0
	for y := range h {
		for x := range w {
			if raster.NRGBAAt(x, y).A > 0 {
				ink++
			}
		}
	}
	if ink == 0 {
		t.Fatal("raster has no ink")
	}

	pattern := tiled(raster, 2, 2)
	mismatches, crossing := 0, 0
	for y := 0; y+ph < 2*h; y++ {
		for x := 0; x+pw < 2*w; x++ {
			a, b := pattern.NRGBAAt(x, y), pattern.NRGBAAt(x+pw, y+ph)
			if channelDiff(a, b) > 2 {
				mismatches++
				continue
			}
			if a.A > 0 && (x < w) != (x+pw < w) {
				crossing++
			}
		}
	}
	if mismatches > 0 {
		t.Errorf("%d pixels differ from their copy one period away", mismatches)
	}
	if crossing == 0 {
		t.Error("no ink was compared across a raster boundary")
	}
}

func TestSeamlessText(t *testing.T) {
	cfg := watermark.Resolve(
		watermark.WithContent("AB"),
		watermark.WithGap(60, 60),
		watermark.WithRotate(-20),
		watermark.WithFontColor("#000"),
	)
	o, err := watermark.Build(cfg, watermark.Env{DevicePixelRatio: 1}, watermark.Deps{Fonts: fonts.NewProvider()}, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	checkSeamless(t, o)
}

func TestSeamlessImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	draw.Draw(src, src.Bounds(), image.NewUniform(color.NRGBA{R: 220, A: 255}), image.Point{}, draw.Src)

	for _, dpr := range []float64{1, 2} {
		cfg := watermark.Resolve(
			watermark.WithImage("logo.png"),
			watermark.WithSize(40, 20),
			watermark.WithGap(40, 40),
			watermark.WithRotate(-20),
		)
		o, err := watermark.Build(cfg, watermark.Env{DevicePixelRatio: dpr}, watermark.Deps{}, src)
		if err != nil {
			t.Fatalf("Build(dpr=%v) error = %v", dpr, err)
		}
		checkSeamless(t, o)
	}
}
