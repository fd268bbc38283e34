// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package watermark

import "math"

// Oversample is the multiplier applied to raster dimensions on top of the
// device pixel ratio. It keeps rotated edges smooth on dense displays.
const Oversample = 2

// FontGap is the vertical gap between text lines in CSS pixels.
const FontGap = 3

// Default tile dimensions used when the content cannot be measured.
const (
	DefaultTileWidth  = 120
	DefaultTileHeight = 64
)

// Size is a width/height pair.
type Size struct {
	Width, Height float64
}

// Placement holds the draw origin of one copy of the tile and the pivot
// the surface is rotated about before drawing it.
type Placement struct {
	DrawX, DrawY   float64
	PivotX, PivotY float64
}

// Translate returns p moved by (dx, dy). Draw and pivot move together.
func (p Placement) Translate(dx, dy float64) Placement {
	return Placement{
		DrawX:  p.DrawX + dx,
		DrawY:  p.DrawY + dy,
		PivotX: p.PivotX + dx,
		PivotY: p.PivotY + dy,
	}
}

// Geometry is the derived layout of one render pass.
//
// All device-pixel values already include the device pixel ratio.
// The raster holds two copies of the tile: Primary in the top-left period
// and Alternate one period further along both axes.
type Geometry struct {
	// DevicePixelRatio is the effective ratio used for this pass.
	DevicePixelRatio float64

	// TileWidth and TileHeight are the tile dimensions in CSS pixels.
	TileWidth, TileHeight float64

	// DrawWidth and DrawHeight are the tile dimensions in device pixels.
	DrawWidth, DrawHeight float64

	// PeriodWidth and PeriodHeight are (tile + gap) in device pixels.
	PeriodWidth, PeriodHeight float64

	// RasterWidth and RasterHeight are the raster surface dimensions,
	// PeriodWidth and PeriodHeight times Oversample.
	RasterWidth, RasterHeight float64

	// GapX and GapY are the configured gaps in CSS pixels.
	GapX, GapY float64

	// Rotate is the rotation in degrees, normalized to [0, 360).
	Rotate float64

	Primary   Placement
	Alternate Placement
}

// ComputeGeometry derives the tile layout from cfg.
//
// measured is the content-derived tile size (see MeasureTile); explicit
// Width and Height in cfg take precedence per axis. ComputeGeometry never
// fails: every input has a numeric fallback.
func ComputeGeometry(cfg Config, env Env, measured Size) Geometry {
	dpr := env.ratio()

	tileW, tileH := measured.Width, measured.Height
	if cfg.Width > 0 {
		tileW = cfg.Width
	}
	if cfg.Height > 0 {
		tileH = cfg.Height
	}
	gapX, gapY := cfg.Gap.X, cfg.Gap.Y

	g := Geometry{
		DevicePixelRatio: dpr,
		TileWidth:        tileW,
		TileHeight:       tileH,
		DrawWidth:        tileW * dpr,
		DrawHeight:       tileH * dpr,
		PeriodWidth:      (gapX + tileW) * dpr,
		PeriodHeight:     (gapY + tileH) * dpr,
		GapX:             gapX,
		GapY:             gapY,
		Rotate:           NormalizeAngle(cfg.Rotate),
	}
	g.RasterWidth = g.PeriodWidth * Oversample
	g.RasterHeight = g.PeriodHeight * Oversample

	// The pivot cross-uses the gap terms (gapY on X, gapX on Y). The seam
	// closes with exactly this formula; keep it.
	g.Primary = Placement{
		DrawX:  gapX * dpr / 2,
		DrawY:  gapY * dpr / 2,
		PivotX: (g.DrawWidth + gapY*dpr) / 2,
		PivotY: (g.DrawHeight + gapX*dpr) / 2,
	}
	g.Alternate = g.Primary.Translate(g.PeriodWidth, g.PeriodHeight)
	return g
}

// SurfaceSize returns the raster surface size in whole pixels.
// Fractional sizes are truncated and each dimension is at least 1.
func (g Geometry) SurfaceSize() (width, height int) {
	width = max(int(math.Floor(g.RasterWidth)), 1)
	height = max(int(math.Floor(g.RasterHeight)), 1)
	return width, height
}

// BackgroundSize returns the CSS size of one background repetition.
func (g Geometry) BackgroundSize() float64 {
	return (g.GapX + g.TileWidth) * Oversample
}

// Radians returns the rotation angle in radians.
func (g Geometry) Radians() float64 {
	return g.Rotate * math.Pi / 180
}

// NormalizeAngle maps degrees into [0, 360). Angles that differ by a
// multiple of 360 map to the same value, so their rasters are identical.
func NormalizeAngle(degrees float64) float64 {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return 0
	}
	a := math.Mod(degrees, 360)
	if a < 0 {
		a += 360
	}
	// Drop the rounding noise math.Mod leaves on non-integral angles.
	a = math.Round(a*1e9) / 1e9
	if a >= 360 {
		a = 0
	}
	return a
}
