// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package watermark renders tiled, rotated watermark overlays.
//
// # Overview
//
// A watermark is one tile of text or image content, rotated and repeated
// across a container as a background pattern. The package computes the
// tile geometry, rasterizes the tile with gogpu/gg, encodes it as PNG and
// derives the CSS style of the overlay element that repeats it.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/watermark"
//	    "github.com/gogpu/watermark/fonts"
//	)
//
//	cfg := watermark.Resolve(watermark.WithText("CONFIDENTIAL"))
//	o, err := watermark.Build(cfg, watermark.Env{DevicePixelRatio: 1},
//	    watermark.Deps{Fonts: fonts.NewProvider()}, nil)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(o.CSS())
//
// # Seamless tiling
//
// The raster is twice the tiling period in each direction. The tile is
// drawn once in the top-left period and once more one period further
// along both axes, each copy rotated about its own pivot. Repeating the
// raster therefore yields a staggered pattern without visible seams.
//
// # Render passes
//
// Geometry, raster and style are recomputed from scratch on every pass;
// nothing is cached. [Renderer] drives passes for hosts that re-render on
// configuration changes: every call starts a new generation and results of
// superseded generations (for example a slow image load) are discarded.
//
// # Coordinate System
//
// Surface coordinates are device pixels with the origin at the top-left,
// X increasing right and Y increasing down. Config values are CSS pixels;
// [Env.DevicePixelRatio] converts between the two.
package watermark
