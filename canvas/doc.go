// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package canvas provides an offscreen 2D raster surface with an HTML
// canvas style API.
//
// A Canvas keeps its transform stack in a gg.Context and its pixels in an
// *image.RGBA that shares the context's pixmap. Text is rendered with the
// gg text engine into an upright sprite and images are used as they are;
// both are then composited through the current transform with
// golang.org/x/image/draw, so rotated content is resampled rather than
// snapped to the pixel grid.
//
// # Usage
//
//	c := canvas.New(256, 256)
//	c.Push()
//	c.Translate(128, 128)
//	c.Rotate(-math.Pi / 9)
//	c.Translate(-128, -128)
//	c.SetFont(face)
//	c.SetTextAlign(canvas.AlignCenter)
//	c.SetTextBaseline(canvas.BaselineTop)
//	c.FillText("CONFIDENTIAL", 128, 120)
//	c.Pop()
//	err := c.EncodePNG(w)
//
// Canvas is NOT safe for concurrent use.
package canvas
