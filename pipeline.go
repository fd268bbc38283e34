// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package watermark

import (
	"errors"
	"image"
)

// ErrNoImage is returned by Build when the configuration references an
// image but no decoded image was supplied.
var ErrNoImage = errors.New("watermark: image content without decoded image")

// Deps are the host collaborators used by a render pass.
// Zero fields fall back to NewCanvasSurface and a nil FontProvider
// (fixed default tile size, nothing drawn for text).
type Deps struct {
	Fonts      FontProvider
	NewSurface SurfaceFactory
}

func (d Deps) surface(width, height int) Surface {
	if d.NewSurface != nil {
		return d.NewSurface(width, height)
	}
	return NewCanvasSurface(width, height)
}

// Overlay is the result of one render pass.
type Overlay struct {
	// Generation is the render pass id assigned by a Renderer.
	// It is zero for overlays built directly with Build.
	Generation uint64

	Geometry Geometry
	Payload  Payload

	// Style is the complete overlay style, background image included.
	Style OverlayStyle
}

// CSS returns the overlay style as a CSS declaration list.
func (o Overlay) CSS() string {
	return o.Style.CSS()
}

// Build runs one render pass synchronously.
//
// img is the decoded image for image configurations and is ignored for
// text. Build is deterministic: equal inputs yield byte-identical payloads
// and equal styles.
func Build(cfg Config, env Env, deps Deps, img image.Image) (Overlay, error) {
	if cfg.IsImage() && img == nil {
		return Overlay{}, ErrNoImage
	}

	g := ComputeGeometry(cfg, env, MeasureTile(cfg, deps.Fonts))

	var content Content
	if cfg.IsImage() {
		content = Content{Image: img}
	} else {
		content = TextContent(cfg, g.DevicePixelRatio, deps.Fonts)
	}

	w, h := g.SurfaceSize()
	s := deps.surface(w, h)
	Rasterize(s, g, content)
	payload, err := Encode(s, g)
	if err != nil {
		return Overlay{}, err
	}

	Logger().Debug("watermark: rendered tile",
		"surface_width", w, "surface_height", h,
		"tile_width", g.TileWidth, "tile_height", g.TileHeight,
		"rotate", g.Rotate, "bytes", len(payload.PNG))

	style := ComputeOverlayStyle(g, cfg.Offset, cfg.ZIndex).WithBackground(payload.DataURI())
	return Overlay{Geometry: g, Payload: payload, Style: style}, nil
}
