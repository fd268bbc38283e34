// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package watermark

import (
	"context"
	"image"
	"sync"
)

// ImageLoader loads image references asynchronously.
//
// Load must call done exactly once, from any goroutine, with either the
// decoded image or an error. internal/imageload provides the standard
// implementation.
type ImageLoader interface {
	Load(ctx context.Context, ref string, done func(image.Image, error))
}

// AttachFunc receives each completed overlay. Calls are serialized and
// arrive in generation order; stale generations are never delivered.
//
// No Renderer lock is held during the call, so an AttachFunc may call
// Render, SetEnv and Generation. An overlay completed while attach is
// running is delivered after it returns; if several complete meanwhile,
// only the newest is.
type AttachFunc func(Overlay)

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithEnv sets the host environment used for every pass.
func WithEnv(env Env) RendererOption {
	return func(r *Renderer) { r.env = env }
}

// WithFonts sets the font provider.
func WithFonts(f FontProvider) RendererOption {
	return func(r *Renderer) { r.deps.Fonts = f }
}

// WithSurfaceFactory sets the raster surface factory.
func WithSurfaceFactory(f SurfaceFactory) RendererOption {
	return func(r *Renderer) { r.deps.NewSurface = f }
}

// WithImageLoader sets the loader used for image content.
func WithImageLoader(l ImageLoader) RendererOption {
	return func(r *Renderer) { r.loader = l }
}

// Renderer drives render passes for a single overlay.
//
// Each call to Render starts a new generation. Text passes complete
// synchronously; image passes complete when the loader calls back. A pass
// whose generation has been superseded by the time it completes is
// discarded, so a slow image load can never replace a newer overlay.
//
// Renderer is safe for concurrent use.
type Renderer struct {
	env    Env
	deps   Deps
	loader ImageLoader
	attach AttachFunc

	mu         sync.Mutex
	gen        uint64   // newest generation started
	current    uint64   // generation of the newest accepted overlay
	next       *Overlay // accepted, not yet delivered
	delivering bool
	pending    sync.WaitGroup
}

// NewRenderer creates a Renderer that delivers overlays to attach.
func NewRenderer(attach AttachFunc, opts ...RendererOption) *Renderer {
	r := &Renderer{
		env:    Env{DevicePixelRatio: 1},
		attach: attach,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render starts a render pass for cfg and returns its generation.
// It is meant to be called once per configuration change.
func (r *Renderer) Render(ctx context.Context, cfg Config) uint64 {
	cfg = cfg.Clone()

	r.mu.Lock()
	r.gen++
	gen := r.gen
	env := r.env
	r.mu.Unlock()

	log := Logger().With("generation", gen)

	if !cfg.IsImage() {
		r.complete(gen, cfg, env, nil)
		return gen
	}

	if r.loader == nil {
		log.Debug("watermark: no image loader, dropping pass", "image", cfg.Image)
		return gen
	}

	r.pending.Add(1)
	r.loader.Load(ctx, cfg.Image, func(img image.Image, err error) {
		defer r.pending.Done()
		if err != nil {
			log.Debug("watermark: image load failed", "image", cfg.Image, "err", err)
			return
		}
		if r.stale(gen) {
			log.Debug("watermark: discarding stale image pass")
			return
		}
		r.complete(gen, cfg, env, img)
	})
	return gen
}

// SetEnv changes the host environment for subsequent passes, for example
// after the window moved to a display with another pixel ratio.
func (r *Renderer) SetEnv(env Env) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.env = env
}

// Generation returns the generation of the newest overlay accepted for
// attachment, or zero if none has been.
func (r *Renderer) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Wait blocks until every pending image load has called back.
func (r *Renderer) Wait() {
	r.pending.Wait()
}

func (r *Renderer) stale(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return gen != r.gen
}

func (r *Renderer) complete(gen uint64, cfg Config, env Env, img image.Image) {
	o, err := Build(cfg, env, r.deps, img)
	if err != nil {
		Logger().Warn("watermark: render failed", "generation", gen, "err", err)
		return
	}
	o.Generation = gen

	r.mu.Lock()
	if newest := r.gen; gen != newest {
		r.mu.Unlock()
		Logger().Debug("watermark: discarding stale pass", "generation", gen, "newest", newest)
		return
	}
	r.current = gen
	r.next = &o
	if r.delivering {
		// The running delivery loop picks it up.
		r.mu.Unlock()
		return
	}
	r.delivering = true
	r.pending.Add(1)
	defer r.pending.Done()

	for r.next != nil {
		next := *r.next
		r.next = nil
		r.mu.Unlock()
		if r.attach != nil {
			r.attach(next)
		}
		r.mu.Lock()
	}
	r.delivering = false
	r.mu.Unlock()
}
