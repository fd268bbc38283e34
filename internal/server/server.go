// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package server exposes the watermark renderer over HTTP.
//
// Routes:
//
//	GET  /healthz       liveness check
//	POST /v1/overlay    JSON configuration -> JSON overlay
//	GET  /v1/tile.png   query-string configuration -> PNG tile
//	POST /v1/compose    {config, children} -> HTML container
//
// Request configurations are merged over the server defaults. Every render
// is tagged with a render id that is logged and returned in the
// X-Render-Id header.
package server

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gogpu/watermark"
	"github.com/gogpu/watermark/fonts"
	"github.com/gogpu/watermark/internal/config"
	"github.com/gogpu/watermark/internal/imageload"
	"github.com/google/uuid"
)

// Fetcher loads an image reference synchronously.
// *imageload.Loader implements it.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (image.Image, error)
}

// DefaultMaxBodyBytes limits request bodies.
const DefaultMaxBodyBytes = 1 << 20

// DefaultMaxSurfacePixels limits the raster of a single render
// (4096 x 4096, 64 MiB of RGBA).
const DefaultMaxSurfacePixels = 4096 * 4096

// LimitError is returned when a request would allocate a raster larger
// than the server allows.
type LimitError struct {
	Width, Height float64
	Max           int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("server: surface %.0f x %.0f exceeds the limit of %d pixels", e.Width, e.Height, e.Max)
}

// Option configures a Server.
type Option func(*Server)

// WithDefaults sets the configuration requests are merged over.
func WithDefaults(p config.Partial) Option {
	return func(s *Server) { s.defaults = p }
}

// WithEnv sets the environment used when a request has no device pixel ratio.
func WithEnv(env watermark.Env) Option {
	return func(s *Server) { s.env = env }
}

// WithFonts sets the font provider.
func WithFonts(f watermark.FontProvider) Option {
	return func(s *Server) { s.deps.Fonts = f }
}

// WithSurfaceFactory sets the raster surface factory.
func WithSurfaceFactory(f watermark.SurfaceFactory) Option {
	return func(s *Server) { s.deps.NewSurface = f }
}

// WithFetcher sets the image fetcher.
func WithFetcher(f Fetcher) Option {
	return func(s *Server) { s.fetcher = f }
}

// WithMaxBodyBytes limits the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithMaxSurfacePixels limits the raster size of a single render.
func WithMaxSurfacePixels(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxPixels = n
		}
	}
}

// Server is an http.Handler serving watermark renders.
type Server struct {
	defaults config.Partial
	env      watermark.Env
	deps     watermark.Deps
	fetcher  Fetcher
	maxBody  int64

	maxPixels int64

	router chi.Router
}

// New creates a Server. Without options it renders with the embedded fonts
// and accepts data: image references only.
func New(opts ...Option) *Server {
	s := &Server{
		env:       watermark.Env{DevicePixelRatio: 1},
		maxBody:   DefaultMaxBodyBytes,
		maxPixels: DefaultMaxSurfacePixels,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.deps.Fonts == nil {
		s.deps.Fonts = fonts.NewProvider()
	}
	if s.fetcher == nil {
		s.fetcher = imageload.New(imageload.WithoutFiles(), imageload.WithoutRemote())
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/overlay", s.handleOverlay)
		r.Get("/tile.png", s.handleTile)
		r.Post("/compose", s.handleCompose)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		watermark.Logger().Info("server: listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// render resolves p over the server defaults and runs one pass.
func (s *Server) render(ctx context.Context, p config.Partial) (watermark.Overlay, string, error) {
	id := uuid.NewString()
	log := watermark.Logger().With("render_id", id, "request_id", middleware.GetReqID(ctx))

	merged := s.defaults.Merge(p)
	cfg := watermark.Resolve(merged.Options()...)
	env := merged.Env(s.env)

	g := watermark.ComputeGeometry(cfg, env, watermark.MeasureTile(cfg, s.deps.Fonts))
	if px := g.RasterWidth * g.RasterHeight; math.IsNaN(px) || px > float64(s.maxPixels) {
		err := &LimitError{Width: g.RasterWidth, Height: g.RasterHeight, Max: s.maxPixels}
		log.Warn("server: render rejected", "err", err)
		return watermark.Overlay{}, id, err
	}

	var img image.Image
	if cfg.IsImage() {
		var err error
		img, err = s.fetcher.Fetch(ctx, cfg.Image)
		if err != nil {
			log.Warn("server: image fetch failed", "err", err)
			return watermark.Overlay{}, id, &fetchError{err: err}
		}
	}

	start := time.Now()
	o, err := watermark.Build(cfg, env, s.deps, img)
	if err != nil {
		return watermark.Overlay{}, id, err
	}
	log.Debug("server: rendered", "bytes", len(o.Payload.PNG), "elapsed", time.Since(start))
	return o, id, nil
}

type fetchError struct{ err error }

func (e *fetchError) Error() string { return "image: " + e.err.Error() }
func (e *fetchError) Unwrap() error { return e.err }

// public returns the message sent to the client. Details of failed
// fetches stay in the server log.
func (e *fetchError) public() string {
	for _, known := range []error{
		imageload.ErrEmptyRef,
		imageload.ErrUnsupportedScheme,
		imageload.ErrRemoteDisabled,
		imageload.ErrMalformedDataURI,
		imageload.ErrTooLarge,
	} {
		if errors.Is(e.err, known) {
			return "image: " + known.Error()
		}
	}
	return "image: reference could not be loaded"
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		watermark.Logger().Debug("server: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
