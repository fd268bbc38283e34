// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gogpu/watermark"
	"github.com/gogpu/watermark/internal/config"
)

// GeometryResponse summarizes the geometry of a render.
type GeometryResponse struct {
	TileWidth        float64 `json:"tileWidth"`
	TileHeight       float64 `json:"tileHeight"`
	SurfaceWidth     int     `json:"surfaceWidth"`
	SurfaceHeight    int     `json:"surfaceHeight"`
	BackgroundSize   float64 `json:"backgroundSize"`
	Rotate           float64 `json:"rotate"`
	DevicePixelRatio float64 `json:"devicePixelRatio"`
}

// OverlayResponse is the JSON form of a rendered overlay.
type OverlayResponse struct {
	RenderID string            `json:"renderId,omitempty"`
	Style    map[string]string `json:"style"`
	CSS      string            `json:"css"`
	Image    string            `json:"image"`
	Geometry GeometryResponse  `json:"geometry"`
}

// NewOverlayResponse converts o to its JSON form.
func NewOverlayResponse(o watermark.Overlay, renderID string) OverlayResponse {
	w, h := o.Geometry.SurfaceSize()
	return OverlayResponse{
		RenderID: renderID,
		Style:    o.Style,
		CSS:      o.CSS(),
		Image:    o.Payload.DataURI(),
		Geometry: GeometryResponse{
			TileWidth:        o.Geometry.TileWidth,
			TileHeight:       o.Geometry.TileHeight,
			SurfaceWidth:     w,
			SurfaceHeight:    h,
			BackgroundSize:   o.Geometry.BackgroundSize(),
			Rotate:           o.Geometry.Rotate,
			DevicePixelRatio: o.Geometry.DevicePixelRatio,
		},
	}
}

type composeRequest struct {
	Config   config.Partial `json:"config"`
	Children []string       `json:"children"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	var p config.Partial
	if !s.decode(w, r, &p) {
		return
	}
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	o, id, err := s.render(r.Context(), p)
	w.Header().Set("X-Render-Id", id)
	if err != nil {
		writeRenderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewOverlayResponse(o, id))
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	p, err := partialFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	o, id, err := s.render(r.Context(), p)
	w.Header().Set("X-Render-Id", id)
	if err != nil {
		writeRenderError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(o.Payload.PNG)))
	w.Header().Set("X-Background-Size", o.Style["background-size"])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(o.Payload.PNG)
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.Config.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	children := make([]template.HTML, len(req.Children))
	for i, c := range req.Children {
		children[i] = template.HTML(c) //nolint:gosec // the caller owns the markup it sends
	}
	if len(children) != 1 {
		_, err := watermark.Compose(watermark.Overlay{}, children...)
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	o, id, err := s.render(r.Context(), req.Config)
	w.Header().Set("X-Render-Id", id)
	if err != nil {
		writeRenderError(w, err)
		return
	}
	html, err := watermark.Compose(o, children...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

// decode reads a JSON body into v. It writes the error response and
// reports false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return false
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return false
	}
	return true
}

func writeRenderError(w http.ResponseWriter, err error) {
	var (
		fe *fetchError
		le *LimitError
	)
	switch {
	case errors.As(err, &fe):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: fe.public()})
	case errors.As(err, &le):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		watermark.Logger().Debug("server: write response", "err", err)
	}
}

// partialFromQuery reads a configuration from query parameters:
//
//	content (repeatable), image, width, height, gap=x,y, offset=left,top,
//	rotate, zIndex, fontColor, fontSize, fontStyle, fontWeight,
//	fontFamily, dpr
func partialFromQuery(q url.Values) (config.Partial, error) {
	var p config.Partial
	var err error

	if v, ok := q["content"]; ok {
		p.Content = v
	}
	if v := q.Get("image"); v != "" {
		p.Image = &v
	}
	floats := []struct {
		key string
		dst **float64
	}{
		{"width", &p.Width},
		{"height", &p.Height},
		{"rotate", &p.Rotate},
		{"dpr", &p.DevicePixelRatio},
	}
	for _, f := range floats {
		if *f.dst, err = queryFloat(q, f.key); err != nil {
			return p, err
		}
	}
	if p.Gap, err = queryPair(q, "gap"); err != nil {
		return p, err
	}
	if p.Offset, err = queryPair(q, "offset"); err != nil {
		return p, err
	}
	if v := q.Get("zIndex"); v != "" {
		z, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("zIndex: %w", err)
		}
		p.ZIndex = &z
	}

	var font config.Font
	hasFont := false
	str := func(key string) *string {
		if v := q.Get(key); v != "" {
			hasFont = true
			return &v
		}
		return nil
	}
	font.Color = str("fontColor")
	font.Style = str("fontStyle")
	font.Family = str("fontFamily")
	if w := str("fontWeight"); w != nil {
		weight := config.Weight(*w)
		font.Weight = &weight
	}
	if font.Size, err = queryFloat(q, "fontSize"); err != nil {
		return p, err
	}
	if font.Size != nil {
		hasFont = true
	}
	if hasFont {
		p.Font = &font
	}
	return p, p.Validate()
}

func queryFloat(q url.Values, key string) (*float64, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &f, nil
}

func queryPair(q url.Values, key string) ([]float64, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	parts := strings.Split(v, ",")
	out := make([]float64, len(parts))
	for i, s := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[i] = f
	}
	return out, nil
}
