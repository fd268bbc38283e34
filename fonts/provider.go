// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fonts

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"github.com/gogpu/watermark"
)

// Option configures a Provider.
type Option func(*Provider)

// WithSystemFonts enables lookup of installed fonts by family name.
// The font index is cached in cacheDir; an empty cacheDir uses the
// platform's user cache directory.
func WithSystemFonts(cacheDir string) Option {
	return func(p *Provider) {
		p.system = newSystemFonts(cacheDir)
	}
}

// WithHinting sets the glyph hinting of returned faces.
func WithHinting(h text.Hinting) Option {
	return func(p *Provider) {
		p.faceOpts = append(p.faceOpts, text.WithHinting(h))
	}
}

type sourceKey struct {
	family  string
	variant Variant
}

// Provider resolves watermark fonts to gg faces.
// It implements watermark.FontProvider and is safe for concurrent use.
type Provider struct {
	system   *systemFonts
	faceOpts []text.FaceOption

	mu      sync.Mutex
	sources map[sourceKey]*text.FontSource
}

var _ watermark.FontProvider = (*Provider)(nil)

// NewProvider creates a Provider serving the embedded Go fonts and, if
// enabled, installed system fonts.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{sources: make(map[sourceKey]*text.FontSource)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Face returns a face for f at size pixels.
func (p *Provider) Face(f watermark.Font, size float64) text.Face {
	return p.Source(f).Face(size, p.faceOpts...)
}

// Advance returns the advance width of s rendered with f at size pixels.
func (p *Provider) Advance(f watermark.Font, size float64, s string) float64 {
	if s == "" {
		return 0
	}
	return p.Face(f, size).Advance(s)
}

// Source returns the parsed font source for f. It falls back to the
// embedded Go font when nothing in f.Family resolves.
func (p *Provider) Source(f watermark.Font) *text.FontSource {
	v := ParseVariant(f.Style, f.Weight)
	for _, family := range splitFamilies(f.Family) {
		if src := p.lookup(family, v); src != nil {
			return src
		}
	}
	watermark.Logger().Debug("fonts: family not found, using embedded font",
		"family", f.Family, "variant", v.String())
	return p.embedded(FamilySans, v)
}

func (p *Provider) lookup(family string, v Variant) *text.FontSource {
	if isFontFile(family) {
		return p.cached(sourceKey{family: family, variant: Variant{}}, func() (*text.FontSource, error) {
			return text.NewFontSourceFromFile(family)
		})
	}
	if name, ok := embeddedFamily(family); ok {
		return p.embedded(name, v)
	}
	if p.system == nil {
		return nil
	}
	key := sourceKey{family: "system:" + strings.ToLower(family), variant: v}
	return p.cached(key, func() (*text.FontSource, error) {
		path, ok := p.system.locate(family, v)
		if !ok {
			return nil, fmt.Errorf("%w: %s", errNotInstalled, family)
		}
		return text.NewFontSourceFromFile(path)
	})
}

func (p *Provider) embedded(family string, v Variant) *text.FontSource {
	src := p.cached(sourceKey{family: family, variant: v}, func() (*text.FontSource, error) {
		return text.NewFontSource(embeddedTTF(family, v))
	})
	if src == nil {
		// The embedded fonts are known-good; this only happens if the
		// parser rejects them, in which case regular is the last resort.
		src = p.cached(sourceKey{family: FamilySans}, func() (*text.FontSource, error) {
			return text.NewFontSource(embeddedTTF(FamilySans, Variant{Weight: WeightNormal}))
		})
	}
	return src
}

// cached returns the source stored under key, loading it on first use.
// Load failures are logged and cached as misses.
func (p *Provider) cached(key sourceKey, load func() (*text.FontSource, error)) *text.FontSource {
	p.mu.Lock()
	defer p.mu.Unlock()
	if src, ok := p.sources[key]; ok {
		return src
	}
	src, err := load()
	if err != nil {
		if !errors.Is(err, errNotInstalled) {
			watermark.Logger().Debug("fonts: load failed", "family", key.family, "err", err)
		}
		src = nil
	}
	p.sources[key] = src
	return src
}

func isFontFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ttf", ".otf", ".ttc":
		return true
	}
	return false
}
