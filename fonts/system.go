// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fonts

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/fontscan"
	"github.com/gogpu/watermark"
)

// printfLogger adapts slog to the Printf logger fontscan expects.
type printfLogger struct{}

func (printfLogger) Printf(format string, args ...any) {
	watermark.Logger().Debug("fonts: " + fmt.Sprintf(format, args...))
}

// systemFonts looks up installed fonts. The font index is built on first
// use and shared by every lookup.
type systemFonts struct {
	cacheDir string

	once sync.Once
	fm   *fontscan.FontMap
	err  error

	mu sync.Mutex // fontscan.FontMap is not safe for concurrent queries
}

func newSystemFonts(cacheDir string) *systemFonts {
	return &systemFonts{cacheDir: cacheDir}
}

func (s *systemFonts) init() error {
	s.once.Do(func() {
		fm := fontscan.NewFontMap(printfLogger{})
		if err := fm.UseSystemFonts(s.cacheDir); err != nil {
			s.err = fmt.Errorf("fonts: scan system fonts: %w", err)
			return
		}
		s.fm = fm
	})
	return s.err
}

// locate returns the file of the installed font closest to family in
// variant v. It reports false if the family is not installed.
func (s *systemFonts) locate(family string, v Variant) (string, bool) {
	if err := s.init(); err != nil {
		watermark.Logger().Debug("fonts: system fonts unavailable", slog.Any("err", err))
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loc, ok := s.fm.FindSystemFont(family)
	if !ok || loc.File == "" {
		return "", false
	}

	// The family is installed; prefer the face matching the variant.
	aspect := font.Aspect{Style: font.StyleNormal, Weight: font.Weight(v.Weight)}
	if v.Italic {
		aspect.Style = font.StyleItalic
	}
	s.fm.SetQuery(fontscan.Query{Families: []string{family}, Aspect: aspect})
	if face := s.fm.ResolveFace('A'); face != nil {
		if match := s.fm.FontLocation(face.Font); match.File != "" {
			return match.File, true
		}
	}
	return loc.File, true
}
