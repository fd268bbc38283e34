// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package watermark

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"sync"
	"unicode/utf8"

	"github.com/gogpu/gg/text"
	"github.com/gogpu/watermark/canvas"
)

// recordingSurface records every drawing call as a string.
type recordingSurface struct {
	width, height int
	calls         []string
	encodeErr     error
}

func newRecordingSurface(width, height int) *recordingSurface {
	return &recordingSurface{width: width, height: height}
}

func (r *recordingSurface) record(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recordingSurface) Push()                  { r.record("Push") }
func (r *recordingSurface) Pop()                   { r.record("Pop") }
func (r *recordingSurface) Translate(x, y float64) { r.record("Translate(%g, %g)", x, y) }
func (r *recordingSurface) Rotate(angle float64)   { r.record("Rotate(%.4f)", angle) }
func (r *recordingSurface) SetFont(text.Face)      { r.record("SetFont") }
func (r *recordingSurface) SetColor(color.Color)   { r.record("SetColor") }

func (r *recordingSurface) SetTextAlign(a canvas.Align) {
	r.record("SetTextAlign(%s)", a)
}

func (r *recordingSurface) SetTextBaseline(b canvas.Baseline) {
	r.record("SetTextBaseline(%s)", b)
}

func (r *recordingSurface) FillText(s string, x, y float64) {
	r.record("FillText(%q, %g, %g)", s, x, y)
}

func (r *recordingSurface) DrawImage(_ image.Image, x, y, w, h float64) {
	r.record("DrawImage(%g, %g, %g, %g)", x, y, w, h)
}

// EncodePNG writes a stand-in encoding that identifies the surface and
// its call log, so equal drawing yields equal bytes.
func (r *recordingSurface) EncodePNG(w io.Writer) error {
	if r.encodeErr != nil {
		return r.encodeErr
	}
	_, err := fmt.Fprintf(w, "%dx%d %q", r.width, r.height, r.calls)
	return err
}

// surfaceRecorder is a SurfaceFactory that keeps every surface it creates.
type surfaceRecorder struct {
	mu       sync.Mutex
	surfaces []*recordingSurface
}

func (f *surfaceRecorder) New(width, height int) Surface {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := newRecordingSurface(width, height)
	f.surfaces = append(f.surfaces, s)
	return s
}

func (f *surfaceRecorder) last() *recordingSurface {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.surfaces) == 0 {
		return nil
	}
	return f.surfaces[len(f.surfaces)-1]
}

// stubFonts measures every rune as 10px wide regardless of font and size.
type stubFonts struct{}

const stubRuneWidth = 10

func (stubFonts) Face(Font, float64) text.Face { return nil }

func (stubFonts) Advance(_ Font, _ float64, s string) float64 {
	return float64(utf8.RuneCountInString(s) * stubRuneWidth)
}

func stubDeps(f *surfaceRecorder) Deps {
	return Deps{Fonts: stubFonts{}, NewSurface: f.New}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

var errEncode = errors.New("encode failed")
