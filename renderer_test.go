// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package watermark

import (
	"context"
	"errors"
	"image"
	"slices"
	"sync"
	"testing"
	"time"
)

// manualLoader holds load requests until the test completes them.
type manualLoader struct {
	mu   sync.Mutex
	reqs []loadRequest
}

type loadRequest struct {
	ref  string
	done func(image.Image, error)
}

func (l *manualLoader) Load(_ context.Context, ref string, done func(image.Image, error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reqs = append(l.reqs, loadRequest{ref: ref, done: done})
}

func (l *manualLoader) request(t *testing.T, i int) loadRequest {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	if i >= len(l.reqs) {
		t.Fatalf("load request %d not issued (have %d)", i, len(l.reqs))
	}
	return l.reqs[i]
}

// attachLog records attached overlays.
type attachLog struct {
	mu       sync.Mutex
	overlays []Overlay
}

func (a *attachLog) attach(o Overlay) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.overlays = append(a.overlays, o)
}

func (a *attachLog) generations() []uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	gens := make([]uint64, len(a.overlays))
	for i, o := range a.overlays {
		gens[i] = o.Generation
	}
	return gens
}

func newTestRenderer(log *attachLog, loader ImageLoader) *Renderer {
	var f surfaceRecorder
	opts := []RendererOption{WithFonts(stubFonts{}), WithSurfaceFactory(f.New)}
	if loader != nil {
		opts = append(opts, WithImageLoader(loader))
	}
	return NewRenderer(log.attach, opts...)
}

var testImage = image.NewRGBA(image.Rect(0, 0, 2, 2))

func TestRendererTextAttachesSynchronously(t *testing.T) {
	var log attachLog
	r := newTestRenderer(&log, nil)

	gen := r.Render(context.Background(), Resolve(WithText("A")))
	if gen != 1 {
		t.Errorf("Render() = %d, want 1", gen)
	}
	if got := log.generations(); !slices.Equal(got, []uint64{1}) {
		t.Errorf("attached generations = %v, want [1]", got)
	}
	if r.Generation() != 1 {
		t.Errorf("Generation() = %d, want 1", r.Generation())
	}
}

func TestRendererImageWaitsForLoad(t *testing.T) {
	var log attachLog
	loader := &manualLoader{}
	r := newTestRenderer(&log, loader)

	r.Render(context.Background(), Resolve(WithImage("a.png")))
	if got := log.generations(); len(got) != 0 {
		t.Fatalf("attached %v before the load completed", got)
	}
	if r.Generation() != 0 {
		t.Errorf("Generation() = %d before load, want 0", r.Generation())
	}

	req := loader.request(t, 0)
	if req.ref != "a.png" {
		t.Errorf("loaded ref = %q, want a.png", req.ref)
	}
	req.done(testImage, nil)
	r.Wait()

	if got := log.generations(); !slices.Equal(got, []uint64{1}) {
		t.Errorf("attached generations = %v, want [1]", got)
	}
}

func TestRendererDiscardsStaleImage(t *testing.T) {
	tests := []struct {
		name  string
		order []int // completion order of the two loads
	}{
		{"newer completes first", []int{1, 0}},
		{"older completes first", []int{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var log attachLog
			loader := &manualLoader{}
			r := newTestRenderer(&log, loader)

			r.Render(context.Background(), Resolve(WithImage("old.png")))
			r.Render(context.Background(), Resolve(WithImage("new.png")))
			for _, i := range tt.order {
				loader.request(t, i).done(testImage, nil)
			}
			r.Wait()

			if got := log.generations(); !slices.Equal(got, []uint64{2}) {
				t.Errorf("attached generations = %v, want [2]", got)
			}
			if r.Generation() != 2 {
				t.Errorf("Generation() = %d, want 2", r.Generation())
			}
		})
	}
}

func TestRendererTextSupersedesPendingImage(t *testing.T) {
	var log attachLog
	loader := &manualLoader{}
	r := newTestRenderer(&log, loader)

	r.Render(context.Background(), Resolve(WithImage("slow.png")))
	r.Render(context.Background(), Resolve(WithText("A")))
	loader.request(t, 0).done(testImage, nil)
	r.Wait()

	if got := log.generations(); !slices.Equal(got, []uint64{2}) {
		t.Errorf("attached generations = %v, want [2]", got)
	}
}

func TestRendererFailedLoadAttachesNothing(t *testing.T) {
	var log attachLog
	loader := &manualLoader{}
	r := newTestRenderer(&log, loader)

	r.Render(context.Background(), Resolve(WithImage("missing.png")))
	loader.request(t, 0).done(nil, errors.New("not found"))
	r.Wait()

	if got := log.generations(); len(got) != 0 {
		t.Errorf("attached generations = %v, want none", got)
	}
}

func TestRendererWithoutLoaderDropsImage(t *testing.T) {
	var log attachLog
	r := newTestRenderer(&log, nil)

	r.Render(context.Background(), Resolve(WithImage("a.png")))
	r.Wait()
	if got := log.generations(); len(got) != 0 {
		t.Errorf("attached generations = %v, want none", got)
	}
}

func TestRendererOnePayloadPerLoad(t *testing.T) {
	var log attachLog
	loader := &manualLoader{}
	r := newTestRenderer(&log, loader)

	for i := range 3 {
		r.Render(context.Background(), Resolve(WithImage("a.png")))
		loader.request(t, i).done(testImage, nil)
	}
	r.Wait()

	if got := log.generations(); !slices.Equal(got, []uint64{1, 2, 3}) {
		t.Errorf("attached generations = %v, want [1 2 3]", got)
	}
}

func TestRendererSetEnv(t *testing.T) {
	var log attachLog
	r := newTestRenderer(&log, nil)

	r.Render(context.Background(), Resolve(WithText("A")))
	r.SetEnv(Env{DevicePixelRatio: 2})
	r.Render(context.Background(), Resolve(WithText("A")))

	log.mu.Lock()
	defer log.mu.Unlock()
	if len(log.overlays) != 2 {
		t.Fatalf("attached %d overlays, want 2", len(log.overlays))
	}
	if got := log.overlays[0].Geometry.DevicePixelRatio; got != 1 {
		t.Errorf("first pass ratio = %v, want 1", got)
	}
	if got := log.overlays[1].Geometry.DevicePixelRatio; got != 2 {
		t.Errorf("second pass ratio = %v, want 2", got)
	}
}

func TestRendererConcurrentGenerationsIncrease(t *testing.T) {
	var log attachLog
	r := newTestRenderer(&log, nil)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Render(context.Background(), Resolve(WithText("A")))
		}()
	}
	wg.Wait()

	gens := log.generations()
	if len(gens) == 0 {
		t.Fatal("nothing attached")
	}
	for i := 1; i < len(gens); i++ {
		if gens[i] <= gens[i-1] {
			t.Fatalf("attached generations not increasing: %v", gens)
		}
	}
	if r.Generation() != gens[len(gens)-1] {
		t.Errorf("Generation() = %d, want last attached %d", r.Generation(), gens[len(gens)-1])
	}
}

func TestRendererAttachMayCallRenderer(t *testing.T) {
	var (
		r    *Renderer
		mu   sync.Mutex
		gens []uint64
		seen []uint64
	)
	r = NewRenderer(func(o Overlay) {
		mu.Lock()
		gens = append(gens, o.Generation)
		mu.Unlock()

		g := r.Generation()
		mu.Lock()
		seen = append(seen, g)
		mu.Unlock()
		if o.Generation == 1 {
			r.SetEnv(Env{DevicePixelRatio: 2})
			r.Render(context.Background(), Resolve(WithText("B")))
		}
	}, WithFonts(stubFonts{}), WithSurfaceFactory((&surfaceRecorder{}).New))

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Render(context.Background(), Resolve(WithText("A")))
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Render did not return while attach called back into the Renderer")
	}

	mu.Lock()
	defer mu.Unlock()
	if !slices.Equal(gens, []uint64{1, 2}) {
		t.Errorf("attached generations = %v, want [1 2]", gens)
	}
	if !slices.Equal(seen, []uint64{1, 2}) {
		t.Errorf("Generation() inside attach = %v, want [1 2]", seen)
	}
	if got := r.Generation(); got != 2 {
		t.Errorf("Generation() = %d, want 2", got)
	}
}

func TestRendererSlowAttachDoesNotBlockRender(t *testing.T) {
	loader := &manualLoader{}
	release := make(chan struct{})
	entered := make(chan uint64, 4)
	r := NewRenderer(func(o Overlay) {
		entered <- o.Generation
		<-release
	}, WithFonts(stubFonts{}), WithSurfaceFactory((&surfaceRecorder{}).New), WithImageLoader(loader))

	r.Render(context.Background(), Resolve(WithImage("a.png")))
	go loader.request(t, 0).done(testImage, nil)
	select {
	case gen := <-entered:
		if gen != 1 {
			t.Fatalf("first attach generation = %d, want 1", gen)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("attach never called")
	}

	// attach is blocked; the Renderer must stay usable.
	returned := make(chan uint64, 1)
	go func() {
		returned <- r.Render(context.Background(), Resolve(WithText("B")))
	}()
	select {
	case gen := <-returned:
		if gen != 2 {
			t.Errorf("Render() = %d, want 2", gen)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Render blocked while attach was running")
	}
	if got := r.Generation(); got != 2 {
		t.Errorf("Generation() = %d, want 2", got)
	}

	close(release)
	select {
	case gen := <-entered:
		if gen != 2 {
			t.Errorf("second attach generation = %d, want 2", gen)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pending overlay was never delivered")
	}
	r.Wait()
}
