// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package imageload fetches and decodes watermark image references.
//
// A reference is a data URI, an http(s) URL or a file path (optionally as a
// file:// URL). PNG, JPEG, GIF, WebP, BMP, TIFF and SVG are decoded.
package imageload

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gogpu/watermark"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Errors returned by the loader.
var (
	// ErrEmptyRef is returned for an empty image reference.
	ErrEmptyRef = errors.New("imageload: empty image reference")

	// ErrUnsupportedScheme is returned for URL schemes other than
	// data, http, https and file.
	ErrUnsupportedScheme = errors.New("imageload: unsupported scheme")

	// ErrMalformedDataURI is returned for data URIs without a comma.
	ErrMalformedDataURI = errors.New("imageload: malformed data URI")

	// ErrRemoteDisabled is returned for http(s) references by a loader
	// created WithoutRemote.
	ErrRemoteDisabled = errors.New("imageload: remote references are disabled")

	// ErrTooLarge is returned when an image exceeds the size limit.
	ErrTooLarge = errors.New("imageload: image too large")
)

// StatusError is returned when an HTTP fetch answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("imageload: GET %s: status %d", e.URL, e.StatusCode)
}

// DefaultMaxBytes is the default limit on encoded image size.
const DefaultMaxBytes = 16 << 20

// MaxPixels is the largest decoded raster accepted, in pixels. Larger
// images are rejected from their header before any pixel is decoded.
const MaxPixels = 8192 * 8192

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for http(s) references.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithMaxBytes limits the encoded size of a single image.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// WithBaseDir resolves relative file paths against dir.
func WithBaseDir(dir string) Option {
	return func(l *Loader) { l.baseDir = dir }
}

// WithoutFiles rejects file references. Hosts that accept references from
// untrusted callers use it to keep the local filesystem private.
func WithoutFiles() Option {
	return func(l *Loader) { l.noFiles = true }
}

// WithoutRemote rejects http(s) references. Hosts that accept references
// from untrusted callers use it so requests cannot reach internal
// addresses through the loader.
func WithoutRemote() Option {
	return func(l *Loader) { l.noRemote = true }
}

// Loader fetches and decodes image references.
// It implements watermark.ImageLoader and is safe for concurrent use.
type Loader struct {
	client   *http.Client
	maxBytes int64
	baseDir  string
	noFiles  bool
	noRemote bool
}

var _ watermark.ImageLoader = (*Loader)(nil)

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches ref on a new goroutine and calls done with the result.
func (l *Loader) Load(ctx context.Context, ref string, done func(image.Image, error)) {
	go func() {
		img, err := l.Fetch(ctx, ref)
		done(img, err)
	}()
}

// Fetch fetches and decodes ref synchronously.
func (l *Loader) Fetch(ctx context.Context, ref string) (image.Image, error) {
	data, hint, err := l.read(ctx, ref)
	if err != nil {
		return nil, err
	}
	return Decode(data, hint)
}

// read returns the encoded bytes of ref and a format hint (a MIME type or
// file extension).
func (l *Loader) read(ctx context.Context, ref string) ([]byte, string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, "", ErrEmptyRef
	}

	scheme, _, found := strings.Cut(ref, ":")
	if !found || len(scheme) == 1 { // no scheme, or a Windows drive letter
		return l.readFile(ref)
	}

	switch strings.ToLower(scheme) {
	case "data":
		return parseDataURI(ref)
	case "http", "https":
		return l.readHTTP(ctx, ref)
	case "file":
		u, err := url.Parse(ref)
		if err != nil {
			return nil, "", fmt.Errorf("imageload: parse %q: %w", ref, err)
		}
		return l.readFile(u.Path)
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}

func (l *Loader) readFile(path string) ([]byte, string, error) {
	if l.noFiles {
		return nil, "", fmt.Errorf("%w: file", ErrUnsupportedScheme)
	}
	if !filepath.IsAbs(path) && l.baseDir != "" {
		path = filepath.Join(l.baseDir, path)
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, "", fmt.Errorf("imageload: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := l.readAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, strings.ToLower(filepath.Ext(path)), nil
}

func (l *Loader) readHTTP(ctx context.Context, ref string) ([]byte, string, error) {
	if l.noRemote {
		return nil, "", ErrRemoteDisabled
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, "", fmt.Errorf("imageload: request %q: %w", ref, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("imageload: fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &StatusError{URL: ref, StatusCode: resp.StatusCode}
	}
	data, err := l.readAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (l *Loader) readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("imageload: read: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// parseDataURI decodes "data:[<mediatype>][;base64],<data>".
func parseDataURI(ref string) ([]byte, string, error) {
	meta, payload, ok := strings.Cut(ref[len("data:"):], ",")
	if !ok {
		return nil, "", ErrMalformedDataURI
	}

	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some encoders drop the padding.
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, "", fmt.Errorf("imageload: data URI: %w", err)
		}
		return data, mime, nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("imageload: data URI: %w", err)
	}
	return []byte(text), mime, nil
}

// Decode decodes encoded image data. hint is a MIME type or file extension
// used to recognize SVG; raster formats are detected from the content.
func Decode(data []byte, hint string) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("imageload: empty image data")
	}
	if isSVG(data, hint) {
		return decodeSVG(data)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imageload: decode: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %d x %d pixels", ErrTooLarge, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imageload: decode: %w", err)
	}
	return img, nil
}
