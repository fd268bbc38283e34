// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gogpu/watermark"
	"github.com/gogpu/watermark/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	formatPNG  = "png"
	formatCSS  = "css"
	formatJSON = "json"
	formatHTML = "html"
)

var errTerminal = errors.New("refusing to write PNG to a terminal; use -o or redirect stdout")

type renderOpts struct {
	output string
	format string
	child  string
	flags  configFlags
}

func newRenderCmd(g *globals) *cobra.Command {
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a watermark tile",
		Long: `Render a watermark tile and write it as a PNG image, the overlay CSS,
a JSON description of the overlay, or an HTML container wrapping --child.`,
		Example: `  watermark render -t CONFIDENTIAL -o tile.png
  watermark render -t "Internal" -t "do not share" --rotate -30 -f css
  watermark render -c watermark.toml -f html --child "<main>...</main>"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return runRender(cmd, g, &opts)
		},
	}

	opts.flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: png, css, json, html (default: from -o extension, else png)")
	cmd.Flags().StringVar(&opts.child, "child", "", "HTML block wrapped by the html format")
	return cmd
}

func validateFormat(f string) error {
	switch f {
	case "", formatPNG, formatCSS, formatJSON, formatHTML:
		return nil
	}
	return fmt.Errorf("invalid format: %s (must be png, css, json or html)", f)
}

// outputFormat returns the explicit format or infers it from the output
// file extension.
func outputFormat(format, output string) string {
	if format != "" {
		return format
	}
	switch strings.ToLower(filepath.Ext(output)) {
	case ".css":
		return formatCSS
	case ".json":
		return formatJSON
	case ".html", ".htm":
		return formatHTML
	}
	return formatPNG
}

func runRender(cmd *cobra.Command, g *globals, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	if err := g.file.Validate(); err != nil {
		return err
	}
	flags := opts.flags.partial(cmd.Flags())
	if err := flags.Validate(); err != nil {
		return err
	}
	cfg, env := g.resolve(flags)

	provider, err := g.fontProvider(&opts.flags)
	if err != nil {
		return err
	}
	o, err := renderOnce(ctx, cfg, env, provider, g)
	if err != nil {
		return err
	}

	format := outputFormat(opts.format, opts.output)
	data, err := encodeOverlay(o, format, opts.child)
	if err != nil {
		return err
	}

	if opts.output == "" || opts.output == "-" {
		w := cmd.OutOrStdout()
		if format == formatPNG && isTerminal(w) {
			return errTerminal
		}
		_, err := w.Write(data)
		return err
	}
	if err := writeFileAtomic(opts.output, data); err != nil {
		return err
	}
	prog.done("Rendered watermark")
	printFile(cmd.ErrOrStderr(), opts.output)
	return nil
}

// renderOnce runs a single pass through a Renderer and waits for it.
func renderOnce(ctx context.Context, cfg watermark.Config, env watermark.Env, fonts watermark.FontProvider, g *globals) (watermark.Overlay, error) {
	var (
		out watermark.Overlay
		ok  bool
	)
	loader := &reportingLoader{next: g.imageLoader()}
	r := watermark.NewRenderer(func(o watermark.Overlay) {
		out, ok = o, true
	},
		watermark.WithEnv(env),
		watermark.WithFonts(fonts),
		watermark.WithImageLoader(loader),
	)
	r.Render(ctx, cfg)
	r.Wait()

	if !ok {
		if err := loader.Err(); err != nil {
			return watermark.Overlay{}, err
		}
		return watermark.Overlay{}, errors.New("render produced no overlay")
	}
	return out, nil
}

func encodeOverlay(o watermark.Overlay, format, child string) ([]byte, error) {
	switch format {
	case formatCSS:
		return []byte(o.CSS() + "\n"), nil
	case formatJSON:
		data, err := json.MarshalIndent(server.NewOverlayResponse(o, ""), "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case formatHTML:
		html, err := watermark.Compose(o, template.HTML(child)) //nolint:gosec // the child block comes from the command line
		if err != nil {
			return nil, err
		}
		return []byte(string(html) + "\n"), nil
	default:
		return o.Payload.PNG, nil
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeFileAtomic writes data to a temporary file next to path and
// renames it into place, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// reportingLoader forwards to next and remembers the last load error so
// the command can report why no overlay was produced.
type reportingLoader struct {
	next watermark.ImageLoader

	mu  sync.Mutex
	err error
}

func (l *reportingLoader) Load(ctx context.Context, ref string, done func(image.Image, error)) {
	l.next.Load(ctx, ref, func(img image.Image, err error) {
		l.mu.Lock()
		l.err = err
		l.mu.Unlock()
		done(img, err)
	})
}

// Err returns the error of the most recent completed load.
func (l *reportingLoader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
