// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"reflect"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/watermark"
	"github.com/gogpu/watermark/internal/config"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces the burst of events editors produce on save.
const watchDebounce = 100 * time.Millisecond

func newWatchCmd(g *globals) *cobra.Command {
	var (
		output string
		flags  configFlags
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render whenever the configuration file changes",
		Long: `Watch the --config file and write a new tile each time the resolved
configuration changes. Saves that do not change the configuration are ignored.`,
		Example: `  watermark watch -c watermark.toml -o tile.png`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if g.configPath == "" {
				return errors.New("watch requires --config")
			}
			if output == "" {
				return errors.New("watch requires --output")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, g, &flags, flags.partial(cmd.Flags()), output)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	return cmd
}

func runWatch(ctx context.Context, g *globals, flags *configFlags, overrides config.Partial, output string) error {
	logger := loggerFromContext(ctx)
	format := outputFormat("", output)
	provider, err := g.fontProvider(flags)
	if err != nil {
		return err
	}

	r := watermark.NewRenderer(func(o watermark.Overlay) {
		data, err := encodeOverlay(o, format, "")
		if err == nil {
			err = writeFileAtomic(output, data)
		}
		if err != nil {
			logger.Error("Write failed", "file", output, "err", err)
			return
		}
		logger.Info("Rendered", "generation", o.Generation, "file", output)
	},
		watermark.WithFonts(provider),
		watermark.WithImageLoader(g.imageLoader()),
	)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer func() { _ = w.Close() }()

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	path, err := filepath.Abs(g.configPath)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	type pass struct {
		cfg watermark.Config
		env watermark.Env
	}
	var last *pass
	rerender := func() {
		f, err := config.Load(g.configPath)
		if err != nil {
			logger.Warn("Configuration rejected", "err", err)
			return
		}
		if err := overrides.Validate(); err != nil {
			logger.Warn("Configuration rejected", "err", err)
			return
		}
		merged := f.Partial.Merge(overrides)
		next := pass{
			cfg: watermark.Resolve(merged.Options()...),
			env: merged.Env(watermark.Env{DevicePixelRatio: 1}),
		}
		if last != nil && reflect.DeepEqual(*last, next) {
			logger.Debug("Configuration unchanged")
			return
		}
		last = &next
		r.SetEnv(next.env)
		gen := r.Render(ctx, next.cfg)
		logger.Debug("Render started", "generation", gen)
	}

	logger.Info("Watching", "file", g.configPath)
	rerender()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			r.Wait()
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce = time.After(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error", "err", err)
		case <-debounce:
			debounce = nil
			rerender()
		}
	}
}
