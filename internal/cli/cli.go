// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cli implements the watermark command-line interface.
//
// Commands:
//   - render: render a watermark tile to PNG, CSS, JSON or HTML
//   - geometry: print the computed tile geometry
//   - watch: re-render whenever the configuration file changes
//   - serve: run the HTTP service
//
// Every command reads an optional TOML file (--config); flags override
// the file. --verbose (-v) enables debug logging.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/gogpu/watermark"
	"github.com/gogpu/watermark/fonts"
	"github.com/gogpu/watermark/internal/config"
	"github.com/gogpu/watermark/internal/imageload"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the watermark CLI.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

// globals holds the persistent flags and the configuration file they load.
type globals struct {
	configPath string
	verbose    bool
	file       config.File
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:          "watermark",
		Short:        "Render tiled, rotated watermark overlays",
		Long:         `watermark renders text or image content into a repeating, rotated background tile and the CSS needed to lay it over a page.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if g.verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)
			installLogger(logger)
			cmd.SetContext(withLogger(cmd.Context(), logger))

			if g.configPath == "" {
				return nil
			}
			f, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			g.file = f
			logger.Debug("Loaded configuration", "file", g.configPath)
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("watermark %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "TOML configuration file")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd(g))
	root.AddCommand(newGeometryCmd(g))
	root.AddCommand(newWatchCmd(g))
	root.AddCommand(newServeCmd(g))

	return root
}

// fontProvider returns the provider for the loaded configuration and the
// font flags. --hinting overrides the file's hinting mode.
func (g *globals) fontProvider(f *configFlags) (*fonts.Provider, error) {
	var opts []fonts.Option
	if f.systemFonts || g.file.SystemFonts {
		opts = append(opts, fonts.WithSystemFonts(""))
	}
	mode := g.file.Hinting
	if f.hinting != "" {
		mode = f.hinting
	}
	if mode != "" {
		h, err := fonts.ParseHinting(mode)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fonts.WithHinting(h))
	}
	return fonts.NewProvider(opts...), nil
}

// resolve merges the flags over the file and resolves the result.
func (g *globals) resolve(flags config.Partial) (watermark.Config, watermark.Env) {
	merged := g.file.Partial.Merge(flags)
	return watermark.Resolve(merged.Options()...), merged.Env(watermark.Env{DevicePixelRatio: 1})
}

// imageLoader returns a loader resolving relative image paths against the
// directory of the configuration file.
func (g *globals) imageLoader(opts ...imageload.Option) *imageload.Loader {
	if g.configPath != "" {
		opts = append(opts, imageload.WithBaseDir(filepath.Dir(g.configPath)))
	}
	return imageload.New(opts...)
}
