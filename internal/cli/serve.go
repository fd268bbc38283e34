// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"os/signal"
	"syscall"

	"github.com/gogpu/watermark/internal/imageload"
	"github.com/gogpu/watermark/internal/server"
	"github.com/spf13/cobra"
)

const defaultAddr = ":8080"

func newServeCmd(g *globals) *cobra.Command {
	var (
		addr       string
		allowFiles  bool
		allowRemote bool
		flags       configFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP rendering service",
		Long: `Serve watermark renders over HTTP. The configuration file and flags
set the defaults that request configurations are merged over.`,
		Example: `  watermark serve --addr :9000
  curl 'localhost:9000/v1/tile.png?content=DRAFT&rotate=-30' -o tile.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.file.Validate(); err != nil {
				return err
			}
			overrides := flags.partial(cmd.Flags())
			if err := overrides.Validate(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") && g.file.Server.Addr != "" {
				addr = g.file.Server.Addr
			}

			var loadOpts []imageload.Option
			if !allowFiles && !g.file.Server.AllowFiles {
				loadOpts = append(loadOpts, imageload.WithoutFiles())
			}
			if !allowRemote && !g.file.Server.AllowRemote {
				loadOpts = append(loadOpts, imageload.WithoutRemote())
			}

			provider, err := g.fontProvider(&flags)
			if err != nil {
				return err
			}
			srv := server.New(
				server.WithDefaults(g.file.Partial.Merge(overrides)),
				server.WithFonts(provider),
				server.WithFetcher(g.imageLoader(loadOpts...)),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, addr)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().BoolVar(&allowFiles, "allow-files", false, "allow requests to reference local image files")
	cmd.Flags().BoolVar(&allowRemote, "allow-remote", false, "allow requests to reference http(s) images")
	return cmd
}
