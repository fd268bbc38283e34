// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"fmt"
	"strconv"

	"github.com/gogpu/watermark"
	"github.com/spf13/cobra"
)

func newGeometryCmd(g *globals) *cobra.Command {
	var flags configFlags

	cmd := &cobra.Command{
		Use:   "geometry",
		Short: "Print the computed tile geometry",
		Long:  `Print the tile, period and raster sizes and both draw placements without rendering.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.file.Validate(); err != nil {
				return err
			}
			p := flags.partial(cmd.Flags())
			if err := p.Validate(); err != nil {
				return err
			}
			cfg, env := g.resolve(p)

			provider, err := g.fontProvider(&flags)
			if err != nil {
				return err
			}
			measured := watermark.MeasureTile(cfg, provider)
			geo := watermark.ComputeGeometry(cfg, env, measured)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Property", "Value"}, geometryRows(geo, cfg)))
			return err
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func geometryRows(g watermark.Geometry, cfg watermark.Config) [][]string {
	sw, sh := g.SurfaceSize()
	style := watermark.ComputeOverlayStyle(g, cfg.Offset, cfg.ZIndex)
	return [][]string{
		{"device pixel ratio", num(g.DevicePixelRatio)},
		{"tile", pair(g.TileWidth, g.TileHeight)},
		{"draw", pair(g.DrawWidth, g.DrawHeight)},
		{"period", pair(g.PeriodWidth, g.PeriodHeight)},
		{"surface", fmt.Sprintf("%d x %d", sw, sh)},
		{"gap", pair(g.GapX, g.GapY)},
		{"rotate", num(g.Rotate) + "°"},
		{"primary draw", pair(g.Primary.DrawX, g.Primary.DrawY)},
		{"primary pivot", pair(g.Primary.PivotX, g.Primary.PivotY)},
		{"alternate draw", pair(g.Alternate.DrawX, g.Alternate.DrawY)},
		{"alternate pivot", pair(g.Alternate.PivotX, g.Alternate.PivotY)},
		{"background-size", style["background-size"]},
		{"background-position", style["background-position"]},
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func pair(a, b float64) string {
	return num(a) + " x " + num(b)
}
