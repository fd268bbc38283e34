// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command watermark renders tiled, rotated watermark overlays.
//
// Usage:
//
//	watermark render -t CONFIDENTIAL -o tile.png
//	watermark geometry -t CONFIDENTIAL --dpr 2
//	watermark watch -c watermark.toml -o tile.png
//	watermark serve --addr :8080
package main

import (
	"os"

	"github.com/gogpu/watermark/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(version, commit, date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
