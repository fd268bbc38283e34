// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fonts

import "errors"

// ErrUnknownHinting is returned by ParseHinting for unknown modes.
var ErrUnknownHinting = errors.New("fonts: unknown hinting mode (want none, vertical or full)")

// errNotInstalled marks a system family that is not installed.
// It is an expected miss and not logged.
var errNotInstalled = errors.New("fonts: family not installed")
