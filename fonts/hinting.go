// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fonts

import (
	"fmt"
	"strings"

	"github.com/gogpu/gg/text"
)

// ParseHinting parses a glyph hinting mode: "none", "vertical" or "full".
func ParseHinting(s string) (text.Hinting, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return text.HintingNone, nil
	case "vertical":
		return text.HintingVertical, nil
	case "full":
		return text.HintingFull, nil
	}
	return text.HintingFull, fmt.Errorf("%w: %q", ErrUnknownHinting, s)
}
