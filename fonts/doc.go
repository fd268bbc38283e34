// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package fonts resolves CSS-like font descriptors to gg text faces.
//
// Resolution tries, in order, each entry of a comma-separated family list:
//
//   - a path to a .ttf, .otf or .ttc file;
//   - the generic families "sans-serif", "system-ui" and "monospace", and
//     the "Go" and "Go Mono" families, served from the embedded Go fonts;
//   - installed system fonts, when enabled with WithSystemFonts.
//
// A descriptor nothing matches falls back to the embedded Go sans-serif
// font in the requested weight and style. Resolution never fails.
//
// Parsed font sources are cached per family and variant, so repeated
// render passes do not re-read font files.
package fonts
