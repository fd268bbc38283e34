// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package watermark

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
)

// ErrSlotRequired is returned by Compose when no child block is given.
var ErrSlotRequired = errors.New("watermark: a child block is required")

// SlotCountError is returned by Compose when more than one child block is
// given.
type SlotCountError struct {
	Got int
}

func (e *SlotCountError) Error() string {
	return fmt.Sprintf("watermark: exactly one child block is required, got %d", e.Got)
}

var containerTmpl = template.Must(template.New("container").Parse(
	`<div style="position: relative; height: 100%">{{.Child}}<div style="{{.Style}}"></div></div>`))

// Compose wraps exactly one child block in a relatively positioned
// container and appends the overlay element to it.
//
// Missing or multiple children are usage errors: Compose returns
// ErrSlotRequired or a *SlotCountError.
func Compose(o Overlay, children ...template.HTML) (template.HTML, error) {
	switch len(children) {
	case 0:
		return "", ErrSlotRequired
	case 1:
	default:
		return "", &SlotCountError{Got: len(children)}
	}

	var buf bytes.Buffer
	err := containerTmpl.Execute(&buf, struct {
		Child template.HTML
		Style template.CSS
	}{
		Child: children[0],
		Style: template.CSS(o.CSS()), //nolint:gosec // generated from numeric geometry and an encoded data URI
	})
	if err != nil {
		return "", fmt.Errorf("watermark: compose: %w", err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // children are trusted HTML by contract
}

// MustCompose is like Compose but panics on a usage error.
func MustCompose(o Overlay, children ...template.HTML) template.HTML {
	html, err := Compose(o, children...)
	if err != nil {
		panic(err)
	}
	return html
}
