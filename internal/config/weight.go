// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Weight is a font weight given either as a keyword ("bold") or as a
// number (700).
type Weight string

// UnmarshalTOML implements toml.Unmarshaler.
func (w *Weight) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		*w = Weight(v)
	case int64:
		*w = Weight(strconv.FormatInt(v, 10))
	case float64:
		*w = Weight(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return fmt.Errorf("config: font weight: unsupported value %v", v)
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *Weight) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*w = Weight(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("config: font weight: %w", err)
	}
	*w = Weight(n.String())
	return nil
}
