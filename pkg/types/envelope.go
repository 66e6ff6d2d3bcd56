// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// Envelope is the uniform wrapper returned by every engine operation.
// A successful envelope may still carry per-provider errors inside Data.
// On the wire data and error are always present; absent values are null.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data"`
	Error   string `json:"error"`
}

// OK wraps data in a successful envelope.
func OK[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: &data}
}

// Fail builds a failed envelope carrying one top-level message. Data may be
// nil; when set it holds diagnostics gathered before the failure.
func Fail[T any](data *T, err error) Envelope[T] {
	return Envelope[T]{Success: false, Data: data, Error: err.Error()}
}

// MarshalJSON encodes an empty Error as null.
func (e Envelope[T]) MarshalJSON() ([]byte, error) {
	var msg *string
	if e.Error != "" {
		msg = &e.Error
	}
	return json.Marshal(struct {
		Success bool    `json:"success"`
		Data    *T      `json:"data"`
		Error   *string `json:"error"`
	}{e.Success, e.Data, msg})
}
