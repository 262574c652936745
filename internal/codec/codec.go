// Package codec serializes record collections to storage blobs and
// validates their shape on the way back. Stored bytes are never trusted:
// a payload that fails to parse or fails its shape check is discarded and
// replaced with the caller's default, so corrupted state cannot propagate
// into application logic.
package codec

import (
	"encoding/json"
	"fmt"
)

// DecodeError describes a stored payload that had to be discarded.
// Callers receiving one should overwrite the stored bytes with the
// returned default on their next write (self-healing).
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("corrupt stored payload: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// Decode parses raw into a value of type T. An empty raw string (absent
// key) yields def with no error. A payload that fails to parse, or
// parses but fails validate, yields def plus a *DecodeError so the
// caller can repair the stored bytes. validate may be nil.
func Decode[T any](raw string, def T, validate func(T) error) (T, error) {
	if raw == "" {
		return def, nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return def, &DecodeError{Cause: err}
	}
	if validate != nil {
		if err := validate(v); err != nil {
			return def, &DecodeError{Cause: err}
		}
	}
	return v, nil
}

// Encode serializes a value for storage.
func Encode[T any](v T) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return string(data), nil
}
