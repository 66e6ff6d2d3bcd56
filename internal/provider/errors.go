// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"errors"
	"fmt"
)

// Error kinds. Per-provider failures carry one of the first three and are
// recorded in a response's error map; the last two fail a whole request.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
	ErrProvider      = errors.New("provider error")
	ErrNoProviders   = errors.New("no providers available")
	ErrValidation    = errors.New("validation error")
)

// ErrUnsupported marks a provider that lacks the requested capability.
var ErrUnsupported = fmt.Errorf("%w: unsupported capability", ErrValidation)

// Error is a failure attributed to one provider.
type Error struct {
	Provider string
	Kind     error
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == ErrTimeout:
		return "timeout"
	case e.Err == nil:
		return e.Kind.Error()
	case e.Kind == ErrConfiguration:
		return fmt.Sprintf("configuration error: %v", e.Err)
	default:
		return e.Err.Error()
	}
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Failure wraps err as an upstream failure of the named provider. Errors
// that are already classified pass through unchanged.
func Failure(name string, err error) error {
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return &Error{Provider: name, Kind: ErrProvider, Err: err}
}

// Timeout reports that the named provider exceeded its time budget.
func Timeout(name string, err error) error {
	return &Error{Provider: name, Kind: ErrTimeout, Err: err}
}

// Validationf formats a request validation error.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
