package domain

import (
	"errors"
	"fmt"
)

// ErrorKind tags a provider failure so callers can branch on what happened
// instead of inspecting provider-specific codes.
type ErrorKind int

const (
	// KindTransient covers every failure that is neither NotFound nor
	// Conflict: network errors, throttling, 5xx, validation rejections.
	KindTransient ErrorKind = iota
	// KindNotFound means the addressed resource does not exist.
	KindNotFound
	// KindConflict means the resource (or membership) already exists.
	KindConflict
)

// String returns the lowercase kind name used in logs and metrics.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "transient"
	}
}

// ProviderError is the tagged result every provider adapter returns on
// failure. Code and Message are the provider's own values and are safe to
// echo where the API contract says so (recording rules).
type ProviderError struct {
	Kind    ErrorKind
	Code    int
	Status  int
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("provider %s (code %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("provider %s: %s", e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// KindOf reports the tag of err, defaulting to KindTransient for errors that
// did not come from a provider adapter.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindTransient
}

// IsNotFound reports whether err is a provider NotFound.
func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }

// IsConflict reports whether err is a provider Conflict.
func IsConflict(err error) bool { return err != nil && KindOf(err) == KindConflict }
