package weather

import (
	"errors"
	"fmt"
)

// ErrCancelled marks a request that was superseded or whose context ended.
// It is never recorded as a user-visible failure.
var ErrCancelled = errors.New("request cancelled")

// UpstreamError is a transport failure or non-success status from a gateway.
type UpstreamError struct {
	Provider   string
	StatusCode int // 0 for transport failures
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: upstream request failed: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// MalformedResponseError is returned when an upstream payload lacks fields
// the gateway needs or cannot be decoded.
type MalformedResponseError struct {
	Provider string
	Field    string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: malformed response: missing %s", e.Provider, e.Field)
	}
	return fmt.Sprintf("%s: malformed response: %v", e.Provider, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
