package status

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a named service could not be resolved to a canonical id.
// It is an expected outcome for lookups, not an upstream failure.
var ErrNotFound = errors.New("service not found")

// UpstreamError indicates a failed call to the status-aggregation API,
// either a non-2xx response or a transport failure.
type UpstreamError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("upstream %s: unexpected status code %d", e.Op, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
