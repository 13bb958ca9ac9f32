package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports invalid options or mismatched inputs. It is
	// returned before any I/O happens.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrTransfer reports a failed header fetch, body stream or a non-200 status.
	ErrTransfer = errors.New("transfer failed")
	// ErrExtraction reports a failed or rejected unpack.
	ErrExtraction = errors.New("extraction failed")
	// ErrInterrupted reports cancellation of the caller's context. It is never
	// downgraded to a per-item error message.
	ErrInterrupted = errors.New("interrupted")
)

// StatusError is returned when a transfer finishes with a status other than 200.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to url %s finished with status code %d", e.URL, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrTransfer
}
