package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a repository or package is not found.
var ErrNotFound = errors.New("not found")

// ErrNoCatalog is returned when the technology catalog cannot be
// loaded at all. This is the only error class that aborts a run.
var ErrNoCatalog = errors.New("no technology catalog")

// NotFoundError wraps ErrNotFound with additional context.
type NotFoundError struct {
	Source Source
	Name   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s not found", e.Source, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// RateLimitError is returned when a source rate limits requests.
type RateLimitError struct {
	Source     Source
	RetryAfter int // seconds
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited, retry after %d seconds", e.Source, e.RetryAfter)
}

// SourceUnavailableError records a per-source, per-technology fetch
// failure. It is recovered locally: the pipeline turns it into a
// SourceMetric with FetchSucceeded=false and never aborts the run.
type SourceUnavailableError struct {
	Source     Source
	Technology string
	Err        error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s unavailable: %v", e.Source, e.Technology, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}
