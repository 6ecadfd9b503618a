package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// FetchError reports a source URL that could not be turned into text.
// It is non-fatal: the remaining sources are still used.
type FetchError struct {
	URL    string
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed: %s", e.URL, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ErrExtractionUnavailable means the configured extraction collaborator could
// not be reached. It fails the whole request.
var ErrExtractionUnavailable = errors.New("extraction service unavailable")

// ErrNoContent means no source produced any usable text.
var ErrNoContent = errors.New("no usable source content")

// ErrUnsupportedContent is returned by fetchers for bodies that are not text.
var ErrUnsupportedContent = errors.New("unsupported content type")

// ErrNotFound is returned by an ArticleStore for an unknown article ID.
var ErrNotFound = errors.New("article not found")

// InvalidJobError rejects a JobDescriptor before any stage runs.
type InvalidJobError struct {
	Reason string
}

func (e *InvalidJobError) Error() string {
	return "invalid job: " + e.Reason
}

// SchemaMismatchError is a configuration error: a template references fields
// its schema does not define.
type SchemaMismatchError struct {
	Template string
	Schema   string
	Fields   []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("template %q references fields not in schema %q: %s",
		e.Template, e.Schema, strings.Join(e.Fields, ", "))
}

// Stage names a pipeline step for error reporting.
type Stage string

const (
	StageInput     Stage = "input"
	StageNormalize Stage = "normalize"
	StageExtract   Stage = "extract"
	StageRender    Stage = "render"
)

// PipelineError identifies which stage failed a generation and why.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
