package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNoFiles            = errors.New("no files")
	ErrUnknownTemplate    = errors.New("unknown template id (allowed: 1, 2)")
	ErrNotPDF             = errors.New("file is not a PDF")
	ErrEmptyFile          = errors.New("file is empty")
	ErrFileTooLarge       = errors.New("file is too large")
	ErrEmptyOutput        = errors.New("received empty output")
	ErrServiceUnreachable = errors.New("cannot reach extraction service")
	ErrServiceUnavailable = errors.New("extraction service unavailable")
	ErrResponseTooLarge   = errors.New("extraction response is too large")
	ErrBatchInProgress    = errors.New("another batch is in progress")
	ErrBatchNotFound      = errors.New("batch not found")
	ErrBatchNotRunning    = errors.New("batch is not running")
	ErrResultNotFound     = errors.New("result not found")
	ErrCanceled           = errors.New("batch canceled")
)

// Kind is the failure class of a single extraction.
type Kind string

const (
	KindConnectivity    Kind = "connectivity"
	KindValidation      Kind = "validation"
	KindTransient       Kind = "transient"
	KindPermanent       Kind = "permanent"
	KindEmptyResult     Kind = "empty_result"
	KindMaterialization Kind = "materialization"
	KindCanceled        Kind = "canceled"
)

// ExtractionError describes why one file could not be extracted.
// StatusCode is zero when no HTTP response was received.
type ExtractionError struct {
	Kind       Kind
	StatusCode int
	Reason     string
	// Retryable is the service's own hint, nil when the body had none.
	Retryable *bool
	Err       error
}

func (e *ExtractionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind carried by err, or KindPermanent when err is not an ExtractionError.
func KindOf(err error) Kind {
	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return extErr.Kind
	}
	return KindPermanent
}
