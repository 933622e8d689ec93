package tracker

import (
	"errors"
	"fmt"
)

// ValidationKind classifies a rejected submission.
type ValidationKind string

const (
	MissingField ValidationKind = "missingField"
	InvalidEnum  ValidationKind = "invalidEnum"
	MissingGPS   ValidationKind = "missingGps"
	InvalidValue ValidationKind = "invalidValue"
)

// ValidationError reports a malformed submission the caller can correct.
type ValidationError struct {
	Kind    ValidationKind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s) on %q: %s", e.Kind, e.Field, e.Message)
}

func missingField(field string) *ValidationError {
	return &ValidationError{Kind: MissingField, Field: field, Message: field + " is required"}
}

// SequenceReason names the lifecycle rule an operation violated.
type SequenceReason string

const (
	LoginRequired     SequenceReason = "loginRequired"
	DayAlreadyStarted SequenceReason = "dayAlreadyStarted"
	DayNotStarted     SequenceReason = "dayNotStarted"
	DayActive         SequenceReason = "dayActive"
)

var sequenceMessages = map[SequenceReason]string{
	LoginRequired:     "officer must log in first",
	DayAlreadyStarted: "day has already been started",
	DayNotStarted:     "day has not been started",
	DayActive:         "day must be ended first",
}

// SequenceError reports an operation that is not valid in the officer's current phase.
type SequenceError struct {
	Reason SequenceReason
	Phase  Phase
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("%s: %s (phase %s)", e.Reason, sequenceMessages[e.Reason], e.Phase)
}

// StorageError wraps a failure of the backing activity log.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("activity log %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Kind returns the stable machine-checkable kind of a tracker error, or "" for
// errors that did not originate here.
func Kind(err error) string {
	var ve *ValidationError
	var se *SequenceError
	var ste *StorageError
	switch {
	case errors.As(err, &ve):
		return string(ve.Kind)
	case errors.As(err, &se):
		return string(se.Reason)
	case errors.As(err, &ste):
		return "storage"
	}
	return ""
}
