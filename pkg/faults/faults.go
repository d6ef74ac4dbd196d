// Package faults defines the error taxonomy shared by every layer of the
// engine. Stores translate driver errors into these; HTTP handlers map
// them onto status codes.
package faults

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound marks a referenced id, key, slug, or placement as absent.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed or missing caller input. Issues are
// collected in a batch so callers can surface every problem at once.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	return strings.Join(e.Issues, "; ")
}

// Validation builds a ValidationError from one or more issues.
func Validation(issues ...string) error {
	return &ValidationError{Issues: issues}
}

// Validationf builds a single-issue ValidationError.
func Validationf(format string, args ...any) error {
	return &ValidationError{Issues: []string{fmt.Sprintf(format, args...)}}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidationIssues extracts the issue list from err, or nil.
func ValidationIssues(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Issues
	}
	return nil
}

// ConflictError reports a uniqueness or state violation: duplicate
// (field, container) placement, deleting a referenced or system field,
// submitting to an inactive form.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// Conflict builds a ConflictError.
func Conflict(msg string) error {
	return &ConflictError{Msg: msg}
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// StorageError wraps an underlying store failure. It is surfaced as-is
// and never retried by the engine.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a StorageError. Returns nil when err is nil and
// passes engine errors through untouched so taxonomy checks still work.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) || IsConflict(err) || errors.Is(err, ErrNotFound) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorage reports whether err is (or wraps) a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
