// Package apperr defines the error taxonomy shared by the store and
// service layers: validation, not-found, conflict and storage failures.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports malformed or missing input. Fields lists the
// offending field names.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("validation failed: %s (fields: %s)", e.Reason, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// Validation creates a ValidationError
func Validation(reason string, fields ...string) error {
	return &ValidationError{Fields: fields, Reason: reason}
}

// NotFoundError reports an identifier that does not resolve
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Resource, e.ID)
}

// NotFound creates a NotFoundError
func NotFound(resource string, id interface{}) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError reports a mutation rejected by current state, e.g. a
// transition requested on an order already in a terminal status.
type ConflictError struct {
	Resource string
	ID       interface{}
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %v: %s", e.Resource, e.ID, e.Reason)
}

// Conflict creates a ConflictError
func Conflict(resource string, id interface{}, reason string) error {
	return &ConflictError{Resource: resource, ID: id, Reason: reason}
}

// StorageError wraps an adapter-level failure
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage wraps err as a StorageError; nil stays nil
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a ConflictError
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsStorage reports whether err is a StorageError
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
