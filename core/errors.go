package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// StorageError indicates that a write to the key-value store failed. The
// in-memory state it was meant to persist is left untouched by the caller.
type StorageError struct {
	Key string
	Err error
}

func NewStorageError(key string, err error) error {
	return &StorageError{Key: key, Err: err}
}

func (err StorageError) Error() string {
	return "storage: " + err.Key + ": " + err.Err.Error()
}

func (err StorageError) Unwrap() error { return err.Err }

func IsStorageError(err error) bool {
	_, ok := errors.Cause(err).(*StorageError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
