package core

import (
	"strings"

	"github.com/pkg/errors"
)

// FieldError ties a message to one input field, named as in the JSON payload.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a bad input that is reported field by field when Fields is set.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

// NewFieldError reports err against a single field.
func NewFieldError(field string, err error) error {
	return NewValidationError(err, FieldError{Field: field, Error: err.Error()})
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, fe := range e.Fields {
		msgs = append(msgs, fe.Field+": "+fe.Error)
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Messages maps every field to its message, nil without field errors.
func (e *ValidationError) Messages() map[string]string {
	if len(e.Fields) == 0 {
		return nil
	}
	msgs := make(map[string]string, len(e.Fields))
	for _, fe := range e.Fields {
		msgs[fe.Field] = fe.Error
	}
	return msgs
}

// shutdownError marks a failure the process cannot recover from while serving.
type shutdownError struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdownError{message: msg}
}

func (e *shutdownError) Error() string { return e.message }

func IsShutdown(err error) bool {
	var se *shutdownError
	return errors.As(err, &se)
}
