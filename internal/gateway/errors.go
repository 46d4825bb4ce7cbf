package gateway

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// OpError wraps a persistence failure with the model and operation that
// produced it. The gateway never retries; callers decide what to do.
type OpError struct {
	Model string
	Op    string // "list", "get", "create", "update", "delete", "options"
	Err   error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Model, e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// opErr builds an OpError for the given model and operation.
func opErr(model, op string, err error) error {
	return &OpError{Model: model, Op: op, Err: err}
}

// FieldError is a single validation failure on a submitted form value.
// Collected and rendered inline next to the offending input.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
