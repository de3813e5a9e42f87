package domain

import (
	"errors"
	"fmt"
)

// ErrAlreadyProcessed is the precondition-failed outcome: the entity exists
// but is not in the status the command requires (or was already advanced by
// a concurrent caller). It is a reportable no-op, not a failure.
var ErrAlreadyProcessed = errors.New("not found or already processed")

var ErrOrderNotFound = errors.New("order not found")

// ValidationError rejects malformed or inconsistent input before any store
// write happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StoreError marks a persistence-layer fault. The command is retryable and
// must not be assumed to have partially applied.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store: " + e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

func Storef(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
