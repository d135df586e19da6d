package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports malformed or out-of-range input. It is always raised before any read.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// NotFoundError reports that a referenced record or configuration is absent.
type NotFoundError struct {
	message string
}

func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{message: msg}
}

func (nf NotFoundError) Error() string {
	return nf.message
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

// TransactionError reports that an atomic commit could not complete.
// Nothing was applied; the whole request may be retried.
type TransactionError struct {
	Err error
}

func NewTransactionError(err error) error {
	return &TransactionError{Err: err}
}

func (te TransactionError) Error() string {
	if te.Err == nil {
		return "transaction failed"
	}
	return "transaction failed: " + te.Err.Error()
}

func (te TransactionError) Unwrap() error {
	return te.Err
}

func IsTransactionFailed(err error) bool {
	_, ok := errors.Cause(err).(*TransactionError)
	return ok
}
