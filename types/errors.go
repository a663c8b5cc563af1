package types

import (
	"errors"
	"fmt"
)

// ValidationError is a business-rule violation or malformed input. It is never
// retried and leaves stored state untouched.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Message string
	Err     error
}

func (e *NotFoundError) Error() string { return e.Message }
func (e *NotFoundError) Unwrap() error { return e.Err }

// SystemError is a store or collaborator failure.
type SystemError struct {
	Message string
	Err     error
}

func (e *SystemError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}
func (e *SystemError) Unwrap() error { return e.Err }

func Validationf(cause error, format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...), Err: cause}
}

func NotFoundf(cause error, format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...), Err: cause}
}

func Systemf(cause error, format string, args ...any) error {
	return &SystemError{Message: fmt.Sprintf(format, args...), Err: cause}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var v *NotFoundError
	return errors.As(err, &v)
}

func IsSystem(err error) bool {
	var v *SystemError
	return errors.As(err, &v)
}
