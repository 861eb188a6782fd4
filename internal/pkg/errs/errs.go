package errs

import (
	"errors"
	"fmt"
	"strings"

	"roomchat/internal/pkg/logx"
)

// CustomError is the error structure used throughout the application.
// It carries a business code, the layer kind, a client-facing message and an HTTP status.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Kind is the layer the error belongs to.
	Kind Kind

	// Message is the client-facing error description.
	Message string

	// Status is the HTTP status code this error is reported with.
	Status int

	cause error
}

// Error implements the error interface.
func (e *CustomError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("Error Code %d (%s, HTTP %d): %s: %v", e.Code, e.Kind, e.Status, e.Message, e.cause)
	}
	return fmt.Sprintf("Error Code %d (%s, HTTP %d): %s", e.Code, e.Kind, e.Status, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *CustomError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a CustomError with the same code.
func (e *CustomError) Is(target error) bool {
	var t *CustomError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewError builds a *CustomError from a predefined code.
// An error passed as the first detail becomes the cause; remaining details (or all
// details, when the first is not an error) format the message template.
// Unknown codes degrade to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)
		templateErr = errorMap[ErrUnknown]
	}

	customErr := templateErr

	if len(details) > 0 {
		if cause, isErr := details[0].(error); isErr {
			customErr.cause = cause
			details = details[1:]
		}
	}

	if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else {
			logx.Warn(
				"Details provided for error, but message template has no formatting placeholders. Details ignored.",
				"code", code,
			)
		}
	}

	return &customErr
}

// From converts any error into a *CustomError.
// Errors that are not already classified are reported as ErrUnknown and logged.
func From(err error) *CustomError {
	if err == nil {
		return nil
	}

	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr
	}

	logx.Error(err, "Unclassified error surfaced to transport")
	return NewError(ErrUnknown, err)
}

// HasCode reports whether err is a *CustomError with the given code.
func HasCode(err error, code int) bool {
	var customErr *CustomError
	return errors.As(err, &customErr) && customErr.Code == code
}
