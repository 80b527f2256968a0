package errors

import "errors"

// Shared error codes understood by the transport layers.
const (
	CodeInvalidInput       = "invalid_input"
	CodeInvalidToken       = "invalid_token"
	CodeCatalogUnavailable = "catalog_unavailable"
	CodeUpstream           = "upstream_error"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// InvalidInput is shorthand for rejecting caller supplied values.
func InvalidInput(message string) error {
	return &AppError{Code: CodeInvalidInput, Message: message}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the code of the first AppError in the chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
