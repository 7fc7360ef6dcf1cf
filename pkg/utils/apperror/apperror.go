package apperror

import (
	"net/http"

	"github.com/pkg/errors"
)

var (
	ErrNotFound  = errors.New("not_found")
	ErrForbidden = errors.New("forbidden")
)

// AppError carries an HTTP status and an optional structured payload from the
// service layer to the controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func BadRequest(message string, details map[string]interface{}) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Code: "bad_request", Message: message, Details: details}
}

func Validation(errs map[string][]string) *AppError {
	return &AppError{
		StatusCode: http.StatusBadRequest,
		Code:       "validation_failed",
		Message:    "Validation failed",
		Details:    map[string]interface{}{"errors": errs},
	}
}

func NotFound(message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Code: "not_found", Message: message, Err: ErrNotFound}
}

func Forbidden(message string) *AppError {
	return &AppError{StatusCode: http.StatusForbidden, Code: "forbidden", Message: message, Err: ErrForbidden}
}

func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func Conflict(message string, details map[string]interface{}) *AppError {
	return &AppError{StatusCode: http.StatusConflict, Code: "conflict", Message: message, Details: details}
}

func Unauthorized(message string) *AppError {
	return &AppError{StatusCode: http.StatusUnauthorized, Code: "unauthorized", Message: message}
}
