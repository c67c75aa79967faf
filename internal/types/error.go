package types

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// CustomError carries an HTTP status code alongside a dotted error type string
// so the global Fiber error handler can render the response envelope.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// NotFound signals an absent entity.
func NotFound(errorType, format string, args ...interface{}) *CustomError {
	return &CustomError{
		Code:    fiber.StatusNotFound,
		Message: fmt.Sprintf(format, args...),
		Type:    errorType,
	}
}

// Conflict signals a uniqueness violation or a deletion blocked by live references.
func Conflict(errorType, format string, args ...interface{}) *CustomError {
	return &CustomError{
		Code:    fiber.StatusConflict,
		Message: fmt.Sprintf(format, args...),
		Type:    errorType,
	}
}

// Forbidden signals a permission or ownership failure, including operations
// disallowed for externally-managed accounts.
func Forbidden(errorType, format string, args ...interface{}) *CustomError {
	return &CustomError{
		Code:    fiber.StatusForbidden,
		Message: fmt.Sprintf(format, args...),
		Type:    errorType,
	}
}

// Unauthorized signals bad, missing, or expired credentials.
func Unauthorized(errorType, format string, args ...interface{}) *CustomError {
	return &CustomError{
		Code:    fiber.StatusUnauthorized,
		Message: fmt.Sprintf(format, args...),
		Type:    errorType,
	}
}

// InvalidArgument signals a bad sort field, malformed filter, or an empty
// required field after trimming.
func InvalidArgument(errorType, format string, args ...interface{}) *CustomError {
	return &CustomError{
		Code:    fiber.StatusBadRequest,
		Message: fmt.Sprintf(format, args...),
		Type:    errorType,
	}
}

// IsNotFound reports whether err is a CustomError with a 404 code.
func IsNotFound(err error) bool {
	ce, ok := err.(*CustomError)
	return ok && ce.Code == fiber.StatusNotFound
}

// IsConflict reports whether err is a CustomError with a 409 code.
func IsConflict(err error) bool {
	ce, ok := err.(*CustomError)
	return ok && ce.Code == fiber.StatusConflict
}

// IsForbidden reports whether err is a CustomError with a 403 code.
func IsForbidden(err error) bool {
	ce, ok := err.(*CustomError)
	return ok && ce.Code == fiber.StatusForbidden
}

// IsUnauthorized reports whether err is a CustomError with a 401 code.
func IsUnauthorized(err error) bool {
	ce, ok := err.(*CustomError)
	return ok && ce.Code == fiber.StatusUnauthorized
}

// IsInvalidArgument reports whether err is a CustomError with a 400 code.
func IsInvalidArgument(err error) bool {
	ce, ok := err.(*CustomError)
	return ok && ce.Code == fiber.StatusBadRequest
}
