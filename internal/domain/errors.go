package domain

import (
	"errors"
	"net/http"
)

// Error codes carried by AppError.
const (
	CodeNotFound      = 1
	CodeAlreadyExists = 2
	CodeValidation    = 3
	CodeInternal      = 4
	CodeUnauthorized  = 5
)

var codeStatus = map[int]int{
	CodeNotFound:      http.StatusNotFound,
	CodeAlreadyExists: http.StatusConflict,
	CodeValidation:    http.StatusBadRequest,
	CodeInternal:      http.StatusInternalServerError,
	CodeUnauthorized:  http.StatusUnauthorized,
}

// AppError is a business error. Handlers turn it into an HTTP status via
// HTTPStatusCode and expose Message to the client; Err stays server-side.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Sentinel errors. Match them with the IsX helpers, which compare codes,
// rather than errors.Is, which compares pointers.
var (
	ErrNotFound      = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrUnauthorized  = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
)

// NewAppError creates an AppError wrapping err, which may be nil.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func IsNotFound(err error) bool      { return HasCode(err, CodeNotFound) }
func IsAlreadyExists(err error) bool { return HasCode(err, CodeAlreadyExists) }
func IsValidation(err error) bool    { return HasCode(err, CodeValidation) }
func IsInternal(err error) bool      { return HasCode(err, CodeInternal) }
func IsUnauthorized(err error) bool  { return HasCode(err, CodeUnauthorized) }

// HasCode reports whether err is or wraps an *AppError with the given code.
func HasCode(err error, code int) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// HTTPStatusCode maps err to an HTTP status. Anything that is not a known
// AppError is a 500.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if status, ok := codeStatus[appErr.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}
