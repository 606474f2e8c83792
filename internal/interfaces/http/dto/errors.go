package dto

import (
	"errors"
	"net/http"

	"github.com/sgi/backend/internal/domain/shared"
)

// Error codes returned in ErrorInfo.Code
const (
	ErrCodeInternal     = "ERR_INTERNAL"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeConflict     = "ERR_CONFLICT"
	ErrCodeInvariant    = "ERR_INVARIANT"
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeInvariant:    http.StatusUnprocessableEntity,
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,
}

var kindCodes = map[shared.ErrorKind]string{
	shared.KindValidation:   ErrCodeValidation,
	shared.KindPermission:   ErrCodeForbidden,
	shared.KindNotFound:     ErrCodeNotFound,
	shared.KindConflict:     ErrCodeConflict,
	shared.KindInvariant:    ErrCodeInvariant,
	shared.KindInvalidState: ErrCodeInvalidState,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorInfoFor classifies err. Domain errors keep their message, field and
// details, with the domain code stored as the "reason" detail. Anything else
// becomes an opaque internal error.
func ErrorInfoFor(err error) (int, ErrorInfo) {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, ErrorInfo{
			Code:    ErrCodeInternal,
			Message: "An unexpected error occurred",
		}
	}
	code, ok := kindCodes[de.Kind]
	if !ok {
		code = ErrCodeInternal
	}
	details := make(map[string]string, len(de.Details)+1)
	for k, v := range de.Details {
		details[k] = v
	}
	if de.Code != "" {
		details["reason"] = de.Code
	}
	return GetHTTPStatus(code), ErrorInfo{
		Code:    code,
		Message: de.Message,
		Field:   de.Field,
		Details: details,
	}
}
