package dto

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sgi/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestErrorInfoFor(t *testing.T) {
	mismatch := shared.NewValidationError("splits", "Split amounts must add up to the deposit").
		WithDetail("computed", "11000.00").
		WithDetail("expected", "12000.00")

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", mismatch, http.StatusBadRequest, ErrCodeValidation},
		{"permission", shared.NewPermissionError("Member outside your scope"), http.StatusForbidden, ErrCodeForbidden},
		{"not found", shared.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"wrapped not found", fmt.Errorf("load report: %w", shared.ErrNotFound), http.StatusNotFound, ErrCodeNotFound},
		{"conflict", shared.NewConflictError("USERNAME_TAKEN", "Username is already in use"), http.StatusConflict, ErrCodeConflict},
		{"invariant", shared.NewInvariantViolation("PRIMARY_REQUIRED", "Household needs a primary"), http.StatusUnprocessableEntity, ErrCodeInvariant},
		{"invalid state", shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active"), http.StatusUnprocessableEntity, ErrCodeInvalidState},
		{"plain", errors.New("connection reset"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, info := ErrorInfoFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, info.Code)
		})
	}

	_, info := ErrorInfoFor(mismatch)
	assert.Equal(t, "splits", info.Field)
	assert.Equal(t, "11000.00", info.Details["computed"])
	assert.Equal(t, "12000.00", info.Details["expected"])

	_, info = ErrorInfoFor(errors.New("pq: password authentication failed"))
	assert.NotContains(t, info.Message, "pq:")
}

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, GetHTTPStatus(ErrCodeTokenExpired))
	assert.Equal(t, http.StatusRequestEntityTooLarge, GetHTTPStatus(ErrCodeTooLarge))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_ELSE"))
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	resp = NewSuccessResponseWithMeta(nil, 0, 1, 20)
	assert.Equal(t, 0, resp.Meta.TotalPages)
}
