package persistence

import (
	"errors"
	"strings"

	"github.com/sgi/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// isUniqueViolation recognizes duplicate key errors from either driver,
// whether or not gorm's TranslateError is enabled.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// translateWriteError maps unique violations to a domain conflict with code
func translateWriteError(err error, code string) error {
	if isUniqueViolation(err) {
		return shared.NewConflictError(code, "A record with the same unique key already exists")
	}
	return err
}
