package identity

import (
	"regexp"
	"strings"

	"github.com/sgi/backend/internal/domain/shared"
)

var rutPattern = regexp.MustCompile(`^\d{7,8}-[\dK]$`)

// NormalizeRUT strips dots and spaces, inserts the check-digit hyphen when
// missing and upper-cases the K verifier.
func NormalizeRUT(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return v
	}
	v = strings.NewReplacer(".", "", " ", "").Replace(v)
	if !strings.Contains(v, "-") && (len(v) == 8 || len(v) == 9) {
		v = v[:len(v)-1] + "-" + v[len(v)-1:]
	}
	return strings.ToUpper(v)
}

// ParseRUT normalizes and validates the format of a Chilean RUT.
// The check digit itself is not verified.
func ParseRUT(value string) (string, error) {
	v := NormalizeRUT(value)
	if !rutPattern.MatchString(v) {
		return "", shared.NewValidationError("rut", "RUT must look like 12345678-K")
	}
	return v, nil
}
