package valueobject

import (
	"testing"

	"github.com/sgi/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestHasPrecision(t *testing.T) {
	assert.True(t, HasPrecision(decimal.RequireFromString("10.25"), AmountPlaces))
	assert.True(t, HasPrecision(decimal.NewFromInt(10), AmountPlaces))
	assert.False(t, HasPrecision(decimal.RequireFromString("10.255"), AmountPlaces))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12000.00", FormatAmount(decimal.NewFromInt(12000)))
	assert.Equal(t, "0.10", FormatAmount(decimal.RequireFromString("0.1")))
	assert.Equal(t, "3000.50", FormatAmount(decimal.RequireFromString("3000.5")))
}

func TestValidateAmount(t *testing.T) {
	d := decimal.RequireFromString
	assert.NoError(t, ValidateAmount("amount", d("12000.50")))
	assert.NoError(t, ValidateAmount("amount", MaxAmount))

	for _, bad := range []string{"0", "-5", "1.005", "1000000000000", "999999999999.991"} {
		err := ValidateAmount("amount", d(bad))
		assert.True(t, shared.IsValidation(err), bad)
	}
}
