package contribution

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNormalizeSplits(t *testing.T) {
	subject, spouse, child := uuid.New(), uuid.New(), uuid.New()
	household := []uuid.UUID{subject, spouse, child}

	t.Run("exact sum keeps splits in order", func(t *testing.T) {
		got, err := NormalizeSplits(d("12000"), subject, household, []Split{
			{MemberID: subject, Amount: d("5000")},
			{MemberID: spouse, Amount: d("7000")},
		})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, spouse, got[1].MemberID)
		assert.True(t, SumSplits(got).Equal(d("12000")))
	})

	t.Run("zero rows are dropped", func(t *testing.T) {
		got, err := NormalizeSplits(d("12000"), subject, household, []Split{
			{MemberID: subject, Amount: d("12000")},
			{MemberID: child, Amount: d("0")},
		})
		require.NoError(t, err)
		assert.Equal(t, []Split{{MemberID: subject, Amount: d("12000")}}, got)
	})

	t.Run("empty distribution goes to the subject", func(t *testing.T) {
		got, err := NormalizeSplits(d("12000"), subject, household, nil)
		require.NoError(t, err)
		assert.Equal(t, []Split{{MemberID: subject, Amount: d("12000")}}, got)

		got, err = NormalizeSplits(d("12000"), subject, household, []Split{{MemberID: spouse, Amount: d("0")}})
		require.NoError(t, err)
		assert.Equal(t, []Split{{MemberID: subject, Amount: d("12000")}}, got)
	})

	t.Run("sum mismatch names computed and expected", func(t *testing.T) {
		_, err := NormalizeSplits(d("12000"), subject, household, []Split{
			{MemberID: subject, Amount: d("5000")},
			{MemberID: spouse, Amount: d("6000")},
		})
		require.Error(t, err)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.KindValidation, de.Kind)
		assert.Equal(t, "11000.00", de.Details["computed"])
		assert.Equal(t, "12000.00", de.Details["expected"])
	})

	t.Run("decimal equality is exact", func(t *testing.T) {
		_, err := NormalizeSplits(d("0.30"), subject, household, []Split{
			{MemberID: subject, Amount: d("0.10")},
			{MemberID: spouse, Amount: d("0.20")},
		})
		assert.NoError(t, err)

		_, err = NormalizeSplits(d("100.00"), subject, household, []Split{
			{MemberID: subject, Amount: d("99.99")},
		})
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("member outside the household", func(t *testing.T) {
		stranger := uuid.New()
		_, err := NormalizeSplits(d("12000"), subject, household, []Split{{MemberID: stranger, Amount: d("12000")}})
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "splits[0].member_id", de.Field)
		assert.Equal(t, stranger.String(), de.Details["member_id"])
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := NormalizeSplits(d("12000"), subject, household, []Split{
			{MemberID: subject, Amount: d("13000")},
			{MemberID: spouse, Amount: d("-1000")},
		})
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("subject without household", func(t *testing.T) {
		got, err := NormalizeSplits(d("500"), subject, nil, []Split{{MemberID: subject, Amount: d("500")}})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func TestDistributionSummary(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	summary := DistributionSummary(
		[]Split{{MemberID: a, Amount: d("5000")}, {MemberID: b, Amount: d("7000.5")}},
		map[uuid.UUID]string{a: "Ana Pérez"},
	)
	assert.Equal(t, "Ana Pérez: 5000.00\n"+b.String()+": 7000.50", summary)
}
