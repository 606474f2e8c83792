package contribution

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Split attributes part of a deposit to one household member
type Split struct {
	MemberID uuid.UUID       `json:"member_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// NormalizeSplits validates a requested distribution against the subject's
// household and returns the splits to store.
//
// Every split must name a member of household; negative amounts are
// rejected and zero rows are dropped. If nothing remains, the full amount is
// attributed to the subject. Otherwise the splits must add up to amount
// exactly.
func NormalizeSplits(amount decimal.Decimal, subjectID uuid.UUID, household []uuid.UUID, requested []Split) ([]Split, error) {
	allowed := make(map[uuid.UUID]struct{}, len(household)+1)
	allowed[subjectID] = struct{}{}
	for _, id := range household {
		allowed[id] = struct{}{}
	}

	normalized := make([]Split, 0, len(requested))
	for i, s := range requested {
		field := fmt.Sprintf("splits[%d]", i)
		if _, ok := allowed[s.MemberID]; !ok {
			return nil, shared.NewValidationError(field+".member_id", "Member does not belong to the household").
				WithDetail("member_id", s.MemberID.String())
		}
		if s.Amount.IsNegative() {
			return nil, shared.NewValidationError(field+".amount", "Split amount cannot be negative")
		}
		if !valueobject.HasPrecision(s.Amount, valueobject.AmountPlaces) {
			return nil, shared.NewValidationError(field+".amount", "Split amount cannot have more than two decimals")
		}
		if s.Amount.IsZero() {
			continue
		}
		normalized = append(normalized, s)
	}

	if len(normalized) == 0 {
		return []Split{{MemberID: subjectID, Amount: amount}}, nil
	}

	sum := SumSplits(normalized)
	if !sum.Equal(amount) {
		return nil, shared.NewValidationError("splits",
			fmt.Sprintf("Split total %s does not match deposit amount %s",
				valueobject.FormatAmount(sum), valueobject.FormatAmount(amount))).
			WithDetail("computed", valueobject.FormatAmount(sum)).
			WithDetail("expected", valueobject.FormatAmount(amount))
	}
	return normalized, nil
}

// SumSplits adds the split amounts
func SumSplits(splits []Split) decimal.Decimal {
	total := decimal.Zero
	for _, s := range splits {
		total = total.Add(s.Amount)
	}
	return total
}

// DistributionSummary renders one "Full Name: amount" line per split, in
// split order. Members missing from names are shown by id.
func DistributionSummary(splits []Split, names map[uuid.UUID]string) string {
	lines := make([]string, 0, len(splits))
	for _, s := range splits {
		name, ok := names[s.MemberID]
		if !ok || name == "" {
			name = s.MemberID.String()
		}
		lines = append(lines, fmt.Sprintf("%s: %s", name, valueobject.FormatAmount(s.Amount)))
	}
	return strings.Join(lines, "\n")
}
