package contribution

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Type distinguishes ordinary contributions from special campaigns
type Type string

const (
	TypeRegular Type = "regular"
	TypeSpecial Type = "especial"
)

// IsValid reports whether t is a known contribution type
func (t Type) IsValid() bool {
	return t == TypeRegular || t == TypeSpecial
}

// Contribution is a confirmed ledger entry. Entries are append-only: once
// created they are never updated or deleted.
type Contribution struct {
	shared.BaseEntity
	MemberID    uuid.UUID
	Date        time.Time
	Amount      decimal.Decimal
	Type        Type
	Confirmed   bool
	CreatedByID *uuid.UUID
	Note        string

	// Provenance for entries materialized from a report
	SourceReportID *uuid.UUID
	ReportedByID   *uuid.UUID
}

// NewManualContribution records a contribution entered directly by an
// administrator, outside the report workflow.
func NewManualContribution(memberID uuid.UUID, date time.Time, amount decimal.Decimal, typ Type, createdBy uuid.UUID, note string, now time.Time) (*Contribution, error) {
	if memberID == uuid.Nil {
		return nil, shared.NewValidationError("member_id", "Member is required")
	}
	if date.IsZero() {
		return nil, shared.NewValidationError("date", "Date is required")
	}
	if err := valueobject.ValidateAmount("amount", amount); err != nil {
		return nil, err
	}
	if !typ.IsValid() {
		return nil, shared.NewValidationError("type", fmt.Sprintf("Unknown contribution type %q", typ))
	}
	return &Contribution{
		BaseEntity:  shared.NewBaseEntity(now),
		MemberID:    memberID,
		Date:        shared.DateOf(date),
		Amount:      amount,
		Type:        typ,
		Confirmed:   true,
		CreatedByID: &createdBy,
		Note:        note,
	}, nil
}
