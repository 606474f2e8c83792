package contribution

import (
	"context"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/scope"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReportFilter narrows report listings. Scope is applied separately and
// always intersects these filters.
type ReportFilter struct {
	shared.Filter
	Status     *ReportStatus
	ReporterID *uuid.UUID
	SubjectID  *uuid.UUID
}

// ReportRepository persists contribution reports
type ReportRepository interface {
	Create(ctx context.Context, r *Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*Report, error)

	// FindVisible lists reports whose subject falls inside p
	FindVisible(ctx context.Context, p scope.Predicate, filter ReportFilter) ([]*Report, int64, error)

	// SaveDecision writes the decided status, reviewer and note only if the
	// stored row is still pending. It returns false when another reviewer
	// decided the report first.
	SaveDecision(ctx context.Context, r *Report) (bool, error)
}

// MemberTotal is the confirmed contribution total of one member
type MemberTotal struct {
	MemberID uuid.UUID
	Total    decimal.Decimal
}

// LedgerRepository is the append-only store of confirmed contributions
type LedgerRepository interface {
	Append(ctx context.Context, entries ...*Contribution) error

	FindByMember(ctx context.Context, memberID uuid.UUID) ([]*Contribution, error)
	CountBySourceReport(ctx context.Context, reportID uuid.UUID) (int64, error)
	SumByMember(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error)

	// ActiveMembers returns members inside p whose confirmed total reaches
	// threshold, highest total first.
	ActiveMembers(ctx context.Context, p scope.Predicate, threshold decimal.Decimal) ([]MemberTotal, error)
}
