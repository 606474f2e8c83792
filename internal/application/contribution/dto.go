package contribution

import (
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/contribution"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SubmitReportRequest carries a deposit report. SubjectID defaults to the
// reporter; Splits may be empty to attribute everything to the subject.
type SubmitReportRequest struct {
	SubjectID   *uuid.UUID
	Amount      decimal.Decimal
	DepositDate time.Time
	Receipt     shared.ReceiptRef
	Note        string
	Splits      []contribution.Split
}

// ReportResponse represents a contribution report in API responses
type ReportResponse struct {
	ID                  uuid.UUID            `json:"id"`
	ReporterID          uuid.UUID            `json:"reporter_id"`
	SubjectID           uuid.UUID            `json:"subject_id"`
	Amount              decimal.Decimal      `json:"amount"`
	DepositDate         string               `json:"deposit_date"`
	Receipt             shared.ReceiptRef    `json:"receipt"`
	Splits              []contribution.Split `json:"splits"`
	DistributionSummary string               `json:"distribution_summary"`
	Note                string               `json:"note,omitempty"`
	Status              string               `json:"status"`
	ReviewedBy          *uuid.UUID           `json:"reviewed_by,omitempty"`
	ReviewedAt          *time.Time           `json:"reviewed_at,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
}

// ContributionResponse represents a ledger entry. Amount is nil when the
// viewer may not see amounts.
type ContributionResponse struct {
	ID             uuid.UUID        `json:"id"`
	MemberID       uuid.UUID        `json:"member_id"`
	Date           string           `json:"date"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	Type           string           `json:"type"`
	Confirmed      bool             `json:"confirmed"`
	Note           string           `json:"note,omitempty"`
	SourceReportID *uuid.UUID       `json:"source_report_id,omitempty"`
	ReportedByID   *uuid.UUID       `json:"reported_by_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// SkippedSplit is a split that produced no ledger entry during approval
type SkippedSplit struct {
	MemberID uuid.UUID       `json:"member_id"`
	Amount   decimal.Decimal `json:"amount"`
	Reason   string          `json:"reason"`
}

// DecisionResult is the outcome of approving or rejecting a report.
// AlreadyDecided is set, and nothing changed, when the report was no longer
// pending.
type DecisionResult struct {
	Report         *ReportResponse        `json:"report"`
	AlreadyDecided bool                   `json:"already_decided"`
	Contribution   *ContributionResponse  `json:"contribution,omitempty"`
	Contributions  []ContributionResponse `json:"contributions,omitempty"`
	Skipped        []SkippedSplit         `json:"skipped,omitempty"`
}

// ReportListFilter narrows report listings
type ReportListFilter struct {
	shared.Filter
	Status string
}

// ActiveMemberResponse is one member at or above the active threshold.
// Total is only present for viewers allowed to see amounts.
type ActiveMemberResponse struct {
	MemberID uuid.UUID        `json:"member_id"`
	FullName string           `json:"full_name"`
	GroupID  *uuid.UUID       `json:"group_id,omitempty"`
	Total    *decimal.Decimal `json:"total,omitempty"`
}

// SummaryResponse is a member's confirmed contribution history
type SummaryResponse struct {
	MemberID      uuid.UUID              `json:"member_id"`
	Active        bool                   `json:"active"`
	AmountsHidden bool                   `json:"amounts_hidden"`
	Total         *decimal.Decimal       `json:"total,omitempty"`
	Entries       []ContributionResponse `json:"entries"`
}

// SpecialContributionRequest records a special contribution directly
type SpecialContributionRequest struct {
	MemberID uuid.UUID
	Date     time.Time
	Amount   decimal.Decimal
	Note     string
}

func toReportResponse(r *contribution.Report) *ReportResponse {
	return &ReportResponse{
		ID:                  r.ID,
		ReporterID:          r.ReporterID,
		SubjectID:           r.SubjectID,
		Amount:              r.Amount,
		DepositDate:         r.DepositDate.Format(time.DateOnly),
		Receipt:             r.Receipt,
		Splits:              r.EffectiveSplits(),
		DistributionSummary: r.DistributionSummary,
		Note:                r.Note,
		Status:              string(r.Status),
		ReviewedBy:          r.ReviewedByID,
		ReviewedAt:          r.ReviewedAt,
		CreatedAt:           r.CreatedAt,
	}
}

func toContributionResponse(c *contribution.Contribution, showAmount bool) ContributionResponse {
	resp := ContributionResponse{
		ID:             c.ID,
		MemberID:       c.MemberID,
		Date:           c.Date.Format(time.DateOnly),
		Type:           string(c.Type),
		Confirmed:      c.Confirmed,
		Note:           c.Note,
		SourceReportID: c.SourceReportID,
		ReportedByID:   c.ReportedByID,
		CreatedAt:      c.CreatedAt,
	}
	if showAmount {
		amount := c.Amount
		resp.Amount = &amount
	}
	return resp
}
