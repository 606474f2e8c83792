package contribution

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ReportStatus represents the review state of a contribution report
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusApproved ReportStatus = "approved"
	ReportStatusRejected ReportStatus = "rejected"
)

// IsValid checks if the status is a known ReportStatus
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusPending, ReportStatusApproved, ReportStatusRejected:
		return true
	}
	return false
}

// IsTerminal returns true once the report has been decided
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusApproved || s == ReportStatusRejected
}

// Report is a member's claim of a deposit, awaiting review before it becomes
// ledger entries. Once decided it is immutable except for the rejection
// reason appended to Note.
type Report struct {
	shared.BaseAggregateRoot
	ReporterID          uuid.UUID
	SubjectID           uuid.UUID
	Amount              decimal.Decimal
	DepositDate         time.Time
	Receipt             shared.ReceiptRef
	Splits              []Split
	DistributionSummary string
	Note                string
	Status              ReportStatus
	ReviewedByID        *uuid.UUID
	ReviewedAt          *time.Time
}

// NewReportParams carries an already validated submission
type NewReportParams struct {
	ReporterID          uuid.UUID
	SubjectID           uuid.UUID
	Amount              decimal.Decimal
	DepositDate         time.Time
	Receipt             shared.ReceiptRef
	Splits              []Split
	DistributionSummary string
	Note                string
}

// NewReport creates a pending report. Splits must already be normalized
// with NormalizeSplits.
func NewReport(p NewReportParams, now time.Time) (*Report, error) {
	if p.ReporterID == uuid.Nil || p.SubjectID == uuid.Nil {
		return nil, shared.NewValidationError("subject_id", "Reporter and subject are required")
	}
	if err := valueobject.ValidateAmount("amount", p.Amount); err != nil {
		return nil, err
	}
	if p.DepositDate.IsZero() {
		return nil, shared.NewValidationError("deposit_date", "Deposit date is required")
	}
	if p.Receipt.IsZero() {
		return nil, shared.NewValidationError("receipt", "A deposit receipt is required")
	}
	if len(p.Splits) == 0 || !SumSplits(p.Splits).Equal(p.Amount) {
		return nil, shared.NewInvariantViolation("SPLITS_NOT_NORMALIZED", "Report splits must add up to the deposit amount")
	}

	r := &Report{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(now),
		ReporterID:          p.ReporterID,
		SubjectID:           p.SubjectID,
		Amount:              p.Amount,
		DepositDate:         shared.DateOf(p.DepositDate),
		Receipt:             p.Receipt,
		Splits:              p.Splits,
		DistributionSummary: p.DistributionSummary,
		Note:                strings.TrimSpace(p.Note),
		Status:              ReportStatusPending,
	}
	r.AddDomainEvent(NewReportSubmittedEvent(r, now))
	return r, nil
}

// IsPending reports whether the report still awaits a decision
func (r *Report) IsPending() bool {
	return r.Status == ReportStatusPending
}

// Approve marks the report approved by reviewerID
func (r *Report) Approve(reviewerID uuid.UUID, now time.Time) error {
	if err := r.checkDecidable(reviewerID); err != nil {
		return err
	}
	r.Status = ReportStatusApproved
	r.markReviewed(reviewerID, now)
	r.AddDomainEvent(NewReportApprovedEvent(r, now))
	return nil
}

// Reject marks the report rejected and appends reason to the note
func (r *Report) Reject(reviewerID uuid.UUID, reason string, now time.Time) error {
	if err := r.checkDecidable(reviewerID); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason != "" {
		r.Note += "\n[REJECTED]: " + reason
	}
	r.Status = ReportStatusRejected
	r.markReviewed(reviewerID, now)
	r.AddDomainEvent(NewReportRejectedEvent(r, reason, now))
	return nil
}

func (r *Report) checkDecidable(reviewerID uuid.UUID) error {
	if reviewerID == uuid.Nil {
		return shared.NewValidationError("reviewer_id", "Reviewer is required")
	}
	if !r.IsPending() {
		return shared.NewConflictError("REPORT_ALREADY_DECIDED",
			fmt.Sprintf("Report has already been %s", r.Status))
	}
	return nil
}

func (r *Report) markReviewed(reviewerID uuid.UUID, now time.Time) {
	r.ReviewedByID = &reviewerID
	r.ReviewedAt = &now
	r.Touch(now)
	r.IncrementVersion()
}

// EffectiveSplits returns the stored splits, or a single split of the full
// amount to the subject for reports stored without a distribution.
func (r *Report) EffectiveSplits() []Split {
	if len(r.Splits) == 0 {
		return []Split{{MemberID: r.SubjectID, Amount: r.Amount}}
	}
	return r.Splits
}

// LedgerEntries builds the confirmed contributions for an approved report:
// one per non-zero split, dated on the deposit date and created by the
// reviewer. Splits whose member fails exists are returned as skipped.
func (r *Report) LedgerEntries(reporterName string, exists func(uuid.UUID) bool, now time.Time) (entries []*Contribution, skipped []Split, err error) {
	if r.Status != ReportStatusApproved || r.ReviewedByID == nil {
		return nil, nil, shared.NewDomainError("INVALID_STATE", "Ledger entries can only be built for an approved report")
	}

	note := fmt.Sprintf("Contribution distributed from report #%s (reported by %s)", r.ID, reporterName)
	reportID, reporterID, reviewerID := r.ID, r.ReporterID, *r.ReviewedByID

	for _, s := range r.EffectiveSplits() {
		if !s.Amount.IsPositive() {
			continue
		}
		if !exists(s.MemberID) {
			skipped = append(skipped, s)
			continue
		}
		entries = append(entries, &Contribution{
			BaseEntity:     shared.NewBaseEntity(now),
			MemberID:       s.MemberID,
			Date:           r.DepositDate,
			Amount:         s.Amount,
			Type:           TypeRegular,
			Confirmed:      true,
			CreatedByID:    &reviewerID,
			Note:           note,
			SourceReportID: &reportID,
			ReportedByID:   &reporterID,
		})
	}
	return entries, skipped, nil
}
