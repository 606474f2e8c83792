package contribution

import (
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeReport = "ContributionReport"

	EventTypeReportSubmitted = "ContributionReportSubmitted"
	EventTypeReportApproved  = "ContributionReportApproved"
	EventTypeReportRejected  = "ContributionReportRejected"
)

// ReportSubmittedEvent is raised when a report enters review
type ReportSubmittedEvent struct {
	shared.BaseDomainEvent
	ReportID   uuid.UUID       `json:"report_id"`
	ReporterID uuid.UUID       `json:"reporter_id"`
	SubjectID  uuid.UUID       `json:"subject_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// NewReportSubmittedEvent creates a ReportSubmittedEvent
func NewReportSubmittedEvent(r *Report, at time.Time) *ReportSubmittedEvent {
	return &ReportSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReportSubmitted, AggregateTypeReport, r.ID, at),
		ReportID:        r.ID,
		ReporterID:      r.ReporterID,
		SubjectID:       r.SubjectID,
		Amount:          r.Amount,
	}
}

// ReportApprovedEvent is raised when a report is approved. It is published
// only after the ledger entries have been committed.
type ReportApprovedEvent struct {
	shared.BaseDomainEvent
	ReportID    uuid.UUID       `json:"report_id"`
	ReporterID  uuid.UUID       `json:"reporter_id"`
	SubjectID   uuid.UUID       `json:"subject_id"`
	ReviewerID  uuid.UUID       `json:"reviewer_id"`
	Amount      decimal.Decimal `json:"amount"`
	DepositDate time.Time       `json:"deposit_date"`
}

// NewReportApprovedEvent creates a ReportApprovedEvent
func NewReportApprovedEvent(r *Report, at time.Time) *ReportApprovedEvent {
	return &ReportApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReportApproved, AggregateTypeReport, r.ID, at),
		ReportID:        r.ID,
		ReporterID:      r.ReporterID,
		SubjectID:       r.SubjectID,
		ReviewerID:      *r.ReviewedByID,
		Amount:          r.Amount,
		DepositDate:     r.DepositDate,
	}
}

// ReportRejectedEvent is raised when a report is rejected
type ReportRejectedEvent struct {
	shared.BaseDomainEvent
	ReportID   uuid.UUID       `json:"report_id"`
	ReporterID uuid.UUID       `json:"reporter_id"`
	SubjectID  uuid.UUID       `json:"subject_id"`
	ReviewerID uuid.UUID       `json:"reviewer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
}

// NewReportRejectedEvent creates a ReportRejectedEvent
func NewReportRejectedEvent(r *Report, reason string, at time.Time) *ReportRejectedEvent {
	return &ReportRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReportRejected, AggregateTypeReport, r.ID, at),
		ReportID:        r.ID,
		ReporterID:      r.ReporterID,
		SubjectID:       r.SubjectID,
		ReviewerID:      *r.ReviewedByID,
		Amount:          r.Amount,
		Reason:          reason,
	}
}
