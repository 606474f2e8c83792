package models

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/contribution"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ContributionReportModel is the persistence model for contribution.Report
type ContributionReportModel struct {
	AggregateModel
	ReporterID          uuid.UUID                 `gorm:"type:uuid;not null;index"`
	SubjectID           uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Amount              decimal.Decimal           `gorm:"type:decimal(14,2);not null"`
	DepositDate         time.Time                 `gorm:"type:date;not null"`
	ReceiptRef          string                    `gorm:"type:varchar(500);not null"`
	DistributionSummary string                    `gorm:"type:text"`
	Note                string                    `gorm:"type:text"`
	Status              contribution.ReportStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewedByID        *uuid.UUID                `gorm:"type:uuid"`
	ReviewedAt          *time.Time
	Splits              []ContributionReportSplitModel `gorm:"foreignKey:ReportID;references:ID"`
}

// TableName returns the table name for GORM
func (ContributionReportModel) TableName() string {
	return "contribution_reports"
}

// ToDomain converts the persistence model to a domain Report
func (m *ContributionReportModel) ToDomain() *contribution.Report {
	r := &contribution.Report{
		BaseAggregateRoot:   m.ToDomainAggregate(),
		ReporterID:          m.ReporterID,
		SubjectID:           m.SubjectID,
		Amount:              m.Amount,
		DepositDate:         shared.DateOf(m.DepositDate),
		Receipt:             shared.ReceiptRef(m.ReceiptRef),
		DistributionSummary: m.DistributionSummary,
		Note:                m.Note,
		Status:              m.Status,
		ReviewedByID:        m.ReviewedByID,
		ReviewedAt:          m.ReviewedAt,
	}
	if len(m.Splits) > 0 {
		rows := slices.Clone(m.Splits)
		slices.SortFunc(rows, func(a, b ContributionReportSplitModel) int {
			return cmp.Compare(a.Position, b.Position)
		})
		r.Splits = make([]contribution.Split, 0, len(rows))
		for _, s := range rows {
			r.Splits = append(r.Splits, contribution.Split{MemberID: s.MemberID, Amount: s.Amount})
		}
	}
	return r
}

// ContributionReportModelFromDomain creates a persistence model from a domain Report
func ContributionReportModelFromDomain(r *contribution.Report) *ContributionReportModel {
	m := &ContributionReportModel{
		ReporterID:          r.ReporterID,
		SubjectID:           r.SubjectID,
		Amount:              r.Amount,
		DepositDate:         r.DepositDate,
		ReceiptRef:          string(r.Receipt),
		DistributionSummary: r.DistributionSummary,
		Note:                r.Note,
		Status:              r.Status,
		ReviewedByID:        r.ReviewedByID,
		ReviewedAt:          r.ReviewedAt,
		Splits:              make([]ContributionReportSplitModel, len(r.Splits)),
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	for i, s := range r.Splits {
		m.Splits[i] = ContributionReportSplitModel{
			ReportID: r.ID,
			Position: i,
			MemberID: s.MemberID,
			Amount:   s.Amount,
		}
	}
	return m
}

// ContributionReportSplitModel stores one row of a report's distribution
type ContributionReportSplitModel struct {
	ReportID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Position int             `gorm:"primaryKey;autoIncrement:false"`
	MemberID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for GORM
func (ContributionReportSplitModel) TableName() string {
	return "contribution_report_splits"
}

// ContributionModel is the persistence model for a confirmed ledger entry
type ContributionModel struct {
	BaseModel
	MemberID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	Date           time.Time         `gorm:"type:date;not null;index"`
	Amount         decimal.Decimal   `gorm:"type:decimal(14,2);not null"`
	Type           contribution.Type `gorm:"type:varchar(20);not null;default:'regular'"`
	Confirmed      bool              `gorm:"not null;default:true"`
	CreatedByID    *uuid.UUID        `gorm:"type:uuid"`
	Note           string            `gorm:"type:text"`
	SourceReportID *uuid.UUID        `gorm:"type:uuid;index"`
	ReportedByID   *uuid.UUID        `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ContributionModel) TableName() string {
	return "contributions"
}

// ToDomain converts the persistence model to a domain Contribution
func (m *ContributionModel) ToDomain() *contribution.Contribution {
	return &contribution.Contribution{
		BaseEntity:     m.BaseModel.ToDomain(),
		MemberID:       m.MemberID,
		Date:           shared.DateOf(m.Date),
		Amount:         m.Amount,
		Type:           m.Type,
		Confirmed:      m.Confirmed,
		CreatedByID:    m.CreatedByID,
		Note:           m.Note,
		SourceReportID: m.SourceReportID,
		ReportedByID:   m.ReportedByID,
	}
}

// ContributionModelFromDomain creates a persistence model from a domain Contribution
func ContributionModelFromDomain(c *contribution.Contribution) *ContributionModel {
	m := &ContributionModel{
		MemberID:       c.MemberID,
		Date:           c.Date,
		Amount:         c.Amount,
		Type:           c.Type,
		Confirmed:      c.Confirmed,
		CreatedByID:    c.CreatedByID,
		Note:           c.Note,
		SourceReportID: c.SourceReportID,
		ReportedByID:   c.ReportedByID,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
