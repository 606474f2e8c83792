package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/fortuna"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FortunaPurchaseModel is the persistence model for fortuna.Purchase.
// A member owns at most one row.
type FortunaPurchaseModel struct {
	AggregateModel
	MemberID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Plan         fortuna.Plan    `gorm:"type:varchar(20);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	DepositDate  time.Time       `gorm:"type:date;not null"`
	ReceiptRef   string          `gorm:"type:varchar(500);not null"`
	StartDate    time.Time       `gorm:"type:date;not null"`
	EndDate      time.Time       `gorm:"type:date;not null"`
	Note         string          `gorm:"type:text"`
	Status       fortuna.Status  `gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewedByID *uuid.UUID      `gorm:"type:uuid"`
	ReviewedAt   *time.Time
}

// TableName returns the table name for GORM
func (FortunaPurchaseModel) TableName() string {
	return "fortuna_purchases"
}

// ToDomain converts the persistence model to a domain Purchase
func (m *FortunaPurchaseModel) ToDomain() *fortuna.Purchase {
	return &fortuna.Purchase{
		BaseAggregateRoot: m.ToDomainAggregate(),
		MemberID:          m.MemberID,
		Plan:              m.Plan,
		Amount:            m.Amount,
		DepositDate:       shared.DateOf(m.DepositDate),
		Receipt:           shared.ReceiptRef(m.ReceiptRef),
		Window:            fortuna.Window{Start: shared.DateOf(m.StartDate), End: shared.DateOf(m.EndDate)},
		Note:              m.Note,
		Status:            m.Status,
		ReviewedByID:      m.ReviewedByID,
		ReviewedAt:        m.ReviewedAt,
	}
}

// FortunaPurchaseModelFromDomain creates a persistence model from a domain Purchase
func FortunaPurchaseModelFromDomain(p *fortuna.Purchase) *FortunaPurchaseModel {
	m := &FortunaPurchaseModel{
		MemberID:     p.MemberID,
		Plan:         p.Plan,
		Amount:       p.Amount,
		DepositDate:  p.DepositDate,
		ReceiptRef:   string(p.Receipt),
		StartDate:    p.Window.Start,
		EndDate:      p.Window.End,
		Note:         p.Note,
		Status:       p.Status,
		ReviewedByID: p.ReviewedByID,
		ReviewedAt:   p.ReviewedAt,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// FortunaIssueModel is the persistence model for fortuna.Issue
type FortunaIssueModel struct {
	BaseModel
	Title       string    `gorm:"type:varchar(200);not null"`
	PublishedOn time.Time `gorm:"type:date;not null;index"`
}

// TableName returns the table name for GORM
func (FortunaIssueModel) TableName() string {
	return "fortuna_issues"
}

// ToDomain converts the persistence model to a domain Issue
func (m *FortunaIssueModel) ToDomain() *fortuna.Issue {
	return &fortuna.Issue{
		BaseEntity:  m.BaseModel.ToDomain(),
		Title:       m.Title,
		PublishedOn: shared.DateOf(m.PublishedOn),
	}
}

// FortunaIssueModelFromDomain creates a persistence model from a domain Issue
func FortunaIssueModelFromDomain(i *fortuna.Issue) *FortunaIssueModel {
	m := &FortunaIssueModel{Title: i.Title, PublishedOn: i.PublishedOn}
	m.FromDomainBaseEntity(i.BaseEntity)
	return m
}
