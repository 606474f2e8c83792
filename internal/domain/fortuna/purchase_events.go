package fortuna

import (
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/shared"
)

const (
	AggregateTypePurchase = "FortunaPurchase"

	EventTypePurchaseSubmitted = "FortunaPurchaseSubmitted"
	EventTypePurchaseApproved  = "FortunaPurchaseApproved"
	EventTypePurchaseRejected  = "FortunaPurchaseRejected"
)

// PurchaseSubmittedEvent is raised on first submission and on every renewal
type PurchaseSubmittedEvent struct {
	shared.BaseDomainEvent
	PurchaseID uuid.UUID `json:"purchase_id"`
	MemberID   uuid.UUID `json:"member_id"`
	Plan       Plan      `json:"plan"`
	Renewal    bool      `json:"renewal"`
}

// NewPurchaseSubmittedEvent creates a PurchaseSubmittedEvent
func NewPurchaseSubmittedEvent(p *Purchase, renewal bool, at time.Time) *PurchaseSubmittedEvent {
	return &PurchaseSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseSubmitted, AggregateTypePurchase, p.ID, at),
		PurchaseID:      p.ID,
		MemberID:        p.MemberID,
		Plan:            p.Plan,
		Renewal:         renewal,
	}
}

// PurchaseDecidedEvent is raised when a purchase is approved or rejected;
// EventType tells which.
type PurchaseDecidedEvent struct {
	shared.BaseDomainEvent
	PurchaseID  uuid.UUID `json:"purchase_id"`
	MemberID    uuid.UUID `json:"member_id"`
	ReviewerID  uuid.UUID `json:"reviewer_id"`
	Plan        Plan      `json:"plan"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Reason      string    `json:"reason,omitempty"`
}

// NewPurchaseDecidedEvent creates a PurchaseDecidedEvent for the current status
func NewPurchaseDecidedEvent(p *Purchase, reason string, at time.Time) *PurchaseDecidedEvent {
	eventType := EventTypePurchaseApproved
	if p.Status == StatusRejected {
		eventType = EventTypePurchaseRejected
	}
	return &PurchaseDecidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypePurchase, p.ID, at),
		PurchaseID:      p.ID,
		MemberID:        p.MemberID,
		ReviewerID:      *p.ReviewedByID,
		Plan:            p.Plan,
		WindowStart:     p.Window.Start,
		WindowEnd:       p.Window.End,
		Reason:          reason,
	}
}
