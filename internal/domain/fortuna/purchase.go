package fortuna

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Status represents the review state of a purchase
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Purchase is a member's subscription to the Fortuna publication. Each
// member has at most one; submitting again overwrites it and restarts
// review, even when the current one is approved.
type Purchase struct {
	shared.BaseAggregateRoot
	MemberID     uuid.UUID
	Plan         Plan
	Amount       decimal.Decimal
	DepositDate  time.Time
	Receipt      shared.ReceiptRef
	Window       Window
	Note         string
	Status       Status
	ReviewedByID *uuid.UUID
	ReviewedAt   *time.Time
}

// SubmitParams describes a purchase submission
type SubmitParams struct {
	MemberID    uuid.UUID
	Plan        Plan
	Amount      decimal.Decimal
	DepositDate time.Time
	Receipt     shared.ReceiptRef
	Note        string
}

func (p SubmitParams) validate() (Window, error) {
	if p.MemberID == uuid.Nil {
		return Window{}, shared.NewValidationError("member_id", "Member is required")
	}
	if err := valueobject.ValidateAmount("amount", p.Amount); err != nil {
		return Window{}, err
	}
	if p.Receipt.IsZero() {
		return Window{}, shared.NewValidationError("receipt", "A deposit receipt is required")
	}
	return ComputeWindow(p.Plan, p.DepositDate)
}

// NewPurchase creates a pending purchase
func NewPurchase(p SubmitParams, now time.Time) (*Purchase, error) {
	w, err := p.validate()
	if err != nil {
		return nil, err
	}
	purchase := &Purchase{BaseAggregateRoot: shared.NewBaseAggregateRoot(now)}
	purchase.apply(p, w)
	purchase.AddDomainEvent(NewPurchaseSubmittedEvent(purchase, false, now))
	return purchase, nil
}

// Resubmit overwrites plan, window, receipt and amount and puts the purchase
// back into review. Allowed from any status, which is how renewals work.
func (pu *Purchase) Resubmit(p SubmitParams, now time.Time) error {
	if p.MemberID != pu.MemberID {
		return shared.NewPermissionError("A purchase can only be renewed by its member")
	}
	w, err := p.validate()
	if err != nil {
		return err
	}
	renewal := pu.Status == StatusApproved
	pu.apply(p, w)
	pu.ReviewedByID = nil
	pu.ReviewedAt = nil
	pu.Touch(now)
	pu.IncrementVersion()
	pu.AddDomainEvent(NewPurchaseSubmittedEvent(pu, renewal, now))
	return nil
}

func (pu *Purchase) apply(p SubmitParams, w Window) {
	pu.MemberID = p.MemberID
	pu.Plan = p.Plan
	pu.Amount = p.Amount
	pu.DepositDate = shared.DateOf(p.DepositDate)
	pu.Receipt = p.Receipt
	pu.Window = w
	pu.Note = strings.TrimSpace(p.Note)
	pu.Status = StatusPending
}

// IsPending reports whether the purchase awaits a decision
func (pu *Purchase) IsPending() bool {
	return pu.Status == StatusPending
}

// Approve activates the access window
func (pu *Purchase) Approve(reviewerID uuid.UUID, now time.Time) error {
	if err := pu.checkDecidable(reviewerID); err != nil {
		return err
	}
	pu.Status = StatusApproved
	pu.markReviewed(reviewerID, now)
	pu.AddDomainEvent(NewPurchaseDecidedEvent(pu, "", now))
	return nil
}

// Reject declines the purchase, appending reason to the note
func (pu *Purchase) Reject(reviewerID uuid.UUID, reason string, now time.Time) error {
	if err := pu.checkDecidable(reviewerID); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason != "" {
		pu.Note += "\n[REJECTED]: " + reason
	}
	pu.Status = StatusRejected
	pu.markReviewed(reviewerID, now)
	pu.AddDomainEvent(NewPurchaseDecidedEvent(pu, reason, now))
	return nil
}

func (pu *Purchase) checkDecidable(reviewerID uuid.UUID) error {
	if reviewerID == uuid.Nil {
		return shared.NewValidationError("reviewer_id", "Reviewer is required")
	}
	if !pu.IsPending() {
		return shared.NewConflictError("PURCHASE_ALREADY_DECIDED",
			fmt.Sprintf("Purchase has already been %s", pu.Status))
	}
	return nil
}

func (pu *Purchase) markReviewed(reviewerID uuid.UUID, now time.Time) {
	pu.ReviewedByID = &reviewerID
	pu.ReviewedAt = &now
	pu.Touch(now)
	pu.IncrementVersion()
}

// HasAccess reports whether the purchase grants access on the given date
func (pu *Purchase) HasAccess(on time.Time) bool {
	return pu.Status == StatusApproved && pu.Window.Contains(on)
}
