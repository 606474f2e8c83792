// Package fortuna runs the Fortuna subscription workflow: members buy an
// access window by reporting a deposit, a responsible reviews it, and issues
// published inside an approved window become readable.
package fortuna

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/fortuna"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/org"
	"github.com/sgi/backend/internal/domain/scope"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/logger"
	"github.com/sgi/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const workflowPurchase = "fortuna"

// ScopeAuthorizer answers whether an actor may act on another member
type ScopeAuthorizer interface {
	Scope(ctx context.Context, actor *identity.Actor) (scope.Predicate, *org.Hierarchy, error)
	AuthorizeSubject(ctx context.Context, actor *identity.Actor, subjectID uuid.UUID) (*identity.Actor, scope.Predicate, error)
}

// SubmitPurchaseRequest carries a subscription deposit
type SubmitPurchaseRequest struct {
	Plan        string
	Amount      decimal.Decimal
	DepositDate time.Time
	Receipt     shared.ReceiptRef
	Note        string
}

// PurchaseResponse represents a purchase in API responses
type PurchaseResponse struct {
	ID          uuid.UUID         `json:"id"`
	MemberID    uuid.UUID         `json:"member_id"`
	Plan        string            `json:"plan"`
	Amount      decimal.Decimal   `json:"amount"`
	DepositDate string            `json:"deposit_date"`
	Receipt     shared.ReceiptRef `json:"receipt"`
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
	Note        string            `json:"note,omitempty"`
	Status      string            `json:"status"`
	ReviewedBy  *uuid.UUID        `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time        `json:"reviewed_at,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// DecisionResult is the outcome of a review. AlreadyDecided is set when
// the purchase was no longer pending and nothing changed.
type DecisionResult struct {
	Purchase       *PurchaseResponse `json:"purchase"`
	AlreadyDecided bool              `json:"already_decided"`
}

// IssueResponse represents a published issue
type IssueResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	PublishedOn string    `json:"published_on"`
}

// AccessResponse answers whether an actor may read an issue
type AccessResponse struct {
	Issue   IssueResponse `json:"issue"`
	CanRead bool          `json:"can_read"`
}

// Service is the Fortuna application service
type Service struct {
	purchases fortuna.PurchaseRepository
	issues    fortuna.IssueRepository
	access    ScopeAuthorizer
	receipts  shared.ReceiptStore
	clock     shared.Clock

	eventPublisher shared.EventPublisher
	metrics        *telemetry.WorkflowMetrics
}

// NewService creates a new Fortuna service
func NewService(
	purchases fortuna.PurchaseRepository,
	issues fortuna.IssueRepository,
	access ScopeAuthorizer,
	receipts shared.ReceiptStore,
	clock shared.Clock,
) *Service {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &Service{
		purchases: purchases,
		issues:    issues,
		access:    access,
		receipts:  receipts,
		clock:     clock,
	}
}

// SetEventPublisher sets the publisher used after each state change
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the workflow counters
func (s *Service) SetMetrics(m *telemetry.WorkflowMetrics) {
	s.metrics = m
}

// Submit creates the member's purchase, or overwrites the existing one and
// puts it back into review. An approved purchase is reopened the same way,
// so access lapses until the renewal is approved.
func (s *Service) Submit(ctx context.Context, member *identity.Actor, req SubmitPurchaseRequest) (resp *PurchaseResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fortuna", "submit",
		attribute.String("member_id", member.ID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	plan, err := fortuna.ParsePlan(req.Plan)
	if err != nil {
		return nil, err
	}
	if !req.Receipt.IsZero() {
		ok, err := s.receipts.Exists(ctx, req.Receipt)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, shared.NewValidationError("receipt", "Receipt was not found, upload it again")
		}
	}
	params := fortuna.SubmitParams{
		MemberID:    member.ID,
		Plan:        plan,
		Amount:      req.Amount,
		DepositDate: req.DepositDate,
		Receipt:     req.Receipt,
		Note:        req.Note,
	}
	now := s.clock.Now()

	purchase, err := s.purchases.FindByMember(ctx, member.ID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		if purchase, err = fortuna.NewPurchase(params, now); err != nil {
			return nil, err
		}
		err = s.purchases.Create(ctx, purchase)
	case err == nil:
		if err = purchase.Resubmit(params, now); err != nil {
			return nil, err
		}
		err = s.purchases.Save(ctx, purchase)
	}
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("fortuna purchase submitted",
		zap.String("purchase_id", purchase.ID.String()),
		zap.String("plan", string(plan)),
		zap.Time("window_start", purchase.Window.Start),
		zap.Time("window_end", purchase.Window.End),
	)
	s.metrics.Submitted(ctx, workflowPurchase)
	s.publish(ctx, purchase)
	return toPurchaseResponse(purchase), nil
}

// Approve activates the purchase window. Approval writes no ledger rows.
func (s *Service) Approve(ctx context.Context, reviewer *identity.Actor, purchaseID uuid.UUID) (*DecisionResult, error) {
	return s.decide(ctx, reviewer, purchaseID, "approve", func(p *fortuna.Purchase, now time.Time) error {
		return p.Approve(reviewer.ID, now)
	})
}

// Reject declines the purchase
func (s *Service) Reject(ctx context.Context, reviewer *identity.Actor, purchaseID uuid.UUID, reason string) (*DecisionResult, error) {
	return s.decide(ctx, reviewer, purchaseID, "reject", func(p *fortuna.Purchase, now time.Time) error {
		return p.Reject(reviewer.ID, reason, now)
	})
}

func (s *Service) decide(ctx context.Context, reviewer *identity.Actor, purchaseID uuid.UUID, method string, apply func(*fortuna.Purchase, time.Time) error) (result *DecisionResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fortuna", method,
		attribute.String("purchase_id", purchaseID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	if !reviewer.CanActForOthers() {
		return nil, shared.NewPermissionError("Only responsibles can review Fortuna purchases")
	}
	purchase, err := s.purchases.FindByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.access.AuthorizeSubject(ctx, reviewer, purchase.MemberID); err != nil {
		return nil, err
	}
	if !purchase.IsPending() {
		return s.alreadyDecided(ctx, purchase), nil
	}

	if err := apply(purchase, s.clock.Now()); err != nil {
		return nil, err
	}
	won, err := s.purchases.SaveDecision(ctx, purchase)
	if err != nil {
		return nil, err
	}
	if !won {
		current, err := s.purchases.FindByID(ctx, purchaseID)
		if err != nil {
			return nil, err
		}
		if current.IsPending() {
			return nil, shared.NewConflictError("PURCHASE_RESUBMITTED",
				"The purchase was resubmitted while under review; reload it before deciding")
		}
		return s.alreadyDecided(ctx, current), nil
	}

	logger.L(ctx).Info("fortuna purchase decided",
		zap.String("purchase_id", purchase.ID.String()),
		zap.String("reviewer_id", reviewer.ID.String()),
		zap.String("status", string(purchase.Status)),
	)
	s.metrics.Decided(ctx, workflowPurchase, string(purchase.Status))
	s.publish(ctx, purchase)
	return &DecisionResult{Purchase: toPurchaseResponse(purchase)}, nil
}

// GetMine returns the actor's purchase
func (s *Service) GetMine(ctx context.Context, member *identity.Actor) (*PurchaseResponse, error) {
	purchase, err := s.purchases.FindByMember(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	return toPurchaseResponse(purchase), nil
}

// CreateIssue publishes a new issue. Board only.
func (s *Service) CreateIssue(ctx context.Context, actor *identity.Actor, title string, publishedOn time.Time) (*IssueResponse, error) {
	if !actor.IsUnrestricted() {
		return nil, shared.NewPermissionError("Only the board can publish Fortuna issues")
	}
	issue, err := fortuna.NewIssue(title, publishedOn, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}
	resp := toIssueResponse(issue)
	return &resp, nil
}

// Access reports whether actor may read the issue
func (s *Service) Access(ctx context.Context, actor *identity.Actor, issueID uuid.UUID) (*AccessResponse, error) {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	ok, err := s.CanRead(ctx, actor, issue)
	if err != nil {
		return nil, err
	}
	return &AccessResponse{Issue: toIssueResponse(issue), CanRead: ok}, nil
}

// CanRead is true for the board, or when the actor's approved purchase
// window contains the issue's publication date.
func (s *Service) CanRead(ctx context.Context, actor *identity.Actor, issue *fortuna.Issue) (bool, error) {
	if actor.IsUnrestricted() {
		return true, nil
	}
	purchase, err := s.purchases.FindByMember(ctx, actor.ID)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return purchase.HasAccess(issue.PublishedOn), nil
}

func (s *Service) alreadyDecided(ctx context.Context, p *fortuna.Purchase) *DecisionResult {
	logger.L(ctx).Info("fortuna purchase already decided",
		zap.String("purchase_id", p.ID.String()),
		zap.String("status", string(p.Status)),
	)
	s.metrics.Decided(ctx, workflowPurchase, "already_decided")
	return &DecisionResult{Purchase: toPurchaseResponse(p), AlreadyDecided: true}
}

func (s *Service) publish(ctx context.Context, p *fortuna.Purchase) {
	events := p.GetDomainEvents()
	p.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("failed to publish fortuna events",
			zap.String("purchase_id", p.ID.String()),
			zap.Error(err),
		)
	}
}

func toPurchaseResponse(p *fortuna.Purchase) *PurchaseResponse {
	return &PurchaseResponse{
		ID:          p.ID,
		MemberID:    p.MemberID,
		Plan:        string(p.Plan),
		Amount:      p.Amount,
		DepositDate: p.DepositDate.Format(time.DateOnly),
		Receipt:     p.Receipt,
		StartDate:   p.Window.Start.Format(time.DateOnly),
		EndDate:     p.Window.End.Format(time.DateOnly),
		Note:        p.Note,
		Status:      string(p.Status),
		ReviewedBy:  p.ReviewedByID,
		ReviewedAt:  p.ReviewedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toIssueResponse(i *fortuna.Issue) IssueResponse {
	return IssueResponse{ID: i.ID, Title: i.Title, PublishedOn: i.PublishedOn.Format(time.DateOnly)}
}
