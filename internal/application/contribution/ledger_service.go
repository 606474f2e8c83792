package contribution

import (
	"context"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/contribution"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/logger"
	"github.com/sgi/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService answers questions about confirmed contributions
type LedgerService struct {
	ledger    contribution.LedgerRepository
	actors    identity.ActorRepository
	access    ScopeAuthorizer
	clock     shared.Clock
	threshold decimal.Decimal
	metrics   *telemetry.WorkflowMetrics
}

// NewLedgerService creates a LedgerService. Members whose confirmed total
// reaches threshold count as active.
func NewLedgerService(
	ledger contribution.LedgerRepository,
	actors identity.ActorRepository,
	access ScopeAuthorizer,
	clock shared.Clock,
	threshold decimal.Decimal,
) *LedgerService {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &LedgerService{
		ledger:    ledger,
		actors:    actors,
		access:    access,
		clock:     clock,
		threshold: threshold,
	}
}

// SetMetrics sets the workflow counters
func (s *LedgerService) SetMetrics(m *telemetry.WorkflowMetrics) {
	s.metrics = m
}

// Threshold returns the active member threshold
func (s *LedgerService) Threshold() decimal.Decimal {
	return s.threshold
}

// ActiveMembers lists members in the viewer's scope whose confirmed total
// reaches the threshold. Totals are only included for unrestricted viewers.
func (s *LedgerService) ActiveMembers(ctx context.Context, viewer *identity.Actor) ([]ActiveMemberResponse, error) {
	if !viewer.CanViewActiveMembers() {
		return nil, shared.NewPermissionError("Only responsibles can view active members")
	}
	p, _, err := s.access.Scope(ctx, viewer)
	if err != nil {
		return nil, err
	}

	totals, err := s.ledger.ActiveMembers(ctx, p, s.threshold)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(totals))
	for _, t := range totals {
		ids = append(ids, t.MemberID)
	}
	members, err := s.actors.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*identity.Actor, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	showAmounts := p.IsUnrestricted()
	out := make([]ActiveMemberResponse, 0, len(totals))
	for _, t := range totals {
		m, ok := byID[t.MemberID]
		if !ok {
			continue
		}
		item := ActiveMemberResponse{MemberID: m.ID, FullName: m.FullName(), GroupID: m.GroupID}
		if showAmounts {
			total := t.Total
			item.Total = &total
		}
		out = append(out, item)
	}
	return out, nil
}

// Summary returns a member's confirmed entries. Members always see their own
// amounts; others need the member in scope and see amounts only when
// unrestricted.
func (s *LedgerService) Summary(ctx context.Context, viewer *identity.Actor, memberID uuid.UUID) (*SummaryResponse, error) {
	showAmounts := true
	if memberID != viewer.ID {
		_, p, err := s.access.AuthorizeSubject(ctx, viewer, memberID)
		if err != nil {
			return nil, err
		}
		showAmounts = p.IsUnrestricted()
	}

	entries, err := s.ledger.FindByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	resp := &SummaryResponse{
		MemberID:      memberID,
		AmountsHidden: !showAmounts,
		Entries:       make([]ContributionResponse, 0, len(entries)),
	}
	for _, e := range entries {
		if e.Confirmed {
			total = total.Add(e.Amount)
		}
		resp.Entries = append(resp.Entries, toContributionResponse(e, showAmounts))
	}
	resp.Active = total.GreaterThanOrEqual(s.threshold)
	if showAmounts {
		resp.Total = &total
	}
	return resp, nil
}

// RecordSpecial appends a special contribution entered by the board
func (s *LedgerService) RecordSpecial(ctx context.Context, actor *identity.Actor, req SpecialContributionRequest) (*ContributionResponse, error) {
	if !actor.IsUnrestricted() {
		return nil, shared.NewPermissionError("Only the board can record special contributions")
	}
	if _, err := s.actors.FindByID(ctx, req.MemberID); err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewValidationError("member_id", "Member does not exist")
		}
		return nil, err
	}

	entry, err := contribution.NewManualContribution(req.MemberID, req.Date, req.Amount, contribution.TypeSpecial, actor.ID, req.Note, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Append(ctx, entry); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("special contribution recorded",
		zap.String("member_id", req.MemberID.String()),
		zap.String("created_by", actor.ID.String()),
	)
	s.metrics.LedgerAppended(ctx, 1)
	resp := toContributionResponse(entry, true)
	return &resp, nil
}
