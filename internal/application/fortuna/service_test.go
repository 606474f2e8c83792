package fortuna

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	apporg "github.com/sgi/backend/internal/application/org"
	"github.com/sgi/backend/internal/domain/fortuna"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/storage"
	"github.com/sgi/backend/tests/testutil"
	"github.com/sgi/backend/tests/testutil/fixture"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	*fixture.World
	svc      *Service
	receipts *storage.MemoryReceiptStore
	events   *testutil.EventRecorder
}

func newEnv(t *testing.T) *env {
	t.Helper()
	w := fixture.New(t)
	receipts := storage.NewMemoryReceiptStore("receipts")
	svc := NewService(w.Purchases, w.Issues, apporg.NewService(w.Orgs, w.Actors, w.Clock), receipts, w.Clock)
	events := &testutil.EventRecorder{}
	svc.SetEventPublisher(events)
	return &env{World: w, svc: svc, receipts: receipts, events: events}
}

func (e *env) request(t *testing.T, plan string, deposit time.Time) SubmitPurchaseRequest {
	t.Helper()
	ref, err := e.receipts.Store(t.Context(), []byte("%PDF"), "application/pdf")
	require.NoError(t, err)
	return SubmitPurchaseRequest{Plan: plan, Amount: decimal.NewFromInt(9000), DepositDate: deposit, Receipt: ref}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestService_SubmitComputesWindow(t *testing.T) {
	e := newEnv(t)
	member := e.Actor(t, identity.RoleMember, e.Group, "Ana", "Rojas")

	got, err := e.svc.Submit(t.Context(), member, e.request(t, "quarterly", date(2025, 1, 20)))
	require.NoError(t, err)
	assert.Equal(t, string(fortuna.StatusPending), got.Status)
	assert.Equal(t, "2025-02-01", got.StartDate)
	assert.Equal(t, "2025-04-30", got.EndDate)
	assert.Equal(t, []string{fortuna.EventTypePurchaseSubmitted}, e.events.Types())

	_, err = e.svc.Submit(t.Context(), member, e.request(t, "monthly", date(2025, 1, 20)))
	assert.True(t, shared.IsValidation(err))

	req := e.request(t, "annual", date(2025, 1, 20))
	req.Receipt = "receipts/none.pdf"
	_, err = e.svc.Submit(t.Context(), member, req)
	assert.True(t, shared.IsValidation(err))
}

func TestService_ResubmitWhileApproved(t *testing.T) {
	e := newEnv(t)
	ctx := t.Context()
	member := e.Actor(t, identity.RoleMember, e.Group, "Ana", "Rojas")
	reviewer := e.Actor(t, identity.RoleRespGrupo, e.Group, "Rosa", "Lagos")

	first, err := e.svc.Submit(ctx, member, e.request(t, "quarterly", date(2025, 1, 20)))
	require.NoError(t, err)
	approved, err := e.svc.Approve(ctx, reviewer, first.ID)
	require.NoError(t, err)
	assert.Equal(t, string(fortuna.StatusApproved), approved.Purchase.Status)

	e.Clock.Advance(24 * time.Hour)
	renewed, err := e.svc.Submit(ctx, member, e.request(t, "semiannual", date(2025, 4, 15)))
	require.NoError(t, err)
	assert.Equal(t, first.ID, renewed.ID, "one purchase per member")
	assert.Equal(t, string(fortuna.StatusPending), renewed.Status)
	assert.Equal(t, "semiannual", renewed.Plan)
	assert.Equal(t, "2025-05-01", renewed.StartDate)
	assert.Equal(t, "2025-10-31", renewed.EndDate)
	assert.Nil(t, renewed.ReviewedBy)

	stored, err := e.Purchases.FindByMember(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, fortuna.StatusPending, stored.Status)
	assert.Equal(t, fortuna.PlanSemiannual, stored.Plan)
}

func TestService_Decisions(t *testing.T) {
	e := newEnv(t)
	ctx := t.Context()
	member := e.Actor(t, identity.RoleMember, e.Group, "Ana", "Rojas")
	reviewer := e.Actor(t, identity.RoleRespZona, e.Sibling, "Rosa", "Lagos")
	farResp := e.Actor(t, identity.RoleRespGrupo, e.Far, "Iván", "Mora")

	purchase, err := e.svc.Submit(ctx, member, e.request(t, "quarterly", date(2025, 1, 20)))
	require.NoError(t, err)

	_, err = e.svc.Approve(ctx, member, purchase.ID)
	assert.True(t, shared.IsPermission(err))
	_, err = e.svc.Approve(ctx, farResp, purchase.ID)
	assert.True(t, shared.IsPermission(err))
	_, err = e.svc.Approve(ctx, reviewer, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	e.events.Reset()
	rejected, err := e.svc.Reject(ctx, reviewer, purchase.ID, "monto incorrecto")
	require.NoError(t, err)
	assert.False(t, rejected.AlreadyDecided)
	assert.Equal(t, string(fortuna.StatusRejected), rejected.Purchase.Status)
	assert.Contains(t, rejected.Purchase.Note, "[REJECTED]: monto incorrecto")
	assert.Equal(t, []string{fortuna.EventTypePurchaseRejected}, e.events.Types())

	again, err := e.svc.Approve(ctx, reviewer, purchase.ID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyDecided)
	assert.Equal(t, string(fortuna.StatusRejected), again.Purchase.Status)
	assert.Len(t, e.events.Types(), 1)
}

// renewingRepository lets the member renew right after the reviewer's load
type renewingRepository struct {
	fortuna.PurchaseRepository
	renew func()
}

func (r *renewingRepository) FindByID(ctx context.Context, id uuid.UUID) (*fortuna.Purchase, error) {
	p, err := r.PurchaseRepository.FindByID(ctx, id)
	if r.renew != nil {
		renew := r.renew
		r.renew = nil
		renew()
	}
	return p, err
}

func TestService_DecisionAfterRenewal(t *testing.T) {
	e := newEnv(t)
	ctx := t.Context()
	member := e.Actor(t, identity.RoleMember, e.Group, "Ana", "Rojas")
	reviewer := e.Actor(t, identity.RoleRespGrupo, e.Group, "Rosa", "Lagos")

	purchase, err := e.svc.Submit(ctx, member, e.request(t, "quarterly", date(2025, 1, 20)))
	require.NoError(t, err)

	repo := &renewingRepository{PurchaseRepository: e.Purchases}
	svc := NewService(repo, e.Issues, apporg.NewService(e.Orgs, e.Actors, e.Clock), e.receipts, e.Clock)
	repo.renew = func() {
		_, err := e.svc.Submit(ctx, member, e.request(t, "annual", date(2025, 1, 20)))
		require.NoError(t, err)
	}

	_, err = svc.Approve(ctx, reviewer, purchase.ID)
	assert.True(t, shared.IsConflict(err))

	stored, err := e.Purchases.FindByID(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, fortuna.StatusPending, stored.Status)
	assert.Equal(t, fortuna.PlanAnnual, stored.Plan)

	approved, err := svc.Approve(ctx, reviewer, purchase.ID)
	require.NoError(t, err)
	assert.False(t, approved.AlreadyDecided)
	assert.Equal(t, string(fortuna.PlanAnnual), approved.Purchase.Plan)
}

func TestService_IssueAccess(t *testing.T) {
	e := newEnv(t)
	ctx := t.Context()
	member := e.Actor(t, identity.RoleMember, e.Group, "Ana", "Rojas")
	other := e.Actor(t, identity.RoleMember, e.Group, "Luis", "Paz")
	board := e.Actor(t, identity.RoleDirectiva, nil, "Clara", "Vidal")

	inside, err := e.svc.CreateIssue(ctx, board, "Fortuna marzo", date(2025, 3, 1))
	require.NoError(t, err)
	edge, err := e.svc.CreateIssue(ctx, board, "Fortuna abril", date(2025, 4, 30))
	require.NoError(t, err)
	outside, err := e.svc.CreateIssue(ctx, board, "Fortuna mayo", date(2025, 5, 1))
	require.NoError(t, err)

	_, err = e.svc.CreateIssue(ctx, member, "Pirata", date(2025, 3, 1))
	assert.True(t, shared.IsPermission(err))

	purchase, err := e.svc.Submit(ctx, member, e.request(t, "quarterly", date(2025, 1, 20)))
	require.NoError(t, err)

	access, err := e.svc.Access(ctx, member, inside.ID)
	require.NoError(t, err)
	assert.False(t, access.CanRead, "pending purchases grant nothing")

	_, err = e.svc.Approve(ctx, board, purchase.ID)
	require.NoError(t, err)

	cases := []struct {
		name  string
		actor *identity.Actor
		issue uuid.UUID
		want  bool
	}{
		{"inside window", member, inside.ID, true},
		{"last day inclusive", member, edge.ID, true},
		{"after window", member, outside.ID, false},
		{"no purchase", other, inside.ID, false},
		{"board reads everything", board, outside.ID, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.svc.Access(ctx, tc.actor, tc.issue)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.CanRead)
		})
	}

	mine, err := e.svc.GetMine(ctx, member)
	require.NoError(t, err)
	assert.Equal(t, string(fortuna.StatusApproved), mine.Status)

	_, err = e.svc.GetMine(ctx, other)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
