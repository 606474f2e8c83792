package integration

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	appcontribution "github.com/sgi/backend/internal/application/contribution"
	apphousehold "github.com/sgi/backend/internal/application/household"
	appnotification "github.com/sgi/backend/internal/application/notification"
	apporg "github.com/sgi/backend/internal/application/org"
	"github.com/sgi/backend/internal/domain/contribution"
	"github.com/sgi/backend/internal/domain/household"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/cache"
	"github.com/sgi/backend/internal/infrastructure/event"
	"github.com/sgi/backend/internal/infrastructure/persistence/models"
	"github.com/sgi/backend/internal/infrastructure/storage"
	"github.com/sgi/backend/tests/testutil/fixture"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// workflow wires the report services and the notifier over postgres
type workflow struct {
	*fixture.World
	reports       *appcontribution.ReportService
	ledger        *appcontribution.LedgerService
	households    *apphousehold.Service
	notifications *appnotification.Service
	receipts      *storage.MemoryReceiptStore
}

func newWorkflow(t *testing.T) *workflow {
	t.Helper()
	tdb := NewSharedTestDB(t)
	w := fixture.On(t, tdb.DB)

	access := apporg.NewService(w.Orgs, w.Actors, w.Clock)
	households := apphousehold.NewService(w.Households, w.Actors, access, w.Tx, w.Clock)
	receipts := storage.NewMemoryReceiptStore("receipts")
	reports := appcontribution.NewReportService(w.Reports, w.Ledger, w.Actors, households, access, receipts, w.Tx, w.Clock)
	notifications := appnotification.NewService(w.Notifications, w.Clock)

	bus := event.NewInMemoryEventBus(zap.NewNop())
	notifier := appnotification.NewWorkflowNotifier(w.Actors, notifications, nil, nil, zap.NewNop())
	bus.Subscribe(event.NewIdempotentHandler(notifier, cache.NewInMemoryIdempotencyStore(), zap.NewNop()))
	reports.SetEventPublisher(bus)

	return &workflow{
		World:         w,
		reports:       reports,
		ledger:        appcontribution.NewLedgerService(w.Ledger, w.Actors, access, w.Clock, decimal.NewFromInt(12000)),
		households:    households,
		notifications: notifications,
		receipts:      receipts,
	}
}

func (w *workflow) submit(t *testing.T, reporter *identity.Actor, total int64, splits ...contribution.Split) *appcontribution.ReportResponse {
	t.Helper()
	ref, err := w.receipts.Store(t.Context(), []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	report, err := w.reports.Submit(t.Context(), reporter, appcontribution.SubmitReportRequest{
		Amount:      decimal.NewFromInt(total),
		DepositDate: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		Receipt:     ref,
		Splits:      splits,
	})
	require.NoError(t, err)
	return report
}

func TestContributionWorkflow_ApproveWithHousehold(t *testing.T) {
	w := newWorkflow(t)
	ctx := t.Context()

	ana := w.Actor(t, identity.RoleMember, w.Group, "Ana", "Rojas")
	benja := w.Actor(t, identity.RoleMember, w.Group, "Benja", "Rojas")
	reviewer := w.Actor(t, identity.RoleRespGrupo, w.Group, "Rosa", "Lagos")

	h, err := w.households.Create(ctx, ana, "Rojas")
	require.NoError(t, err)
	_, err = w.households.AddMember(ctx, ana, h.ID, benja.ID, household.RelationshipChild)
	require.NoError(t, err)

	report := w.submit(t, ana, 15000,
		contribution.Split{MemberID: ana.ID, Amount: decimal.NewFromInt(12000)},
		contribution.Split{MemberID: benja.ID, Amount: decimal.NewFromInt(3000)},
	)

	result, err := w.reports.Approve(ctx, reviewer, report.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadyDecided)
	require.Len(t, result.Contributions, 2)

	total, err := w.Ledger.SumByMember(ctx, ana.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(12000)))

	active, err := w.ledger.ActiveMembers(ctx, reviewer)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, ana.ID, active[0].MemberID)

	inbox, err := w.notifications.Inbox(ctx, ana, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, inbox.UnreadCount)
	assert.Equal(t, "Aporte aprobado", inbox.Unread[0].Title)

	again, err := w.reports.Approve(ctx, reviewer, report.ID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyDecided)
	count, err := w.Ledger.CountBySourceReport(ctx, report.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestContributionWorkflow_ConcurrentDecisions(t *testing.T) {
	w := newWorkflow(t)
	ctx := t.Context()

	member := w.Actor(t, identity.RoleMember, w.Group, "Luis", "Paz")
	first := w.Actor(t, identity.RoleRespGrupo, w.Group, "Rosa", "Lagos")
	second := w.Actor(t, identity.RoleRespZona, w.Sibling, "Marta", "Soto")
	report := w.submit(t, member, 8000)

	const reviewers = 6
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []uuid.UUID
		errs    []error
	)
	for i := range reviewers {
		reviewer := first
		if i%2 == 1 {
			reviewer = second
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			var (
				res *appcontribution.DecisionResult
				err error
			)
			if i%3 == 0 {
				res, err = w.reports.Reject(ctx, reviewer, report.ID, "monto ilegible")
			} else {
				res, err = w.reports.Approve(ctx, reviewer, report.ID)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if !res.AlreadyDecided {
				winners = append(winners, reviewer.ID)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, winners, 1)

	stored, err := w.Reports.FindByID(ctx, report.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPending())

	count, err := w.Ledger.CountBySourceReport(ctx, report.ID)
	require.NoError(t, err)
	if stored.Status == contribution.ReportStatusApproved {
		assert.EqualValues(t, 1, count)
	} else {
		assert.Zero(t, count)
	}

	inbox, err := w.notifications.Inbox(ctx, member, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, inbox.UnreadCount)
}

func TestContributionWorkflow_ScopeOnPostgres(t *testing.T) {
	w := newWorkflow(t)
	ctx := t.Context()

	near := w.Actor(t, identity.RoleMember, w.Group, "Ana", "Rojas")
	far := w.Actor(t, identity.RoleMember, w.Far, "Pedro", "Vera")
	w.submit(t, near, 5000)
	w.submit(t, far, 7000)

	zoneLead := w.Actor(t, identity.RoleRespZona, w.Sibling, "Marta", "Soto")
	visible, total, err := w.reports.List(ctx, zoneLead, appcontribution.ReportListFilter{Filter: shared.DefaultFilter()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, visible, 1)
	assert.Equal(t, near.ID, visible[0].SubjectID)

	admin := w.Actor(t, identity.RoleAdmin, nil, "Clara", "Núñez")
	_, total, err = w.reports.List(ctx, admin, appcontribution.ReportListFilter{Filter: shared.DefaultFilter()})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, err = w.reports.Approve(ctx, zoneLead, visible[0].ID)
	require.NoError(t, err)
}

func TestContributionWorkflow_DeletedSplitMemberOnPostgres(t *testing.T) {
	w := newWorkflow(t)
	ctx := t.Context()

	ana := w.Actor(t, identity.RoleMember, w.Group, "Ana", "Rojas")
	benja := w.Actor(t, identity.RoleMember, w.Group, "Benja", "Rojas")
	cata := w.Actor(t, identity.RoleMember, w.Group, "Cata", "Rojas")
	reviewer := w.Actor(t, identity.RoleRespGrupo, w.Group, "Rosa", "Lagos")

	h, err := w.households.Create(ctx, ana, "Rojas")
	require.NoError(t, err)
	for _, m := range []*identity.Actor{benja, cata} {
		_, err = w.households.AddMember(ctx, ana, h.ID, m.ID, household.RelationshipChild)
		require.NoError(t, err)
	}

	family := w.submit(t, ana, 12000,
		contribution.Split{MemberID: ana.ID, Amount: decimal.NewFromInt(2000)},
		contribution.Split{MemberID: benja.ID, Amount: decimal.NewFromInt(4000)},
		contribution.Split{MemberID: cata.ID, Amount: decimal.NewFromInt(6000)},
	)
	onlyBenja := w.submit(t, ana, 12000,
		contribution.Split{MemberID: benja.ID, Amount: decimal.NewFromInt(12000)},
	)

	require.NoError(t, w.DB.Where("id = ?", benja.ID).Delete(&models.ActorModel{}).Error)

	stored, err := w.Reports.FindByID(ctx, family.ID)
	require.NoError(t, err)
	require.Len(t, stored.Splits, 3)
	assert.Equal(t, benja.ID, stored.Splits[1].MemberID)
	assert.Equal(t, cata.ID, stored.Splits[2].MemberID)

	result, err := w.reports.Approve(ctx, reviewer, family.ID)
	require.NoError(t, err)
	require.Len(t, result.Contributions, 2)
	assert.Equal(t, ana.ID, result.Contributions[0].MemberID)
	assert.Equal(t, cata.ID, result.Contributions[1].MemberID)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, benja.ID, result.Skipped[0].MemberID)

	result, err = w.reports.Approve(ctx, reviewer, onlyBenja.ID)
	require.NoError(t, err)
	assert.Empty(t, result.Contributions)
	require.Len(t, result.Skipped, 1)

	total, err := w.Ledger.SumByMember(ctx, ana.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(2000)), total.String())
	total, err = w.Ledger.SumByMember(ctx, cata.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(6000)), total.String())
}
