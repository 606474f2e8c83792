// Package fixture builds a small, fully wired organization on sqlite for
// workflow tests: one sector with two zones, three groups and the gorm
// repositories over it.
package fixture

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/org"
	"github.com/sgi/backend/internal/infrastructure/persistence"
	"github.com/sgi/backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Now is the instant the fixture clock starts at
var Now = time.Date(2025, 1, 22, 15, 0, 0, 0, time.UTC)

// World is a seeded database plus its repositories
type World struct {
	DB    *gorm.DB
	Clock *testutil.Clock
	Tx    *persistence.TxManager

	Orgs          *persistence.GormOrgRepository
	Actors        *persistence.GormActorRepository
	Households    *persistence.GormHouseholdRepository
	Reports       *persistence.GormReportRepository
	Ledger        *persistence.GormLedgerRepository
	Purchases     *persistence.GormPurchaseRepository
	Issues        *persistence.GormIssueRepository
	Notifications *persistence.GormNotificationRepository

	Sector *org.Sector
	// Zone holds Group and Sibling; Far sits alone in FarZone
	Zone    *org.Zone
	FarZone *org.Zone
	Group   *org.Group
	Sibling *org.Group
	Far     *org.Group

	seq atomic.Int64
}

// New seeds the tree on a fresh in-memory database
func New(t *testing.T) *World {
	t.Helper()
	return On(t, testutil.NewSQLiteDB(t))
}

// On seeds the tree on db, which must already carry the schema
func On(t *testing.T, db *gorm.DB) *World {
	t.Helper()
	w := &World{
		DB:            db,
		Clock:         testutil.NewClock(Now),
		Tx:            persistence.NewTxManager(db),
		Orgs:          persistence.NewGormOrgRepository(db),
		Actors:        persistence.NewGormActorRepository(db),
		Households:    persistence.NewGormHouseholdRepository(db),
		Reports:       persistence.NewGormReportRepository(db),
		Ledger:        persistence.NewGormLedgerRepository(db),
		Purchases:     persistence.NewGormPurchaseRepository(db),
		Issues:        persistence.NewGormIssueRepository(db),
		Notifications: persistence.NewGormNotificationRepository(db),
	}

	ctx := t.Context()
	var err error
	w.Sector, err = org.NewSector("Santiago", Now)
	require.NoError(t, err)
	require.NoError(t, w.Orgs.CreateSector(ctx, w.Sector))

	w.Zone = w.zone(t, "Centro")
	w.FarZone = w.zone(t, "Cordillera")
	w.Group = w.group(t, w.Zone, "Esperanza")
	w.Sibling = w.group(t, w.Zone, "Victoria")
	w.Far = w.group(t, w.FarZone, "Aurora")
	return w
}

func (w *World) zone(t *testing.T, name string) *org.Zone {
	t.Helper()
	z, err := org.NewZone(w.Sector.ID, name, Now)
	require.NoError(t, err)
	require.NoError(t, w.Orgs.CreateZone(t.Context(), z))
	return z
}

func (w *World) group(t *testing.T, z *org.Zone, name string) *org.Group {
	t.Helper()
	g, err := org.NewGroup(z.ID, name, Now)
	require.NoError(t, err)
	require.NoError(t, w.Orgs.CreateGroup(t.Context(), g))
	return g
}

// Actor stores a new active actor. Username, email and RUT are generated
// so every call yields a distinct actor.
func (w *World) Actor(t *testing.T, role identity.Role, group *org.Group, firstName, lastName string) *identity.Actor {
	t.Helper()
	n := w.seq.Add(1)
	username := fmt.Sprintf("%s%d", role, n)
	rut := fmt.Sprintf("%08d-%d", 10000000+n, n%10)

	a, err := identity.NewActor(username, firstName, lastName, username+"@sgi.cl", rut, role, Now)
	require.NoError(t, err)
	if group != nil {
		id := group.ID
		a.GroupID = &id
	}
	require.NoError(t, w.Actors.Create(t.Context(), a))
	return a
}

// GroupID returns a pointer to the id of g
func GroupID(g *org.Group) *uuid.UUID {
	id := g.ID
	return &id
}
