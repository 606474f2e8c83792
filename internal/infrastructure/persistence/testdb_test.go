package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/org"
	"github.com/sgi/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// newTestDB opens an in-memory sqlite database with every model migrated
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

type testTree struct {
	sector *org.Sector
	zone   *org.Zone
	group  *org.Group
	other  *org.Group
}

// seedTree creates one sector with one zone holding two groups
func seedTree(t *testing.T, repo *GormOrgRepository) testTree {
	t.Helper()
	ctx := t.Context()
	s, err := org.NewSector("Santiago", testNow)
	require.NoError(t, err)
	require.NoError(t, repo.CreateSector(ctx, s))
	z, err := org.NewZone(s.ID, "Centro", testNow)
	require.NoError(t, err)
	require.NoError(t, repo.CreateZone(ctx, z))
	g1, err := org.NewGroup(z.ID, "Esperanza", testNow)
	require.NoError(t, err)
	require.NoError(t, repo.CreateGroup(ctx, g1))
	g2, err := org.NewGroup(z.ID, "Victoria", testNow)
	require.NoError(t, err)
	require.NoError(t, repo.CreateGroup(ctx, g2))
	return testTree{sector: s, zone: z, group: g1, other: g2}
}

// newTestActor creates and stores a member; rut must be unique per test
func newTestActor(t *testing.T, repo *GormActorRepository, username, rut string, group *uuid.UUID) *identity.Actor {
	t.Helper()
	a, err := identity.NewActor(username, "Ana", "Rojas", username+"@example.cl", rut, identity.RoleMember, testNow)
	require.NoError(t, err)
	a.GroupID = group
	require.NoError(t, repo.Create(t.Context(), a))
	return a
}
