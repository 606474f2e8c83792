package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/household"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormHouseholdRepository_CreateAndFind(t *testing.T) {
	repo := NewGormHouseholdRepository(newTestDB(t))
	ctx := t.Context()
	founder, spouse := uuid.New(), uuid.New()

	h, err := household.New(founder, "Familia Rojas", testNow)
	require.NoError(t, err)
	require.NoError(t, h.AddMember(spouse, household.RelationshipSpouse, testNow.Add(time.Minute)))
	require.NoError(t, repo.Create(ctx, h))

	found, err := repo.FindByMember(ctx, spouse)
	require.NoError(t, err)
	assert.Equal(t, h.ID, found.ID)
	assert.Equal(t, []uuid.UUID{founder, spouse}, found.MemberIDs())
	assert.Equal(t, founder, found.PrimaryID())
	assert.Equal(t, household.RelationshipSpouse, found.Members[1].Relationship)

	_, err = repo.FindByMember(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormHouseholdRepository_MemberInTwoHouseholds(t *testing.T) {
	repo := NewGormHouseholdRepository(newTestDB(t))
	ctx := t.Context()
	shared1 := uuid.New()

	first, err := household.New(shared1, "", testNow)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	second, err := household.New(uuid.New(), "", testNow)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, second))

	require.NoError(t, second.AddMember(shared1, household.RelationshipOther, testNow))
	err = repo.Save(ctx, second)
	require.True(t, shared.IsConflict(err))
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "ALREADY_IN_HOUSEHOLD", de.Code)

	reloaded, err := repo.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Members, 1)
}

func TestGormHouseholdRepository_SaveAndDelete(t *testing.T) {
	repo := NewGormHouseholdRepository(newTestDB(t))
	ctx := t.Context()
	founder, child := uuid.New(), uuid.New()

	h, err := household.New(founder, "", testNow)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, h))

	stale, err := repo.FindByID(ctx, h.ID)
	require.NoError(t, err)

	require.NoError(t, h.AddMember(child, household.RelationshipChild, testNow.Add(time.Hour)))
	require.NoError(t, repo.Save(ctx, h))

	require.NoError(t, stale.AddMember(uuid.New(), household.RelationshipOther, testNow))
	assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrConcurrencyConflict)

	require.NoError(t, h.RemoveMember(child, testNow.Add(2*time.Hour)))
	require.NoError(t, repo.Save(ctx, h))
	_, err = repo.FindByMember(ctx, child)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, h.ID))
	_, err = repo.FindByMember(ctx, founder)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, h.ID), shared.ErrNotFound)
}
