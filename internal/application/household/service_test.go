package household

import (
	"testing"

	apporg "github.com/sgi/backend/internal/application/org"
	"github.com/sgi/backend/internal/domain/household"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/tests/testutil"
	"github.com/sgi/backend/tests/testutil/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *fixture.World, *testutil.EventRecorder) {
	t.Helper()
	w := fixture.New(t)
	access := apporg.NewService(w.Orgs, w.Actors, w.Clock)
	svc := NewService(w.Households, w.Actors, access, w.Tx, w.Clock)
	events := &testutil.EventRecorder{}
	svc.SetEventPublisher(events)
	return svc, w, events
}

func TestService_CreateAndMembersOf(t *testing.T) {
	svc, w, events := newTestService(t)
	ctx := t.Context()

	head := w.Actor(t, identity.RoleMember, w.Group, "Zoe", "Muñoz")
	resp, err := svc.Create(ctx, head, "Familia Muñoz")
	require.NoError(t, err)
	require.Len(t, resp.Members, 1)
	assert.True(t, resp.Members[0].IsPrimary)
	assert.Equal(t, []string{household.EventTypeMemberAdded}, events.Types())

	_, err = svc.Create(ctx, head, "Otra")
	assert.True(t, shared.IsConflict(err))

	angel := w.Actor(t, identity.RoleMember, w.Group, "Ángel", "Muñoz")
	bea := w.Actor(t, identity.RoleMember, w.Group, "Bea", "Muñoz")
	_, err = svc.AddMember(ctx, head, resp.ID, bea.ID, household.RelationshipChild)
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, head, resp.ID, angel.ID, household.RelationshipSpouse)
	require.NoError(t, err)

	members, err := svc.MembersOf(ctx, bea)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, head.ID, members[0].ID, "primary first")
	assert.Equal(t, angel.ID, members[1].ID, "accented names collate with their base letter")
	assert.Equal(t, bea.ID, members[2].ID)
}

func TestService_MembersOfWithoutHousehold(t *testing.T) {
	svc, w, _ := newTestService(t)
	loner := w.Actor(t, identity.RoleMember, w.Group, "Sol", "Vera")

	members, err := svc.MembersOf(t.Context(), loner)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, loner.ID, members[0].ID)
}

func TestService_AddMember(t *testing.T) {
	ctx := t.Context()

	t.Run("member of another household", func(t *testing.T) {
		svc, w, _ := newTestService(t)
		a := w.Actor(t, identity.RoleMember, w.Group, "Ana", "A")
		b := w.Actor(t, identity.RoleMember, w.Group, "Beto", "B")
		ha, err := svc.Create(ctx, a, "")
		require.NoError(t, err)
		_, err = svc.Create(ctx, b, "")
		require.NoError(t, err)

		_, err = svc.AddMember(ctx, a, ha.ID, b.ID, household.RelationshipOther)
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "ALREADY_IN_HOUSEHOLD", de.Code)
	})

	t.Run("outsider without authority", func(t *testing.T) {
		svc, w, _ := newTestService(t)
		a := w.Actor(t, identity.RoleMember, w.Group, "Ana", "A")
		stranger := w.Actor(t, identity.RoleMember, w.Group, "Carla", "C")
		ha, err := svc.Create(ctx, a, "")
		require.NoError(t, err)

		_, err = svc.AddMember(ctx, stranger, ha.ID, stranger.ID, "")
		assert.True(t, shared.IsPermission(err))
	})

	t.Run("responsible outside scope", func(t *testing.T) {
		svc, w, _ := newTestService(t)
		a := w.Actor(t, identity.RoleMember, w.Group, "Ana", "A")
		farMember := w.Actor(t, identity.RoleMember, w.Far, "Dora", "D")
		lead := w.Actor(t, identity.RoleRespGrupo, w.Group, "Eva", "E")
		ha, err := svc.Create(ctx, a, "")
		require.NoError(t, err)

		_, err = svc.AddMember(ctx, lead, ha.ID, farMember.ID, "")
		assert.True(t, shared.IsPermission(err))
	})

	t.Run("responsible inside scope", func(t *testing.T) {
		svc, w, _ := newTestService(t)
		a := w.Actor(t, identity.RoleMember, w.Group, "Ana", "A")
		b := w.Actor(t, identity.RoleMember, w.Group, "Beto", "B")
		lead := w.Actor(t, identity.RoleRespGrupo, w.Group, "Eva", "E")
		ha, err := svc.Create(ctx, a, "")
		require.NoError(t, err)

		resp, err := svc.AddMember(ctx, lead, ha.ID, b.ID, household.RelationshipSibling)
		require.NoError(t, err)
		assert.Len(t, resp.Members, 2)
	})
}

func TestService_RemoveMember(t *testing.T) {
	svc, w, _ := newTestService(t)
	ctx := t.Context()

	head := w.Actor(t, identity.RoleMember, w.Group, "Ana", "A")
	child := w.Actor(t, identity.RoleMember, w.Group, "Beto", "B")
	h, err := svc.Create(ctx, head, "")
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, head, h.ID, child.ID, household.RelationshipChild)
	require.NoError(t, err)

	_, err = svc.RemoveMember(ctx, head, h.ID, head.ID)
	assert.True(t, shared.IsInvariant(err), "primary cannot leave while others remain")

	resp, err := svc.RemoveMember(ctx, head, h.ID, child.ID)
	require.NoError(t, err)
	require.Len(t, resp.Members, 1)

	resp, err = svc.RemoveMember(ctx, head, h.ID, head.ID)
	require.NoError(t, err)
	assert.Nil(t, resp)

	_, err = w.Households.FindByID(ctx, h.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
