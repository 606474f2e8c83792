package fixture

import (
	"testing"

	"github.com/sgi/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	w := New(t)

	h, err := w.Orgs.LoadHierarchy(t.Context())
	require.NoError(t, err)
	assert.True(t, h.GroupUnderZone(w.Group.ID, w.Zone.ID))
	assert.True(t, h.GroupUnderZone(w.Far.ID, w.FarZone.ID))
	assert.True(t, h.GroupUnderSector(w.Far.ID, w.Sector.ID))

	a := w.Actor(t, identity.RoleMember, w.Group, "Ana", "Rojas")
	b := w.Actor(t, identity.RoleMember, nil, "Luis", "Soto")
	assert.NotEqual(t, a.RUT, b.RUT)
	assert.Nil(t, b.GroupID)

	stored, err := w.Actors.FindByID(t.Context(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, w.Group.ID, *stored.GroupID)
}
