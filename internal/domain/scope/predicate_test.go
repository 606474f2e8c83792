package scope

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/org"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	h      *org.Hierarchy
	sector *org.Sector
	zone   *org.Zone
	group  *org.Group
	other  *org.Group
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	sector, err := org.NewSector("Metropolitano", now)
	require.NoError(t, err)
	zone, err := org.NewZone(sector.ID, "Zona 7", now)
	require.NoError(t, err)
	group, err := org.NewGroup(zone.ID, "Grupo A", now)
	require.NoError(t, err)

	otherSector, err := org.NewSector("Sur", now)
	require.NoError(t, err)
	otherZone, err := org.NewZone(otherSector.ID, "Zona 1", now)
	require.NoError(t, err)
	other, err := org.NewGroup(otherZone.ID, "Grupo B", now)
	require.NoError(t, err)

	h := org.NewHierarchy(
		[]org.Sector{*sector, *otherSector},
		[]org.Zone{*zone, *otherZone},
		[]org.Group{*group, *other},
	)
	return fixture{h: h, sector: sector, zone: zone, group: group, other: other}
}

func actorWith(t *testing.T, role identity.Role, groupID *uuid.UUID) *identity.Actor {
	t.Helper()
	a, err := identity.NewActor("user"+uuid.NewString()[:8], "Test", "User", "", "12345678-5", role, now)
	require.NoError(t, err)
	a.GroupID = groupID
	return a
}

func TestResolve(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		role  identity.Role
		group *uuid.UUID
		want  func(a *identity.Actor) Predicate
	}{
		{"admin", identity.RoleAdmin, nil, func(*identity.Actor) Predicate { return Unrestricted() }},
		{"directiva", identity.RoleDirectiva, &f.group.ID, func(*identity.Actor) Predicate { return Unrestricted() }},
		{"resp_grupo", identity.RoleRespGrupo, &f.group.ID, func(*identity.Actor) Predicate { return ByGroup(f.group.ID) }},
		{"resp_zona", identity.RoleRespZona, &f.group.ID, func(*identity.Actor) Predicate { return ByZone(f.zone.ID) }},
		{"resp_sector", identity.RoleRespSector, &f.group.ID, func(*identity.Actor) Predicate { return BySector(f.sector.ID) }},
		{"member", identity.RoleMember, &f.group.ID, func(a *identity.Actor) Predicate { return SelfOnly(a.ID) }},
		{"resp_zona without group", identity.RoleRespZona, nil, func(a *identity.Actor) Predicate { return SelfOnly(a.ID) }},
		{"resp_grupo without group", identity.RoleRespGrupo, nil, func(a *identity.Actor) Predicate { return SelfOnly(a.ID) }},
		{"resp_sector without group", identity.RoleRespSector, nil, func(a *identity.Actor) Predicate { return SelfOnly(a.ID) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := actorWith(t, tt.role, tt.group)
			assert.Equal(t, tt.want(a), Resolve(a, f.h))
		})
	}
}

func TestResolve_UnknownGroupFailsClosed(t *testing.T) {
	f := newFixture(t)
	dangling := uuid.New()

	for _, role := range []identity.Role{identity.RoleRespGrupo, identity.RoleRespZona, identity.RoleRespSector} {
		a := actorWith(t, role, &dangling)
		assert.Equal(t, SelfOnly(a.ID), Resolve(a, f.h), string(role))
	}
}

func TestResolve_SuperuserIsUnrestricted(t *testing.T) {
	f := newFixture(t)
	a := actorWith(t, identity.RoleMember, nil)
	a.IsSuperuser = true
	assert.Equal(t, Unrestricted(), Resolve(a, f.h))
}

func TestResolve_Deterministic(t *testing.T) {
	f := newFixture(t)
	a := actorWith(t, identity.RoleRespZona, &f.group.ID)
	b := actorWith(t, identity.RoleRespZona, &f.group.ID)

	assert.Equal(t, Resolve(a, f.h), Resolve(b, f.h))
	assert.Equal(t, Resolve(a, f.h), Resolve(a, f.h))
}

func TestVisibilityOfAmounts(t *testing.T) {
	f := newFixture(t)

	for _, role := range identity.AllRoles {
		for _, group := range []*uuid.UUID{nil, &f.group.ID} {
			t.Run(fmt.Sprintf("%s/group=%v", role, group != nil), func(t *testing.T) {
				a := actorWith(t, role, group)
				assert.Equal(t, role.IsBoard(), VisibilityOfAmounts(a, f.h))
			})
		}
	}

	su := actorWith(t, identity.RoleMember, nil)
	su.IsSuperuser = true
	assert.True(t, VisibilityOfAmounts(su, f.h))
}

func TestPredicate_Allows(t *testing.T) {
	f := newFixture(t)
	inGroup := actorWith(t, identity.RoleMember, &f.group.ID)
	elsewhere := actorWith(t, identity.RoleMember, &f.other.ID)
	unassigned := actorWith(t, identity.RoleMember, nil)

	tests := []struct {
		name string
		p    Predicate
		want [3]bool
	}{
		{"unrestricted", Unrestricted(), [3]bool{true, true, true}},
		{"group", ByGroup(f.group.ID), [3]bool{true, false, false}},
		{"zone", ByZone(f.zone.ID), [3]bool{true, false, false}},
		{"sector", BySector(f.sector.ID), [3]bool{true, false, false}},
		{"self", SelfOnly(unassigned.ID), [3]bool{false, false, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := [3]bool{
				tt.p.Allows(inGroup, f.h),
				tt.p.Allows(elsewhere, f.h),
				tt.p.Allows(unassigned, f.h),
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPredicate_String(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0000-0000-000000000007")
	assert.Equal(t, "by_zone(00000000-0000-0000-0000-000000000007)", ByZone(id).String())
	assert.Equal(t, "unrestricted", Unrestricted().String())
}
