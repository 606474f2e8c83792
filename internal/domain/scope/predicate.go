// Package scope computes which members and member-owned records an actor
// may see or act upon, based on the actor's role and position in the
// Sector → Zone → Group tree.
//
// A Predicate is a value: two actors with the same role and group always
// resolve to equal predicates. It can be evaluated in memory with Allows,
// or rendered as a SQL filter by the persistence layer.
package scope

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/org"
)

// Kind identifies the shape of a scope predicate
type Kind string

const (
	KindUnrestricted Kind = "unrestricted"
	KindByGroup      Kind = "by_group"
	KindByZone       Kind = "by_zone"
	KindBySector     Kind = "by_sector"
	KindSelfOnly     Kind = "self_only"
)

// Predicate restricts a query to the members an actor may reach. ID is the
// group, zone, sector or actor id depending on Kind and is uuid.Nil for
// KindUnrestricted.
type Predicate struct {
	Kind Kind
	ID   uuid.UUID
}

// Unrestricted reaches every member
func Unrestricted() Predicate { return Predicate{Kind: KindUnrestricted} }

// ByGroup reaches the members of one group
func ByGroup(groupID uuid.UUID) Predicate { return Predicate{Kind: KindByGroup, ID: groupID} }

// ByZone reaches the members of every group under a zone
func ByZone(zoneID uuid.UUID) Predicate { return Predicate{Kind: KindByZone, ID: zoneID} }

// BySector reaches the members of every group under a sector
func BySector(sectorID uuid.UUID) Predicate { return Predicate{Kind: KindBySector, ID: sectorID} }

// SelfOnly reaches the actor alone
func SelfOnly(actorID uuid.UUID) Predicate { return Predicate{Kind: KindSelfOnly, ID: actorID} }

// Resolve computes the predicate for an actor. A responsible role whose
// group cannot be resolved through the hierarchy falls back to SelfOnly.
func Resolve(actor *identity.Actor, h *org.Hierarchy) Predicate {
	if actor.IsSuperuser {
		return Unrestricted()
	}

	switch actor.Role {
	case identity.RoleAdmin, identity.RoleDirectiva:
		return Unrestricted()
	case identity.RoleRespGrupo:
		if actor.GroupID != nil {
			if _, ok := h.Group(*actor.GroupID); ok {
				return ByGroup(*actor.GroupID)
			}
		}
	case identity.RoleRespZona:
		if z, ok := h.ZoneOfGroup(actor.GroupID); ok {
			return ByZone(z.ID)
		}
	case identity.RoleRespSector:
		if s, ok := h.SectorOfGroup(actor.GroupID); ok {
			return BySector(s.ID)
		}
	case identity.RoleMember:
	}
	return SelfOnly(actor.ID)
}

// VisibilityOfAmounts reports whether the actor may see monetary totals.
// Responsible roles can see who is an active contributor, never how much.
func VisibilityOfAmounts(actor *identity.Actor, h *org.Hierarchy) bool {
	return Resolve(actor, h).IsUnrestricted()
}

// IsUnrestricted reports whether the predicate filters nothing
func (p Predicate) IsUnrestricted() bool {
	return p.Kind == KindUnrestricted
}

// Allows evaluates the predicate against a member in memory
func (p Predicate) Allows(member *identity.Actor, h *org.Hierarchy) bool {
	switch p.Kind {
	case KindUnrestricted:
		return true
	case KindByGroup:
		return member.GroupID != nil && *member.GroupID == p.ID
	case KindByZone:
		return member.GroupID != nil && h.GroupUnderZone(*member.GroupID, p.ID)
	case KindBySector:
		return member.GroupID != nil && h.GroupUnderSector(*member.GroupID, p.ID)
	case KindSelfOnly:
		return member.ID == p.ID
	}
	return false
}

// String renders the predicate for logs
func (p Predicate) String() string {
	if p.Kind == KindUnrestricted {
		return string(p.Kind)
	}
	return fmt.Sprintf("%s(%s)", p.Kind, p.ID)
}
