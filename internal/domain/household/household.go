package household

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/shared"
)

// Relationship describes how a member relates to the household
type Relationship string

const (
	RelationshipHead    Relationship = "head"
	RelationshipSpouse  Relationship = "spouse"
	RelationshipChild   Relationship = "child"
	RelationshipSibling Relationship = "sibling"
	RelationshipOther   Relationship = "other"
)

// IsValid reports whether r is a known relationship
func (r Relationship) IsValid() bool {
	switch r {
	case RelationshipHead, RelationshipSpouse, RelationshipChild, RelationshipSibling, RelationshipOther:
		return true
	}
	return false
}

// Member is one actor's membership in a household
type Member struct {
	ActorID      uuid.UUID
	Relationship Relationship
	IsPrimary    bool
	JoinedAt     time.Time
}

// Household groups co-resident actors for contribution splitting. Exactly
// one member is primary; an actor belongs to at most one household, which
// the service enforces across aggregates.
type Household struct {
	shared.BaseAggregateRoot
	Name    string
	Members []Member
}

// New creates a household with founderID as its sole, primary member
func New(founderID uuid.UUID, name string, now time.Time) (*Household, error) {
	if founderID == uuid.Nil {
		return nil, shared.NewValidationError("actor_id", "Founding member is required")
	}
	h := &Household{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		Name:              strings.TrimSpace(name),
		Members: []Member{{
			ActorID:      founderID,
			Relationship: RelationshipHead,
			IsPrimary:    true,
			JoinedAt:     now,
		}},
	}
	h.AddDomainEvent(NewMemberAddedEvent(h, founderID, now))
	return h, nil
}

// HasMember reports whether actorID belongs to this household
func (h *Household) HasMember(actorID uuid.UUID) bool {
	return slices.ContainsFunc(h.Members, func(m Member) bool { return m.ActorID == actorID })
}

// PrimaryID returns the primary member
func (h *Household) PrimaryID() uuid.UUID {
	for _, m := range h.Members {
		if m.IsPrimary {
			return m.ActorID
		}
	}
	return uuid.Nil
}

// MemberIDs lists member actor ids in storage order
func (h *Household) MemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(h.Members))
	for _, m := range h.Members {
		ids = append(ids, m.ActorID)
	}
	return ids
}

// AddMember appends a non-primary member
func (h *Household) AddMember(actorID uuid.UUID, rel Relationship, now time.Time) error {
	if actorID == uuid.Nil {
		return shared.NewValidationError("actor_id", "Member is required")
	}
	if rel == "" {
		rel = RelationshipOther
	}
	if !rel.IsValid() {
		return shared.NewValidationError("relationship", "Unknown relationship")
	}
	if h.HasMember(actorID) {
		return shared.NewConflictError("ALREADY_IN_HOUSEHOLD", "Actor already belongs to this household")
	}

	h.Members = append(h.Members, Member{ActorID: actorID, Relationship: rel, JoinedAt: now})
	h.Touch(now)
	h.IncrementVersion()
	h.AddDomainEvent(NewMemberAddedEvent(h, actorID, now))
	return nil
}

// RemoveMember drops actorID. The primary member can only leave when it is
// the last one; the caller deletes the household when IsEmpty reports true.
func (h *Household) RemoveMember(actorID uuid.UUID, now time.Time) error {
	idx := slices.IndexFunc(h.Members, func(m Member) bool { return m.ActorID == actorID })
	if idx < 0 {
		return shared.ErrNotFound
	}
	if h.Members[idx].IsPrimary && len(h.Members) > 1 {
		return shared.NewInvariantViolation("PRIMARY_MEMBER_REQUIRED",
			"The primary member cannot be removed while other members remain")
	}

	h.Members = slices.Delete(h.Members, idx, idx+1)
	h.Touch(now)
	h.IncrementVersion()
	h.AddDomainEvent(NewMemberRemovedEvent(h, actorID, now))
	return nil
}

// IsEmpty reports whether the household has no members left
func (h *Household) IsEmpty() bool {
	return len(h.Members) == 0
}
