package household

import (
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/shared"
)

const (
	AggregateTypeHousehold = "Household"

	EventTypeMemberAdded   = "HouseholdMemberAdded"
	EventTypeMemberRemoved = "HouseholdMemberRemoved"
)

// MemberAddedEvent is raised when an actor joins a household (including
// the founder)
type MemberAddedEvent struct {
	shared.BaseDomainEvent
	HouseholdID uuid.UUID `json:"household_id"`
	ActorID     uuid.UUID `json:"actor_id"`
}

// NewMemberAddedEvent creates a MemberAddedEvent
func NewMemberAddedEvent(h *Household, actorID uuid.UUID, at time.Time) *MemberAddedEvent {
	return &MemberAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberAdded, AggregateTypeHousehold, h.ID, at),
		HouseholdID:     h.ID,
		ActorID:         actorID,
	}
}

// MemberRemovedEvent is raised when an actor leaves a household
type MemberRemovedEvent struct {
	shared.BaseDomainEvent
	HouseholdID uuid.UUID `json:"household_id"`
	ActorID     uuid.UUID `json:"actor_id"`
}

// NewMemberRemovedEvent creates a MemberRemovedEvent
func NewMemberRemovedEvent(h *Household, actorID uuid.UUID, at time.Time) *MemberRemovedEvent {
	return &MemberRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberRemoved, AggregateTypeHousehold, h.ID, at),
		HouseholdID:     h.ID,
		ActorID:         actorID,
	}
}
