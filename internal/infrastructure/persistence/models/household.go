package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/household"
)

// HouseholdModel is the persistence model for the Household aggregate
type HouseholdModel struct {
	AggregateModel
	Name    string                 `gorm:"type:varchar(150)"`
	Members []HouseholdMemberModel `gorm:"foreignKey:HouseholdID;references:ID"`
}

// TableName returns the table name for GORM
func (HouseholdModel) TableName() string {
	return "households"
}

// ToDomain converts the persistence model to a domain Household
func (m *HouseholdModel) ToDomain() *household.Household {
	h := &household.Household{
		BaseAggregateRoot: m.ToDomainAggregate(),
		Name:              m.Name,
		Members:           make([]household.Member, len(m.Members)),
	}
	for i, mm := range m.Members {
		h.Members[i] = mm.ToDomain()
	}
	return h
}

// HouseholdModelFromDomain creates a persistence model from a domain Household
func HouseholdModelFromDomain(h *household.Household) *HouseholdModel {
	m := &HouseholdModel{
		Name:    h.Name,
		Members: make([]HouseholdMemberModel, len(h.Members)),
	}
	m.FromDomainAggregateRoot(h.BaseAggregateRoot)
	for i, mem := range h.Members {
		m.Members[i] = HouseholdMemberModel{
			HouseholdID:  h.ID,
			ActorID:      mem.ActorID,
			Relationship: mem.Relationship,
			IsPrimary:    mem.IsPrimary,
			JoinedAt:     mem.JoinedAt,
		}
	}
	return m
}

// HouseholdMemberModel links an actor to a household. The unique index on
// actor_id enforces that an actor belongs to at most one household.
type HouseholdMemberModel struct {
	HouseholdID  uuid.UUID              `gorm:"type:uuid;primaryKey"`
	ActorID      uuid.UUID              `gorm:"type:uuid;primaryKey;uniqueIndex:idx_household_member_actor"`
	Relationship household.Relationship `gorm:"type:varchar(20);not null;default:'other'"`
	IsPrimary    bool                   `gorm:"not null;default:false"`
	JoinedAt     time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (HouseholdMemberModel) TableName() string {
	return "household_members"
}

// ToDomain converts the member row to a domain Member
func (m *HouseholdMemberModel) ToDomain() household.Member {
	return household.Member{
		ActorID:      m.ActorID,
		Relationship: m.Relationship,
		IsPrimary:    m.IsPrimary,
		JoinedAt:     m.JoinedAt,
	}
}
