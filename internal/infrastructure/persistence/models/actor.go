package models

import (
	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/identity"
)

// ActorModel is the persistence model for the Actor aggregate.
// There are no zone or sector columns; both derive from GroupID.
type ActorModel struct {
	AggregateModel
	Username         string        `gorm:"type:varchar(150);not null;uniqueIndex"`
	FirstName        string        `gorm:"type:varchar(150);not null"`
	LastName         string        `gorm:"type:varchar(150);not null"`
	Email            string        `gorm:"type:varchar(254)"`
	RUT              string        `gorm:"column:rut;type:varchar(12);not null;uniqueIndex"`
	PasswordHash     string        `gorm:"type:varchar(255);not null;default:''"`
	Role             identity.Role `gorm:"type:varchar(20);not null;default:'miembro'"`
	GroupID          *uuid.UUID    `gorm:"type:uuid;index"`
	IsSuperuser      bool          `gorm:"not null;default:false"`
	IsActive         bool          `gorm:"not null;default:true"`
	IsNationalLeader bool          `gorm:"not null;default:false"`
	IsNationalVice   bool          `gorm:"not null;default:false"`
	NationalDivision *string       `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (ActorModel) TableName() string {
	return "actors"
}

// ToDomain converts the persistence model to a domain Actor
func (m *ActorModel) ToDomain() *identity.Actor {
	a := &identity.Actor{
		BaseAggregateRoot: m.ToDomainAggregate(),
		Username:          m.Username,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Email:             m.Email,
		RUT:               m.RUT,
		PasswordHash:      m.PasswordHash,
		Role:              m.Role,
		GroupID:           m.GroupID,
		IsSuperuser:       m.IsSuperuser,
		IsActive:          m.IsActive,
		IsNationalLeader:  m.IsNationalLeader,
		IsNationalVice:    m.IsNationalVice,
		NationalDivision:  m.NationalDivision,
	}
	a.NormalizeNationalDivision()
	return a
}

// ActorModelFromDomain creates a persistence model from a domain Actor
func ActorModelFromDomain(a *identity.Actor) *ActorModel {
	m := &ActorModel{
		Username:         a.Username,
		FirstName:        a.FirstName,
		LastName:         a.LastName,
		Email:            a.Email,
		RUT:              a.RUT,
		PasswordHash:     a.PasswordHash,
		Role:             a.Role,
		GroupID:          a.GroupID,
		IsSuperuser:      a.IsSuperuser,
		IsActive:         a.IsActive,
		IsNationalLeader: a.IsNationalLeader,
		IsNationalVice:   a.IsNationalVice,
		NationalDivision: a.NationalDivision,
	}
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	return m
}
