package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/identity"
)

// LoginInput contains the credentials of a login attempt
type LoginInput struct {
	Username string
	Password string
	IP       string
}

// LoginResult is a successful login
type LoginResult struct {
	AccessToken string        `json:"access_token"`
	ExpiresAt   time.Time     `json:"expires_at"`
	TokenType   string        `json:"token_type"`
	Actor       ActorResponse `json:"actor"`
}

// CreateActorInput registers a new actor
type CreateActorInput struct {
	Username    string
	FirstName   string
	LastName    string
	Email       string
	RUT         string
	Role        string
	GroupID     *uuid.UUID
	Password    string
	IsSuperuser bool
	Leadership  identity.Leadership
}

// UpdateActorInput is a partial actor update; nil fields are unchanged
type UpdateActorInput struct {
	GroupID    *uuid.UUID
	ClearGroup bool
	Role       *string
	IsActive   *bool
	Leadership *identity.Leadership
}

// ActorResponse represents an actor in API responses
type ActorResponse struct {
	ID               uuid.UUID  `json:"id"`
	Username         string     `json:"username"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	FullName         string     `json:"full_name"`
	Email            string     `json:"email,omitempty"`
	RUT              string     `json:"rut"`
	Role             string     `json:"role"`
	RoleLabel        string     `json:"role_label"`
	GroupID          *uuid.UUID `json:"group_id,omitempty"`
	IsSuperuser      bool       `json:"is_superuser"`
	IsActive         bool       `json:"is_active"`
	IsNationalLeader bool       `json:"is_national_leader"`
	IsNationalVice   bool       `json:"is_national_vice"`
	NationalDivision *string    `json:"national_division,omitempty"`
}

// ToActorResponse converts an actor for API responses
func ToActorResponse(a *identity.Actor) ActorResponse {
	return ActorResponse{
		ID:               a.ID,
		Username:         a.Username,
		FirstName:        a.FirstName,
		LastName:         a.LastName,
		FullName:         a.FullName(),
		Email:            a.Email,
		RUT:              a.RUT,
		Role:             string(a.Role),
		RoleLabel:        a.Role.Label(),
		GroupID:          a.GroupID,
		IsSuperuser:      a.IsSuperuser,
		IsActive:         a.IsActive,
		IsNationalLeader: a.IsNationalLeader,
		IsNationalVice:   a.IsNationalVice,
		NationalDivision: a.NationalDivision,
	}
}
