package household

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists households with their member rows
type Repository interface {
	// Create inserts the household and its members. A member already in
	// another household violates the storage unique key and is reported as
	// a conflict.
	Create(ctx context.Context, h *Household) error
	// Save replaces the member rows of an existing household
	Save(ctx context.Context, h *Household) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*Household, error)
	// FindByMember returns shared.ErrNotFound when the actor has no household
	FindByMember(ctx context.Context, actorID uuid.UUID) (*Household, error)
}
