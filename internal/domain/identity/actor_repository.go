package identity

import (
	"context"

	"github.com/google/uuid"
)

// ActorRepository defines the interface for actor persistence
type ActorRepository interface {
	Create(ctx context.Context, actor *Actor) error
	Update(ctx context.Context, actor *Actor) error

	// FindByID returns shared.ErrNotFound when the actor does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Actor, error)
	FindByUsername(ctx context.Context, username string) (*Actor, error)

	// FindByIDs loads the given actors; missing ids are simply absent
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Actor, error)

	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByRUT(ctx context.Context, rut string) (bool, error)
}
