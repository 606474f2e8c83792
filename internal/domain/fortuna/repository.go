package fortuna

import (
	"context"

	"github.com/google/uuid"
)

// PurchaseRepository persists Fortuna purchases, one per member
type PurchaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Purchase, error)
	// FindByMember returns shared.ErrNotFound when the member never purchased
	FindByMember(ctx context.Context, memberID uuid.UUID) (*Purchase, error)

	Create(ctx context.Context, p *Purchase) error
	// Save overwrites a resubmitted purchase with an optimistic version check
	Save(ctx context.Context, p *Purchase) error
	// SaveDecision writes the decision only if the stored row is still
	// pending at the version the decision was made on
	SaveDecision(ctx context.Context, p *Purchase) (bool, error)
}

// IssueRepository reads and writes published issues
type IssueRepository interface {
	Create(ctx context.Context, issue *Issue) error
	FindByID(ctx context.Context, id uuid.UUID) (*Issue, error)
}
