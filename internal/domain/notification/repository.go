package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/shared"
)

// DefaultUnreadLimit is how many unread notifications the inbox shows
const DefaultUnreadLimit = 5

// Repository persists notifications
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// ListUnread returns the newest unread notifications for actorID
	ListUnread(ctx context.Context, actorID uuid.UUID, limit int) ([]*Notification, error)
	CountUnread(ctx context.Context, actorID uuid.UUID) (int64, error)
	ListByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]*Notification, int64, error)

	Update(ctx context.Context, n *Notification) error
	// MarkAllRead flags every unread notification of actorID and returns how many changed
	MarkAllRead(ctx context.Context, actorID uuid.UUID, at time.Time) (int64, error)
}
