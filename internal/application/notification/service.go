// Package notification manages the in-app inbox and turns workflow
// decisions into notifications and emails.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/notification"
	"github.com/sgi/backend/internal/domain/shared"
)

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// InboxResponse is the header badge: latest unread plus the unread count
type InboxResponse struct {
	Unread      []NotificationResponse `json:"unread"`
	UnreadCount int64                  `json:"unread_count"`
}

// Service is the notification inbox. It also implements
// shared.NotificationSink for the workflows.
type Service struct {
	repo  notification.Repository
	clock shared.Clock
}

// NewService creates a new notification Service
func NewService(repo notification.Repository, clock shared.Clock) *Service {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &Service{repo: repo, clock: clock}
}

var _ shared.NotificationSink = (*Service)(nil)

// Notify stores an unread notification for actorID
func (s *Service) Notify(ctx context.Context, actorID uuid.UUID, title, body string) error {
	n, err := notification.New(actorID, title, body, s.clock.Now())
	if err != nil {
		return err
	}
	return s.repo.Create(ctx, n)
}

// Inbox returns the newest unread notifications (limit <= 0 uses the default)
// and the total unread count.
func (s *Service) Inbox(ctx context.Context, actor *identity.Actor, limit int) (*InboxResponse, error) {
	if limit <= 0 {
		limit = notification.DefaultUnreadLimit
	}
	unread, err := s.repo.ListUnread(ctx, actor.ID, limit)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountUnread(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &InboxResponse{Unread: toResponses(unread), UnreadCount: count}, nil
}

// List pages through all of the actor's notifications, newest first
func (s *Service) List(ctx context.Context, actor *identity.Actor, filter shared.Filter) ([]NotificationResponse, int64, error) {
	items, total, err := s.repo.ListByActor(ctx, actor.ID, filter)
	if err != nil {
		return nil, 0, err
	}
	return toResponses(items), total, nil
}

// MarkRead marks one notification read. Only its recipient may do so; to
// anyone else it does not exist.
func (s *Service) MarkRead(ctx context.Context, actor *identity.Actor, id uuid.UUID) (*NotificationResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.ActorID != actor.ID {
		return nil, shared.ErrNotFound
	}
	if !n.IsRead {
		n.MarkRead(s.clock.Now())
		if err := s.repo.Update(ctx, n); err != nil {
			return nil, err
		}
	}
	resp := toResponse(n)
	return &resp, nil
}

// MarkAllRead marks every unread notification of the actor and returns how
// many changed
func (s *Service) MarkAllRead(ctx context.Context, actor *identity.Actor) (int64, error) {
	return s.repo.MarkAllRead(ctx, actor.ID, s.clock.Now())
}

func toResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func toResponses(items []*notification.Notification) []NotificationResponse {
	out := make([]NotificationResponse, len(items))
	for i, n := range items {
		out[i] = toResponse(n)
	}
	return out
}
