package notification

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/shared"
)

const maxTitleLength = 200

// Notification is an in-app message addressed to one actor
type Notification struct {
	shared.BaseEntity
	ActorID uuid.UUID
	Title   string
	Message string
	IsRead  bool
	ReadAt  *time.Time
}

// New creates an unread notification
func New(actorID uuid.UUID, title, message string, now time.Time) (*Notification, error) {
	if actorID == uuid.Nil {
		return nil, shared.NewValidationError("actor_id", "Recipient is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewValidationError("title", "Title cannot be empty")
	}
	if len([]rune(title)) > maxTitleLength {
		title = string([]rune(title)[:maxTitleLength])
	}
	return &Notification{
		BaseEntity: shared.NewBaseEntity(now),
		ActorID:    actorID,
		Title:      title,
		Message:    message,
	}, nil
}

// MarkRead flags the notification as read; reading twice is harmless
func (n *Notification) MarkRead(now time.Time) {
	if n.IsRead {
		return
	}
	n.IsRead = true
	n.ReadAt = &now
	n.Touch(now)
}
