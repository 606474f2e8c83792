package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/notification"
)

// NotificationModel is the persistence model for notification.Notification
type NotificationModel struct {
	BaseModel
	ActorID uuid.UUID `gorm:"type:uuid;not null;index:idx_notification_inbox,priority:1"`
	Title   string    `gorm:"type:varchar(200);not null"`
	Message string    `gorm:"type:text"`
	IsRead  bool      `gorm:"not null;default:false;index:idx_notification_inbox,priority:2"`
	ReadAt  *time.Time
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		BaseEntity: m.BaseModel.ToDomain(),
		ActorID:    m.ActorID,
		Title:      m.Title,
		Message:    m.Message,
		IsRead:     m.IsRead,
		ReadAt:     m.ReadAt,
	}
}

// NotificationModelFromDomain creates a persistence model from a domain Notification
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	m := &NotificationModel{
		ActorID: n.ActorID,
		Title:   n.Title,
		Message: n.Message,
		IsRead:  n.IsRead,
		ReadAt:  n.ReadAt,
	}
	m.FromDomainBaseEntity(n.BaseEntity)
	return m
}
