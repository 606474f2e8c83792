package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/notification"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create inserts a notification
func (r *GormNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return conn(ctx, r.db).Create(models.NotificationModelFromDomain(n)).Error
}

// FindByID finds a notification by ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var model models.NotificationModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListUnread returns the newest unread notifications
func (r *GormNotificationRepository) ListUnread(ctx context.Context, actorID uuid.UUID, limit int) ([]*notification.Notification, error) {
	if limit <= 0 {
		limit = notification.DefaultUnreadLimit
	}
	var rows []models.NotificationModel
	if err := conn(ctx, r.db).
		Where("actor_id = ? AND is_read = ?", actorID, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toNotifications(rows), nil
}

// CountUnread counts unread notifications
func (r *GormNotificationRepository) CountUnread(ctx context.Context, actorID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.NotificationModel{}).
		Where("actor_id = ? AND is_read = ?", actorID, false).
		Count(&count).Error
	return count, err
}

// ListByActor pages through every notification of an actor
func (r *GormNotificationRepository) ListByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]*notification.Notification, int64, error) {
	f := filter.Normalize()
	query := conn(ctx, r.db).Model(&models.NotificationModel{}).Where("actor_id = ?", actorID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.NotificationModel
	if err := query.
		Order(notificationSort.clause(f)).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toNotifications(rows), total, nil
}

// Update saves the read state of a notification
func (r *GormNotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	result := conn(ctx, r.db).Model(&models.NotificationModel{}).
		Where("id = ?", n.ID).
		Updates(map[string]any{
			"is_read":    n.IsRead,
			"read_at":    n.ReadAt,
			"updated_at": n.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of actorID as read
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, actorID uuid.UUID, at time.Time) (int64, error) {
	result := conn(ctx, r.db).Model(&models.NotificationModel{}).
		Where("actor_id = ? AND is_read = ?", actorID, false).
		Updates(map[string]any{
			"is_read":    true,
			"read_at":    at,
			"updated_at": at,
		})
	return result.RowsAffected, result.Error
}

func toNotifications(rows []models.NotificationModel) []*notification.Notification {
	out := make([]*notification.Notification, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}
