package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/notification"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotifications(t *testing.T, repo *GormNotificationRepository, actorID uuid.UUID, n int) []*notification.Notification {
	t.Helper()
	out := make([]*notification.Notification, n)
	for i := range n {
		item, err := notification.New(actorID, "Aviso", "mensaje", testNow.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, repo.Create(t.Context(), item))
		out[i] = item
	}
	return out
}

func TestGormNotificationRepository_Inbox(t *testing.T) {
	repo := NewGormNotificationRepository(newTestDB(t))
	ctx := t.Context()
	actor := uuid.New()
	items := seedNotifications(t, repo, actor, 7)
	seedNotifications(t, repo, uuid.New(), 2)

	unread, err := repo.ListUnread(ctx, actor, 0)
	require.NoError(t, err)
	require.Len(t, unread, notification.DefaultUnreadLimit)
	assert.Equal(t, items[6].ID, unread[0].ID)

	items[6].MarkRead(testNow.Add(time.Hour))
	require.NoError(t, repo.Update(ctx, items[6]))

	count, err := repo.CountUnread(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)

	read, err := repo.FindByID(ctx, items[6].ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	unread, err = repo.ListUnread(ctx, actor, 2)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, items[5].ID, unread[0].ID)
}

func TestGormNotificationRepository_ListAndMarkAll(t *testing.T) {
	repo := NewGormNotificationRepository(newTestDB(t))
	ctx := t.Context()
	actor := uuid.New()
	seedNotifications(t, repo, actor, 3)

	page, total, err := repo.ListByActor(ctx, actor, shared.Filter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	changed, err := repo.MarkAllRead(ctx, actor, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), changed)

	changed, err = repo.MarkAllRead(ctx, actor, testNow.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, changed)

	count, err := repo.CountUnread(ctx, actor)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGormNotificationRepository_Missing(t *testing.T) {
	repo := NewGormNotificationRepository(newTestDB(t))
	ctx := t.Context()

	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	ghost, err := notification.New(uuid.New(), "x", "", testNow)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Update(ctx, ghost), shared.ErrNotFound)
}
