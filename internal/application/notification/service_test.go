package notification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/tests/testutil/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Inbox(t *testing.T) {
	w := fixture.New(t)
	svc := NewService(w.Notifications, w.Clock)
	ctx := t.Context()

	member := w.Actor(t, identity.RoleMember, w.Group, "Ana", "Rojas")
	other := w.Actor(t, identity.RoleMember, w.Group, "Luis", "Paz")
	for i := range 7 {
		w.Clock.Advance(time.Minute)
		require.NoError(t, svc.Notify(ctx, member.ID, "Aviso", string(rune('a'+i))))
	}
	require.NoError(t, svc.Notify(ctx, other.ID, "Aviso", "otro"))

	inbox, err := svc.Inbox(ctx, member, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 7, inbox.UnreadCount)
	require.Len(t, inbox.Unread, 5)
	assert.Equal(t, "g", inbox.Unread[0].Message, "newest first")

	assert.True(t, shared.IsValidation(svc.Notify(ctx, member.ID, " ", "")))

	list, total, err := svc.List(ctx, member, shared.DefaultFilter())
	require.NoError(t, err)
	assert.EqualValues(t, 7, total)
	assert.Len(t, list, 7)
}

func TestService_MarkRead(t *testing.T) {
	w := fixture.New(t)
	svc := NewService(w.Notifications, w.Clock)
	ctx := t.Context()

	member := w.Actor(t, identity.RoleMember, w.Group, "Ana", "Rojas")
	other := w.Actor(t, identity.RoleMember, w.Group, "Luis", "Paz")
	require.NoError(t, svc.Notify(ctx, member.ID, "Uno", ""))
	require.NoError(t, svc.Notify(ctx, member.ID, "Dos", ""))

	inbox, err := svc.Inbox(ctx, member, 0)
	require.NoError(t, err)
	id := inbox.Unread[0].ID

	_, err = svc.MarkRead(ctx, other, id)
	assert.ErrorIs(t, err, shared.ErrNotFound, "someone else's notification")
	_, err = svc.MarkRead(ctx, member, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	read, err := svc.MarkRead(ctx, member, id)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	inbox, err = svc.Inbox(ctx, member, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, inbox.UnreadCount)

	n, err := svc.MarkAllRead(ctx, member)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = svc.MarkAllRead(ctx, member)
	require.NoError(t, err)
	assert.Zero(t, n)
}
