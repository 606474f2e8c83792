package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/cache"
	"github.com/sgi/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockIdempotencyStore struct {
	mock.Mock
}

func (m *mockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	inner := testutil.NewMockEventHandler("ReportApproved")
	h := NewIdempotentHandler(inner, store, zap.NewNop())
	ev := newTestEvent("ReportApproved")

	require.NoError(t, h.Handle(context.Background(), ev))
	require.NoError(t, h.Handle(context.Background(), ev))
	require.NoError(t, h.Handle(context.Background(), newTestEvent("ReportApproved")))

	assert.Equal(t, 2, inner.HandledCount())
	assert.Equal(t, IdempotencyStats{Processed: 2, Duplicate: 1}, h.Stats())
	assert.Equal(t, []string{"ReportApproved"}, h.EventTypes())
	assert.Same(t, inner, h.Unwrap())
}

func TestIdempotentHandler_StoreFailureStillProcesses(t *testing.T) {
	store := new(mockIdempotencyStore)
	ev := newTestEvent("X")
	store.On("MarkProcessed", mock.Anything, ev.EventID().String(), 24*time.Hour).
		Return(false, errors.New("redis unavailable"))

	inner := testutil.NewMockEventHandler("X")
	h := NewIdempotentHandler(inner, store, nil)

	require.NoError(t, h.Handle(context.Background(), ev))
	assert.Equal(t, 1, inner.HandledCount())
	store.AssertExpectations(t)
}

func TestIdempotentHandler_HandlerErrorKeepsKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	inner := testutil.NewMockEventHandler("X")
	inner.SetError(errors.New("boom"))
	h := NewIdempotentHandler(inner, store, nil)
	ev := newTestEvent("X")

	assert.Error(t, h.Handle(context.Background(), ev))
	assert.NoError(t, h.Handle(context.Background(), ev))
	assert.Equal(t, IdempotencyStats{Failed: 1, Duplicate: 1}, h.Stats())
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	store := new(mockIdempotencyStore)
	inner := testutil.NewMockEventHandler("X")
	h := NewIdempotentHandler(inner, store, nil,
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}))

	ev := newTestEvent("X")
	require.NoError(t, h.Handle(context.Background(), ev))
	require.NoError(t, h.Handle(context.Background(), ev))
	assert.Equal(t, 2, inner.HandledCount())
	store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}
