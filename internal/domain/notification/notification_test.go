package notification

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	now := time.Now()
	n, err := New(uuid.New(), " Report approved ", "Your report was approved", now)
	require.NoError(t, err)
	assert.Equal(t, "Report approved", n.Title)
	assert.False(t, n.IsRead)

	_, err = New(uuid.Nil, "x", "", now)
	assert.True(t, shared.IsValidation(err))

	_, err = New(uuid.New(), "  ", "", now)
	assert.True(t, shared.IsValidation(err))

	long, err := New(uuid.New(), strings.Repeat("á", 250), "", now)
	require.NoError(t, err)
	assert.Len(t, []rune(long.Title), 200)
}

func TestNotification_MarkRead(t *testing.T) {
	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	n, _ := New(uuid.New(), "t", "m", first)

	n.MarkRead(first.Add(time.Hour))
	require.NotNil(t, n.ReadAt)
	assert.True(t, n.IsRead)

	n.MarkRead(first.Add(2 * time.Hour))
	assert.Equal(t, first.Add(time.Hour), *n.ReadAt)
}
