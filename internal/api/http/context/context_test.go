package context

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager()
	userID := uuid.New()

	ctx := m.SetUserIDToContext(context.Background(), userID)
	got, ok := m.GetUserIDFromContext(ctx)

	assert.True(t, ok)
	assert.Equal(t, userID, got)
}

func TestManager_Missing(t *testing.T) {
	m := NewManager()

	got, ok := m.GetUserIDFromContext(context.Background())

	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, got)
}

func TestManager_NilUUID(t *testing.T) {
	m := NewManager()

	ctx := m.SetUserIDToContext(context.Background(), uuid.Nil)
	_, ok := m.GetUserIDFromContext(ctx)

	assert.False(t, ok)
}
