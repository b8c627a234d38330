package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digi0/ACE/internal/models"
)

func TestMemoryUsers_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()

	u := &models.User{Email: "Alice@PSU.edu", Name: "Alice"}
	require.NoError(t, users.Create(ctx, u))
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, "alice@psu.edu", u.Email)

	got, err := users.GetByEmail(ctx, "ALICE@psu.edu")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	err = users.Create(ctx, &models.User{Email: "alice@psu.edu", Name: "Other"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryUsers_NotFound(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()

	_, err := users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = users.GetByEmail(ctx, "nobody@psu.edu")
	assert.ErrorIs(t, err, ErrNotFound)

	err = users.Update(ctx, &models.User{ID: uuid.New(), Email: "x@psu.edu"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUsers_UpdateIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()

	u := &models.User{Email: "bob@psu.edu", Name: "Bob"}
	require.NoError(t, users.Create(ctx, u))

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.Name = "Mutated"

	again, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", again.Name)

	again.Profile = &models.Profile{Campus: "University Park"}
	again.ProfileComplete = true
	require.NoError(t, users.Update(ctx, again))

	final, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, final.ProfileComplete)
	assert.Equal(t, "University Park", final.Profile.Campus)
}

func TestMemorySessions(t *testing.T) {
	ctx := context.Background()
	sessions := NewMemoryStore().Sessions()
	now := time.Now().UTC()

	live := &models.Session{Token: "session_live", UserID: uuid.New(), ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	dead := &models.Session{Token: "session_dead", UserID: uuid.New(), ExpiresAt: now.Add(-time.Hour), CreatedAt: now}
	require.NoError(t, sessions.Create(ctx, live))
	require.NoError(t, sessions.Create(ctx, dead))
	assert.ErrorIs(t, sessions.Create(ctx, live), ErrDuplicate)

	n, err := sessions.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = sessions.Get(ctx, "session_dead")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := sessions.Get(ctx, "session_live")
	require.NoError(t, err)
	assert.Equal(t, live.UserID, got.UserID)

	require.NoError(t, sessions.Delete(ctx, "session_live"))
	require.NoError(t, sessions.Delete(ctx, "session_live"))
	_, err = sessions.Get(ctx, "session_live")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryChats(t *testing.T) {
	ctx := context.Background()
	chats := NewMemoryStore().Chats()
	owner := uuid.New()
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	older := &models.ChatSession{ID: "a", UserID: owner, Title: "older", CreatedAt: base, UpdatedAt: base}
	newer := &models.ChatSession{ID: "b", UserID: owner, Title: "newer", CreatedAt: base, UpdatedAt: base.Add(time.Minute)}
	other := &models.ChatSession{ID: "c", UserID: uuid.New(), Title: "other", CreatedAt: base, UpdatedAt: base}
	for _, c := range []*models.ChatSession{older, newer, other} {
		require.NoError(t, chats.Create(ctx, c))
	}

	list, err := chats.ListByUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)

	msgs := []models.Message{{Role: models.RoleUser, Content: "hi", Timestamp: base}}
	require.NoError(t, chats.UpdateMessages(ctx, "a", msgs, base.Add(2*time.Minute)))

	list, err = chats.ListByUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "a", list[0].ID)
	assert.Len(t, list[0].Messages, 1)

	require.NoError(t, chats.Delete(ctx, "a"))
	assert.ErrorIs(t, chats.Delete(ctx, "a"), ErrNotFound)
	assert.ErrorIs(t, chats.UpdateMessages(ctx, "a", msgs, base), ErrNotFound)

	empty, err := chats.ListByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMemoryPolicies(t *testing.T) {
	ctx := context.Background()
	policies := NewMemoryStore().Policies()

	loaded, err := policies.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	in := []models.Policy{{VaultID: "PSU-1", Title: "One"}, {VaultID: "PSU-2", Title: "Two"}}
	require.NoError(t, policies.Save(ctx, in))
	in[0].Title = "changed"

	loaded, err = policies.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "One", loaded[0].Title)
}
