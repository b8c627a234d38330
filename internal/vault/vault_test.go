package vault

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digi0/ACE/internal/models"
	"github.com/digi0/ACE/internal/repository"
)

type failingStore struct {
	repository.PolicyRepository
	failSave bool
}

func (f *failingStore) Save(ctx context.Context, p []models.Policy) error {
	if f.failSave {
		return errors.New("disk full")
	}
	return f.PolicyRepository.Save(ctx, p)
}

func openMemory(t *testing.T) (*Vault, repository.PolicyRepository) {
	t.Helper()
	store := repository.NewMemoryStore().Policies()
	v, err := Open(context.Background(), store, nil)
	require.NoError(t, err)
	v.now = func() time.Time { return time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC) }
	return v, store
}

func TestOpen_SeedsEmptyStore(t *testing.T) {
	v, store := openMemory(t)

	defaults, err := DefaultPolicies()
	require.NoError(t, err)
	assert.Len(t, v.List(), len(defaults))

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, saved, len(defaults))

	p, err := v.Get("PSU-ADV-001")
	require.NoError(t, err)
	assert.Equal(t, "Academic Advising Services", p.Title)
}

func TestOpen_KeepsExistingPolicies(t *testing.T) {
	store := repository.NewMemoryStore().Policies()
	require.NoError(t, store.Save(context.Background(), []models.Policy{{VaultID: "X-1", Title: "Only"}}))

	v, err := Open(context.Background(), store, nil)
	require.NoError(t, err)
	require.Len(t, v.List(), 1)
	assert.Equal(t, "X-1", v.List()[0].VaultID)
}

func TestVault_CRUD(t *testing.T) {
	ctx := context.Background()
	v, store := openMemory(t)
	before := len(v.List())

	created, err := v.Create(ctx, models.Policy{VaultID: "PSU-NEW-001", Title: "New", Category: "tuition"})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", created.LastReviewed)
	assert.Len(t, v.List(), before+1)

	_, err = v.Create(ctx, models.Policy{VaultID: "PSU-NEW-001"})
	assert.ErrorIs(t, err, ErrPolicyExists)

	updated, err := v.Update(ctx, "PSU-NEW-001", models.Policy{VaultID: "ignored", Title: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "PSU-NEW-001", updated.VaultID)
	got, err := v.Get("PSU-NEW-001")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	_, err = v.Update(ctx, "nope", models.Policy{})
	assert.ErrorIs(t, err, ErrPolicyNotFound)

	require.NoError(t, v.Delete(ctx, "PSU-NEW-001"))
	assert.ErrorIs(t, v.Delete(ctx, "PSU-NEW-001"), ErrPolicyNotFound)
	_, err = v.Get("PSU-NEW-001")
	assert.ErrorIs(t, err, ErrPolicyNotFound)

	saved, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, saved, before)
}

func TestVault_SnapshotUnchangedOnFailedSave(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{PolicyRepository: repository.NewMemoryStore().Policies()}
	v, err := Open(ctx, store, nil)
	require.NoError(t, err)

	old := v.List()
	store.failSave = true

	_, err = v.Create(ctx, models.Policy{VaultID: "PSU-NEW-001", Title: "New"})
	require.Error(t, err)
	assert.Equal(t, old, v.List())
	_, err = v.Get("PSU-NEW-001")
	assert.ErrorIs(t, err, ErrPolicyNotFound)
}

func TestVault_ReaderKeepsOldSnapshot(t *testing.T) {
	ctx := context.Background()
	v, _ := openMemory(t)

	snap := v.List()
	n := len(snap)
	require.NoError(t, v.Delete(ctx, snap[0].VaultID))

	assert.Len(t, snap, n)
	assert.Len(t, v.List(), n-1)
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ace_vault.json")
	fs := NewFileStore(path)

	empty, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	v, err := Open(ctx, fs, nil)
	require.NoError(t, err)
	_, err = v.Create(ctx, models.Policy{VaultID: "PSU-NEW-001", Title: "New", Tags: []string{"a"}})
	require.NoError(t, err)

	reopened, err := Open(ctx, NewFileStore(path), nil)
	require.NoError(t, err)
	p, err := reopened.Get("PSU-NEW-001")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, p.Tags)
	assert.Len(t, reopened.List(), len(v.List()))
}
