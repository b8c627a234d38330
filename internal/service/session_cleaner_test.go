package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/digi0/ACE/internal/repository"
)

func TestSessionCleaner_RunOnce(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestAuth(t)

	svc.now = func() time.Time { return time.Now().Add(-10 * 24 * time.Hour) }
	old, err := svc.CreateSession(ctx, uuid.New())
	require.NoError(t, err)
	svc.now = time.Now

	NewSessionCleaner(svc, time.Hour, nil).RunOnce(ctx)

	_, err = store.Sessions().Get(ctx, old.Token)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionCleaner_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	svc, _ := newTestAuth(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewSessionCleaner(svc, 5*time.Millisecond, nil).Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("cleaner did not stop")
	}
}
