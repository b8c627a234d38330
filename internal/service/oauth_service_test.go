package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digi0/ACE/internal/config"
	"github.com/digi0/ACE/internal/models"
	apierrors "github.com/digi0/ACE/internal/pkg/errors"
	"github.com/digi0/ACE/internal/repository"
)

func newExchangeServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Session-ID") != "ext-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExchangeSession_CreatesUser(t *testing.T) {
	ctx := context.Background()
	srv := newExchangeServer(t, `{"id":"g-1","email":"New@PSU.edu","name":"New Student","picture":"https://img/a.png","session_token":"ext"}`)
	store := repository.NewMemoryStore()
	svc := NewOAuthServiceWithClient(config.AuthConfig{ExchangeURL: srv.URL, AdminEmails: []string{"new@psu.edu"}},
		store.Users(), store.Sessions(), nil, srv.Client())

	user, sess, err := svc.ExchangeSession(ctx, "ext-123")
	require.NoError(t, err)

	assert.Equal(t, "new@psu.edu", user.Email)
	require.NotNil(t, user.AuthProvider)
	assert.Equal(t, models.AuthProviderOAuth, *user.AuthProvider)
	assert.Nil(t, user.PasswordHash)
	require.NotNil(t, user.AvatarURL)
	assert.Equal(t, "https://img/a.png", *user.AvatarURL)
	assert.True(t, user.IsAdmin)

	stored, err := store.Sessions().Get(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)
}

func TestExchangeSession_ExistingUserRefreshed(t *testing.T) {
	ctx := context.Background()
	srv := newExchangeServer(t, `{"id":"g-1","email":"old@psu.edu","name":"Renamed","picture":"https://img/b.png"}`)
	store := repository.NewMemoryStore()

	hash := "$2a$10$abc"
	existing := &models.User{Email: "old@psu.edu", Name: "Original", PasswordHash: &hash}
	require.NoError(t, store.Users().Create(ctx, existing))

	svc := NewOAuthServiceWithClient(config.AuthConfig{ExchangeURL: srv.URL}, store.Users(), store.Sessions(), nil, srv.Client())

	user, _, err := svc.ExchangeSession(ctx, "ext-123")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)

	stored, err := store.Users().GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)
	require.NotNil(t, stored.PasswordHash)
}

func TestExchangeSession_Rejected(t *testing.T) {
	srv := newExchangeServer(t, `{}`)
	store := repository.NewMemoryStore()
	svc := NewOAuthServiceWithClient(config.AuthConfig{ExchangeURL: srv.URL}, store.Users(), store.Sessions(), nil, srv.Client())

	_, _, err := svc.ExchangeSession(context.Background(), "wrong")
	assert.ErrorIs(t, err, apierrors.ErrInvalidSession)

	_, _, err = svc.ExchangeSession(context.Background(), "ext-123")
	assert.ErrorIs(t, err, apierrors.ErrInvalidSession, "empty email is rejected")
}
