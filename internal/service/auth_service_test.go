package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digi0/ACE/internal/config"
	"github.com/digi0/ACE/internal/models"
	apierrors "github.com/digi0/ACE/internal/pkg/errors"
	"github.com/digi0/ACE/internal/pkg/password"
	"github.com/digi0/ACE/internal/repository"
)

type errSessionRepo struct {
	repository.SessionRepository
	err error
}

func (e *errSessionRepo) Get(context.Context, string) (*models.Session, error) {
	return nil, e.err
}

func newTestAuth(t *testing.T, admins ...string) (*authService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := newAuthService(config.AuthConfig{
		SessionExpiry: 7 * 24 * time.Hour,
		AdminEmails:   admins,
	}, store.Users(), store.Sessions(), nil)
	return svc, store
}

func TestSignup_CreatesUserAndSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuth(t)

	user, sess, err := svc.Signup(ctx, "  Student@PSU.edu ", "hunter22", "Sam Student")
	require.NoError(t, err)

	assert.Equal(t, "student@psu.edu", user.Email)
	assert.Equal(t, "Sam Student", user.Name)
	require.NotNil(t, user.PasswordHash)
	assert.NotEqual(t, "hunter22", *user.PasswordHash)
	assert.Nil(t, user.AuthProvider)
	assert.False(t, user.IsAdmin)
	assert.False(t, user.ProfileComplete)

	assert.True(t, strings.HasPrefix(sess.Token, SessionTokenPrefix))
	assert.Greater(t, len(sess.Token), len(SessionTokenPrefix)+40)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), sess.ExpiresAt, time.Minute)

	resolved, err := svc.ResolveSession(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuth(t)

	_, _, err := svc.Signup(ctx, "dup@psu.edu", "pw123456", "One")
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, "DUP@psu.edu", "other", "Two")
	assert.ErrorIs(t, err, apierrors.ErrEmailRegistered)
	assert.Contains(t, apierrors.AsAPIError(err).Message, "already registered")
}

func TestSignup_BootstrapAdmin(t *testing.T) {
	svc, _ := newTestAuth(t, "Dean@PSU.edu")

	user, _, err := svc.Signup(context.Background(), "dean@psu.edu", "pw123456", "Dean")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestAuth(t)

	_, _, err := svc.Signup(ctx, "amy@psu.edu", "correct-horse", "Amy")
	require.NoError(t, err)

	provider := models.AuthProviderOAuth
	require.NoError(t, store.Users().Create(ctx, &models.User{Email: "oauth@psu.edu", Name: "O", AuthProvider: &provider}))

	user, sess, err := svc.Login(ctx, "AMY@psu.edu", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "amy@psu.edu", user.Email)
	assert.True(t, strings.HasPrefix(sess.Token, SessionTokenPrefix))

	for name, tc := range map[string][2]string{
		"wrong password": {"amy@psu.edu", "wrong"},
		"unknown email":  {"nobody@psu.edu", "correct-horse"},
		"oauth only":     {"oauth@psu.edu", ""},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.Login(ctx, tc[0], tc[1])
			assert.ErrorIs(t, err, apierrors.ErrInvalidCredentials)
		})
	}
}

func TestLogin_ComparesWhenNoHash(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestAuth(t)

	provider := models.AuthProviderOAuth
	require.NoError(t, store.Users().Create(ctx, &models.User{Email: "oauth@psu.edu", Name: "O", AuthProvider: &provider}))

	var hashes []string
	svc.checkPassword = func(hash, plain string) error {
		hashes = append(hashes, hash)
		return password.ErrMismatch
	}

	for _, email := range []string{"nobody@psu.edu", "oauth@psu.edu"} {
		_, _, err := svc.Login(ctx, email, "guess")
		assert.ErrorIs(t, err, apierrors.ErrInvalidCredentials, email)
	}
	require.Len(t, hashes, 2)
	assert.Equal(t, password.DummyHash(), hashes[0])
	assert.Equal(t, password.DummyHash(), hashes[1])
}

func TestResolveSession_Errors(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestAuth(t)

	user, sess, err := svc.Signup(ctx, "eve@psu.edu", "pw123456", "Eve")
	require.NoError(t, err)

	_, err = svc.ResolveSession(ctx, "")
	assert.ErrorIs(t, err, apierrors.ErrUnauthenticated)

	_, err = svc.ResolveSession(ctx, "session_unknown")
	assert.ErrorIs(t, err, apierrors.ErrInvalidSession)

	orphan, err := svc.CreateSession(ctx, uuid.New())
	require.NoError(t, err)
	_, err = svc.ResolveSession(ctx, orphan.Token)
	assert.ErrorIs(t, err, apierrors.ErrUserNotFound)

	// Move the clock past expiry: the row still exists but is rejected.
	svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	_, err = svc.ResolveSession(ctx, sess.Token)
	assert.ErrorIs(t, err, apierrors.ErrSessionExpired)

	stored, err := store.Sessions().Get(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)

	for _, e := range []error{apierrors.ErrUnauthenticated, apierrors.ErrInvalidSession, apierrors.ErrSessionExpired, apierrors.ErrUserNotFound} {
		assert.Equal(t, 401, apierrors.AsAPIError(e).StatusCode)
	}
}

func TestResolveSession_StoreFailure(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newAuthService(config.AuthConfig{}, store.Users(),
		&errSessionRepo{SessionRepository: store.Sessions(), err: errors.New("connection reset")}, nil)

	_, err := svc.ResolveSession(context.Background(), "session_x")
	require.Error(t, err)
	var apiErr *apierrors.APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apierrors.AsAPIError(err).StatusCode)
}

func TestRevokeSession_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuth(t)

	_, sess, err := svc.Signup(ctx, "rev@psu.edu", "pw123456", "Rev")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeSession(ctx, sess.Token))
	require.NoError(t, svc.RevokeSession(ctx, sess.Token))
	require.NoError(t, svc.RevokeSession(ctx, ""))

	_, err = svc.ResolveSession(ctx, sess.Token)
	assert.ErrorIs(t, err, apierrors.ErrInvalidSession)
}

func TestCleanupExpiredSessions(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestAuth(t)

	_, live, err := svc.Signup(ctx, "live@psu.edu", "pw123456", "Live")
	require.NoError(t, err)

	past := time.Now().Add(-30 * 24 * time.Hour)
	svc.now = func() time.Time { return past }
	old, err := svc.CreateSession(ctx, uuid.New())
	require.NoError(t, err)
	svc.now = time.Now

	n, err := svc.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Sessions().Get(ctx, old.Token)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = store.Sessions().Get(ctx, live.Token)
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuth(t)

	user, _, err := svc.Signup(ctx, "prof@psu.edu", "pw123456", "Prof")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, models.Profile{Campus: "University Park", AcademicLevel: "Junior"})
	require.NoError(t, err)
	assert.True(t, updated.ProfileComplete)
	assert.Equal(t, "Junior", updated.Profile.AcademicLevel)

	_, err = svc.UpdateProfile(ctx, uuid.New(), models.Profile{})
	assert.ErrorIs(t, err, apierrors.ErrUserNotFound)
}

func TestPromoteToAdmin(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestAuth(t)

	user, _, err := svc.Signup(ctx, "ta@psu.edu", "pw123456", "TA")
	require.NoError(t, err)

	promoted, err := svc.PromoteToAdmin(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)

	stored, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin)

	_, err = svc.PromoteToAdmin(ctx, uuid.New())
	assert.ErrorIs(t, err, apierrors.ErrNotFound)
}
