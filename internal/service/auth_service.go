// Package service provides business logic implementations.
package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/digi0/ACE/internal/config"
	"github.com/digi0/ACE/internal/models"
	apierrors "github.com/digi0/ACE/internal/pkg/errors"
	"github.com/digi0/ACE/internal/pkg/password"
	"github.com/digi0/ACE/internal/repository"
)

// SessionTokenPrefix starts every session token.
const SessionTokenPrefix = "session_"

const defaultSessionExpiry = 7 * 24 * time.Hour

// AuthService manages accounts and the session lifecycle.
//
// A session is Active until its expiry passes (Expired, detected on read) or
// it is deleted (Revoked). Expired sessions may later be reclaimed by
// CleanupExpiredSessions. No session ever returns to Active.
type AuthService interface {
	Signup(ctx context.Context, email, password, name string) (*models.User, *models.Session, error)
	Login(ctx context.Context, email, password string) (*models.User, *models.Session, error)

	CreateSession(ctx context.Context, userID uuid.UUID) (*models.Session, error)
	// ResolveSession maps a token to its user or fails with one of
	// ErrUnauthenticated, ErrInvalidSession, ErrSessionExpired, ErrUserNotFound.
	ResolveSession(ctx context.Context, token string) (*models.User, error)
	RevokeSession(ctx context.Context, token string) error
	CleanupExpiredSessions(ctx context.Context) (int64, error)

	UpdateProfile(ctx context.Context, userID uuid.UUID, profile models.Profile) (*models.User, error)
	PromoteToAdmin(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type authService struct {
	users         repository.UserRepository
	sessions      repository.SessionRepository
	sessionExpiry time.Duration
	adminEmails   map[string]struct{}
	now           func() time.Time
	checkPassword func(hash, plain string) error
	logger        *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	cfg config.AuthConfig,
	users repository.UserRepository,
	sessions repository.SessionRepository,
	logger *slog.Logger,
) AuthService {
	return newAuthService(cfg, users, sessions, logger)
}

func newAuthService(
	cfg config.AuthConfig,
	users repository.UserRepository,
	sessions repository.SessionRepository,
	logger *slog.Logger,
) *authService {
	expiry := cfg.SessionExpiry
	if expiry <= 0 {
		expiry = defaultSessionExpiry
	}
	if logger == nil {
		logger = slog.Default()
	}
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		admins[normalizeEmail(e)] = struct{}{}
	}
	return &authService{
		users:         users,
		sessions:      sessions,
		sessionExpiry: expiry,
		adminEmails:   admins,
		now:           time.Now,
		checkPassword: password.Check,
		logger:        logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) isBootstrapAdmin(email string) bool {
	_, ok := s.adminEmails[normalizeEmail(email)]
	return ok
}

func (s *authService) Signup(ctx context.Context, email, plain, name string) (*models.User, *models.Session, error) {
	email = normalizeEmail(email)

	hash, err := password.Hash(plain)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: &hash,
		IsAdmin:      s.isBootstrapAdmin(email),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, apierrors.ErrEmailRegistered
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	sess, err := s.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("user signed up", slog.String("user_id", user.ID.String()), slog.Bool("is_admin", user.IsAdmin))
	return user, sess, nil
}

func (s *authService) Login(ctx context.Context, email, plain string) (*models.User, *models.Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		user = nil
	case err != nil:
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	// Unknown emails and accounts created through the identity exchange
	// have no hash; they still pay for one comparison.
	if user == nil || user.PasswordHash == nil {
		_ = s.checkPassword(password.DummyHash(), plain)
		return nil, nil, apierrors.ErrInvalidCredentials
	}
	if err := s.checkPassword(*user.PasswordHash, plain); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, nil, apierrors.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("check password: %w", err)
	}

	sess, err := s.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, sess, nil
}

func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return SessionTokenPrefix + base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *authService) CreateSession(ctx context.Context, userID uuid.UUID) (*models.Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	sess := &models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(s.sessionExpiry),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (s *authService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apierrors.ErrUnauthenticated
	}

	sess, err := s.sessions.Get(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.ExpiredAt(s.now()) {
		return nil, apierrors.ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *authService) RevokeSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *authService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return n, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, profile models.Profile) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.Profile = &profile
	user.ProfileComplete = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *authService) PromoteToAdmin(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.NewNotFoundError("User")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.IsAdmin {
		return user, nil
	}

	user.IsAdmin = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.logger.Info("user promoted to admin", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Compile-time check to ensure authService implements AuthService.
var _ AuthService = (*authService)(nil)
