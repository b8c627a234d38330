package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/digi0/ACE/internal/config"
	"github.com/digi0/ACE/internal/models"
	apierrors "github.com/digi0/ACE/internal/pkg/errors"
	"github.com/digi0/ACE/internal/repository"
)

// ExchangeUserInfo is the identity returned by the exchange endpoint.
type ExchangeUserInfo struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	SessionToken string `json:"session_token"`
}

// OAuthService trades an external OAuth session id for a local session.
type OAuthService interface {
	ExchangeSession(ctx context.Context, externalSessionID string) (*models.User, *models.Session, error)
}

// HTTPClient interface for making HTTP requests (allows mocking in tests).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type oauthService struct {
	exchangeURL string
	httpClient  HTTPClient
	users       repository.UserRepository
	auth        *authService
	logger      *slog.Logger
}

// NewOAuthService creates the exchange service. When client credentials are
// configured, calls to the exchange endpoint carry a client-credentials
// bearer token.
func NewOAuthService(
	cfg config.AuthConfig,
	users repository.UserRepository,
	sessions repository.SessionRepository,
	logger *slog.Logger,
) OAuthService {
	timeout := cfg.ExchangeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var client *http.Client
	if cfg.ExchangeClientID != "" && cfg.ExchangeClientSecret != "" && cfg.ExchangeTokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ExchangeClientID,
			ClientSecret: cfg.ExchangeClientSecret,
			TokenURL:     cfg.ExchangeTokenURL,
		}
		client = cc.Client(context.Background())
		client.Timeout = timeout
	} else {
		client = &http.Client{Timeout: timeout}
	}

	return NewOAuthServiceWithClient(cfg, users, sessions, logger, client)
}

// NewOAuthServiceWithClient creates the exchange service with a custom HTTP client.
// This is primarily used for testing.
func NewOAuthServiceWithClient(
	cfg config.AuthConfig,
	users repository.UserRepository,
	sessions repository.SessionRepository,
	logger *slog.Logger,
	httpClient HTTPClient,
) OAuthService {
	auth := newAuthService(cfg, users, sessions, logger)
	return &oauthService{
		exchangeURL: cfg.ExchangeURL,
		httpClient:  httpClient,
		users:       users,
		auth:        auth,
		logger:      auth.logger,
	}
}

func (s *oauthService) ExchangeSession(ctx context.Context, externalSessionID string) (*models.User, *models.Session, error) {
	info, err := s.fetchIdentity(ctx, externalSessionID)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.findOrCreateUser(ctx, info)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find or create user: %w", err)
	}

	sess, err := s.auth.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, sess, nil
}

func (s *oauthService) fetchIdentity(ctx context.Context, externalSessionID string) (*ExchangeUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.exchangeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build exchange request: %w", err)
	}
	req.Header.Set("X-Session-ID", externalSessionID)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("identity exchange failed", slog.String("error", err.Error()))
		return nil, apierrors.ErrServiceUnavailable.WithMessage("Identity provider unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, apierrors.ErrInvalidSession.WithMessage("Invalid session ID")
	}

	var info ExchangeUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode exchange response: %w", err)
	}
	if strings.TrimSpace(info.Email) == "" {
		return nil, apierrors.ErrInvalidSession.WithMessage("Identity provider returned no email")
	}
	return &info, nil
}

func (s *oauthService) findOrCreateUser(ctx context.Context, info *ExchangeUserInfo) (*models.User, error) {
	email := normalizeEmail(info.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if user != nil {
		// Name and avatar may have changed at the provider.
		changed := false
		if info.Name != "" && info.Name != user.Name {
			user.Name = info.Name
			changed = true
		}
		if info.Picture != "" && (user.AvatarURL == nil || *user.AvatarURL != info.Picture) {
			pic := info.Picture
			user.AvatarURL = &pic
			changed = true
		}
		if changed {
			if err := s.users.Update(ctx, user); err != nil {
				return nil, err
			}
		}
		return user, nil
	}

	provider := models.AuthProviderOAuth
	user = &models.User{
		Email:        email,
		Name:         info.Name,
		AuthProvider: &provider,
		IsAdmin:      s.auth.isBootstrapAdmin(email),
		CreatedAt:    s.auth.now().UTC(),
	}
	if info.Picture != "" {
		pic := info.Picture
		user.AvatarURL = &pic
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with a concurrent first login for the same email.
			return s.users.GetByEmail(ctx, email)
		}
		return nil, err
	}
	s.logger.Info("user created from identity exchange", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Compile-time check to ensure oauthService implements OAuthService.
var _ OAuthService = (*oauthService)(nil)
