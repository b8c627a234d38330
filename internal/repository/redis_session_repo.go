package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/digi0/ACE/internal/models"
)

const sessionKeyPrefix = "session:"

type redisSessionRepo struct {
	client redis.UniversalClient
}

// NewRedisSessionRepository stores sessions as JSON under session:<token>
// with a TTL equal to the remaining lifetime. Readers still check expiry.
func NewRedisSessionRepository(client redis.UniversalClient) SessionRepository {
	return &redisSessionRepo{client: client}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

// Create stores the session unless the token is already taken.
func (r *redisSessionRepo) Create(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	ok, err := r.client.SetNX(ctx, sessionKey(session.Token), data, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrDuplicate
	}
	return nil
}

// Get loads the session for token.
func (r *redisSessionRepo) Get(ctx context.Context, token string) (*models.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// Delete removes the session. Missing keys are ignored.
func (r *redisSessionRepo) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, sessionKey(token)).Err()
}

// DeleteExpired is a no-op; Redis evicts sessions through their TTL.
func (r *redisSessionRepo) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

var _ SessionRepository = (*redisSessionRepo)(nil)
