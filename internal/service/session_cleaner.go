package service

import (
	"context"
	"log/slog"
	"time"
)

// SessionCleaner periodically deletes expired sessions. Expiry is always
// re-checked on read, so the cleaner only reclaims storage.
type SessionCleaner struct {
	auth     AuthService
	interval time.Duration
	logger   *slog.Logger
}

// NewSessionCleaner creates a cleaner that runs every interval.
func NewSessionCleaner(auth AuthService, interval time.Duration, logger *slog.Logger) *SessionCleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionCleaner{auth: auth, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled. A non-positive interval disables it.
func (c *SessionCleaner) Run(ctx context.Context) error {
	if c.interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single cleanup pass.
func (c *SessionCleaner) RunOnce(ctx context.Context) {
	n, err := c.auth.CleanupExpiredSessions(ctx)
	if err != nil {
		c.logger.Error("session cleanup failed", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		expiredSessionsReclaimed.Add(float64(n))
		c.logger.Info("reclaimed expired sessions", slog.Int64("count", n))
	}
}
