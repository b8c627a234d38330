// Package repository provides data access layer implementations.
//
// Every Get method returns ErrNotFound when the record does not exist; a nil
// record is never returned with a nil error.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/digi0/ACE/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository stores user accounts. Emails are stored lower-cased.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// SessionRepository stores opaque session tokens.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, token string) (*models.Session, error)
	// Delete is idempotent: deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
	// DeleteExpired removes sessions whose expiry is before now and returns
	// how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ChatRepository stores chat sessions with their full transcript.
type ChatRepository interface {
	Create(ctx context.Context, chat *models.ChatSession) error
	Get(ctx context.Context, id string) (*models.ChatSession, error)
	// ListByUser returns the user's chats, most recently updated first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ChatSession, error)
	UpdateMessages(ctx context.Context, id string, messages []models.Message, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// PolicyRepository persists the policy vault as a whole.
type PolicyRepository interface {
	Load(ctx context.Context) ([]models.Policy, error)
	Save(ctx context.Context, policies []models.Policy) error
}
