package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/digi0/ACE/internal/models"
)

type chatRepo struct {
	pool *pgxpool.Pool
}

// NewChatRepository creates a PostgreSQL-backed chat repository. The
// transcript is stored as a single JSONB document per chat.
func NewChatRepository(pool *pgxpool.Pool) ChatRepository {
	return &chatRepo{pool: pool}
}

func marshalMessages(msgs []models.Message) ([]byte, error) {
	if msgs == nil {
		msgs = []models.Message{}
	}
	return json.Marshal(msgs)
}

func scanChat(row pgx.Row) (*models.ChatSession, error) {
	var (
		c    models.ChatSession
		msgs []byte
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &msgs, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(msgs, &c.Messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return &c, nil
}

// Create inserts a new chat.
func (r *chatRepo) Create(ctx context.Context, chat *models.ChatSession) error {
	msgs, err := marshalMessages(chat.Messages)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO chats (id, user_id, title, messages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.pool.Exec(ctx, query, chat.ID, chat.UserID, chat.Title, msgs, chat.CreatedAt, chat.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// Get retrieves a chat by ID.
func (r *chatRepo) Get(ctx context.Context, id string) (*models.ChatSession, error) {
	query := `SELECT id, user_id, title, messages, created_at, updated_at FROM chats WHERE id = $1`
	return scanChat(r.pool.QueryRow(ctx, query, id))
}

// ListByUser lists a user's chats, most recently updated first.
func (r *chatRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ChatSession, error) {
	query := `
		SELECT id, user_id, title, messages, created_at, updated_at
		FROM chats WHERE user_id = $1
		ORDER BY updated_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := make([]*models.ChatSession, 0)
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// UpdateMessages replaces the transcript and bumps updated_at.
func (r *chatRepo) UpdateMessages(ctx context.Context, id string, messages []models.Message, updatedAt time.Time) error {
	msgs, err := marshalMessages(messages)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `UPDATE chats SET messages = $2, updated_at = $3 WHERE id = $1`, id, msgs, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a chat.
func (r *chatRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ ChatRepository = (*chatRepo)(nil)
