package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/digi0/ACE/internal/models"
)

// MemoryStore is an in-process backend for all repositories. Each method
// holds the lock for the whole read or write, so single-document operations
// are atomic.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]*models.User
	byEmail  map[string]uuid.UUID
	sessions map[string]*models.Session
	chats    map[string]*models.ChatSession
	policies []models.Policy
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uuid.UUID]*models.User),
		byEmail:  make(map[string]uuid.UUID),
		sessions: make(map[string]*models.Session),
		chats:    make(map[string]*models.ChatSession),
	}
}

// Users returns the store as a UserRepository.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// Sessions returns the store as a SessionRepository.
func (s *MemoryStore) Sessions() SessionRepository { return memorySessions{s} }

// Chats returns the store as a ChatRepository.
func (s *MemoryStore) Chats() ChatRepository { return memoryChats{s} }

// Policies returns the store as a PolicyRepository.
func (s *MemoryStore) Policies() PolicyRepository { return memoryPolicies{s} }

type memoryUsers struct{ s *MemoryStore }

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.Profile != nil {
		p := *u.Profile
		c.Profile = &p
	}
	return &c
}

func (r memoryUsers) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := r.s.byEmail[email]; ok {
		return ErrDuplicate
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Email = email
	r.s.users[user.ID] = cloneUser(user)
	r.s.byEmail[email] = user.ID
	return nil
}

func (r memoryUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (r memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(r.s.users[id]), nil
}

func (r memoryUsers) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	email := strings.ToLower(user.Email)
	if email != existing.Email {
		if _, taken := r.s.byEmail[email]; taken {
			return ErrDuplicate
		}
		delete(r.s.byEmail, existing.Email)
		r.s.byEmail[email] = user.ID
	}
	user.Email = email
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

type memorySessions struct{ s *MemoryStore }

func (r memorySessions) Create(_ context.Context, session *models.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sessions[session.Token]; ok {
		return ErrDuplicate
	}
	c := *session
	r.s.sessions[session.Token] = &c
	return nil
}

func (r memorySessions) Get(_ context.Context, token string) (*models.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sess, ok := r.s.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	c := *sess
	return &c, nil
}

func (r memorySessions) Delete(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.sessions, token)
	return nil
}

func (r memorySessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for token, sess := range r.s.sessions {
		if sess.ExpiredAt(now) {
			delete(r.s.sessions, token)
			n++
		}
	}
	return n, nil
}

type memoryChats struct{ s *MemoryStore }

func cloneChat(c *models.ChatSession) *models.ChatSession {
	out := *c
	out.Messages = append([]models.Message(nil), c.Messages...)
	return &out
}

func (r memoryChats) Create(_ context.Context, chat *models.ChatSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.chats[chat.ID]; ok {
		return ErrDuplicate
	}
	r.s.chats[chat.ID] = cloneChat(chat)
	return nil
}

func (r memoryChats) Get(_ context.Context, id string) (*models.ChatSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneChat(c), nil
}

func (r memoryChats) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.ChatSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.ChatSession, 0)
	for _, c := range r.s.chats {
		if c.UserID == userID {
			out = append(out, cloneChat(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r memoryChats) UpdateMessages(_ context.Context, id string, messages []models.Message, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.chats[id]
	if !ok {
		return ErrNotFound
	}
	c.Messages = append([]models.Message(nil), messages...)
	c.UpdatedAt = updatedAt
	return nil
}

func (r memoryChats) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.chats[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.chats, id)
	return nil
}

type memoryPolicies struct{ s *MemoryStore }

func (r memoryPolicies) Load(_ context.Context) ([]models.Policy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return append([]models.Policy(nil), r.s.policies...), nil
}

func (r memoryPolicies) Save(_ context.Context, policies []models.Policy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.policies = append([]models.Policy(nil), policies...)
	return nil
}
