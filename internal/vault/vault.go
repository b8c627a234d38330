// Package vault holds the read model of institutional policies.
//
// Readers get an immutable snapshot through an atomic pointer. Writers are
// serialized by a mutex, persist the new list first and only then swap the
// snapshot, so a failed write leaves readers on the previous version.
package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/digi0/ACE/internal/models"
	"github.com/digi0/ACE/internal/repository"
)

var (
	ErrPolicyNotFound = errors.New("policy not found")
	ErrPolicyExists   = errors.New("policy already exists")
)

// Vault is the policy read model.
type Vault struct {
	store    repository.PolicyRepository
	snapshot atomic.Pointer[[]models.Policy]
	mu       sync.Mutex
	now      func() time.Time
	logger   *slog.Logger
}

// Open loads the vault from store, seeding it with the default policies when
// the store is empty.
func Open(ctx context.Context, store repository.PolicyRepository, logger *slog.Logger) (*Vault, error) {
	if logger == nil {
		logger = slog.Default()
	}
	v := &Vault{store: store, now: time.Now, logger: logger}

	policies, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vault: %w", err)
	}
	if len(policies) == 0 {
		policies, err = DefaultPolicies()
		if err != nil {
			return nil, err
		}
		if err := store.Save(ctx, policies); err != nil {
			return nil, fmt.Errorf("seed vault: %w", err)
		}
		logger.Info("seeded policy vault", slog.Int("policies", len(policies)))
	}

	v.snapshot.Store(&policies)
	return v, nil
}

// List returns the current policies. The slice must not be modified.
func (v *Vault) List() []models.Policy {
	return *v.snapshot.Load()
}

// Get returns the policy with id.
func (v *Vault) Get(id string) (models.Policy, error) {
	for _, p := range v.List() {
		if p.VaultID == id {
			return p, nil
		}
	}
	return models.Policy{}, ErrPolicyNotFound
}

// Create appends p, stamping LastReviewed with today's date.
func (v *Vault) Create(ctx context.Context, p models.Policy) (models.Policy, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	current := v.List()
	if indexOf(current, p.VaultID) >= 0 {
		return models.Policy{}, ErrPolicyExists
	}

	p.LastReviewed = v.today()
	next := make([]models.Policy, 0, len(current)+1)
	next = append(next, current...)
	next = append(next, p)

	if err := v.commit(ctx, next); err != nil {
		return models.Policy{}, err
	}
	return p, nil
}

// Update replaces the policy with id. The stored VaultID is kept.
func (v *Vault) Update(ctx context.Context, id string, p models.Policy) (models.Policy, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	current := v.List()
	i := indexOf(current, id)
	if i < 0 {
		return models.Policy{}, ErrPolicyNotFound
	}

	p.VaultID = id
	p.LastReviewed = v.today()
	next := make([]models.Policy, len(current))
	copy(next, current)
	next[i] = p

	if err := v.commit(ctx, next); err != nil {
		return models.Policy{}, err
	}
	return p, nil
}

// Delete removes the policy with id.
func (v *Vault) Delete(ctx context.Context, id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	current := v.List()
	i := indexOf(current, id)
	if i < 0 {
		return ErrPolicyNotFound
	}

	next := make([]models.Policy, 0, len(current)-1)
	next = append(next, current[:i]...)
	next = append(next, current[i+1:]...)

	return v.commit(ctx, next)
}

func (v *Vault) commit(ctx context.Context, next []models.Policy) error {
	if err := v.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save vault: %w", err)
	}
	v.snapshot.Store(&next)
	return nil
}

func (v *Vault) today() string {
	return v.now().UTC().Format(time.DateOnly)
}

func indexOf(policies []models.Policy, id string) int {
	for i, p := range policies {
		if p.VaultID == id {
			return i
		}
	}
	return -1
}
