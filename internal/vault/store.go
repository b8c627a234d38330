package vault

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/digi0/ACE/internal/models"
	"github.com/digi0/ACE/internal/repository"
)

//go:embed default_vault.json
var defaultVault []byte

// DefaultPolicies returns the bundled starter vault.
func DefaultPolicies() ([]models.Policy, error) {
	var policies []models.Policy
	if err := json.Unmarshal(defaultVault, &policies); err != nil {
		return nil, fmt.Errorf("decode default vault: %w", err)
	}
	return policies, nil
}

// FileStore persists the vault as a JSON array in a single file.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed policy store.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the file. A missing file is an empty vault.
func (s *FileStore) Load(_ context.Context) ([]models.Policy, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Policy{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read vault: %w", err)
	}

	var policies []models.Policy
	if err := json.Unmarshal(data, &policies); err != nil {
		return nil, fmt.Errorf("decode vault %s: %w", s.path, err)
	}
	return policies, nil
}

// Save writes the vault to a temp file and renames it over the old one.
func (s *FileStore) Save(_ context.Context, policies []models.Policy) error {
	data, err := json.MarshalIndent(policies, "", "  ")
	if err != nil {
		return fmt.Errorf("encode vault: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".vault-*.json")
	if err != nil {
		return fmt.Errorf("create temp vault: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write vault: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close vault: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace vault: %w", err)
	}
	return nil
}

var _ repository.PolicyRepository = (*FileStore)(nil)
