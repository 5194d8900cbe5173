package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/Veraticus/toolshed/internal/common"
	"github.com/Veraticus/toolshed/internal/service"
)

var _ service.CredentialStore = (*MemoryStore)(nil)

// MemoryStore keeps credentials for the life of the process only.
type MemoryStore struct {
	values map[string]string
	mu     sync.RWMutex
}

// NewMemoryStore creates an empty in-process credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// GetCredential returns the value stored under key, or common.ErrNotFound.
func (m *MemoryStore) GetCredential(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return "", fmt.Errorf("credential %q: %w", key, common.ErrNotFound)
	}
	return value, nil
}

// SaveCredential stores value under key.
func (m *MemoryStore) SaveCredential(_ context.Context, key, value string) error {
	if err := validateString(key, "key"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// DeleteCredential removes key.
func (m *MemoryStore) DeleteCredential(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
