package services

import (
	"sync"

	"github.com/desertthunder/cutout/internal/shared"
)

var _ TokenStore = (*MemoryTokenStore)(nil)

// MemoryTokenStore is a [TokenStore] that lives only as long as the process.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
	saves int
}

// NewMemoryTokenStore creates a store, optionally seeded with a token.
func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (m *MemoryTokenStore) LoadToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", shared.ErrNoToken
	}
	return m.token, nil
}

func (m *MemoryTokenStore) SaveToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.saves++
	return nil
}

func (m *MemoryTokenStore) ClearToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// Saves returns how many times a token was written.
func (m *MemoryTokenStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
