package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStorage keeps a token for the life of the process.
type MemoryStorage struct {
	mu    sync.RWMutex
	token *Token
}

// NewMemoryStorage creates a new in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// SaveToken stores a copy of token.
func (m *MemoryStorage) SaveToken(ctx context.Context, token *Token) error {
	if token == nil {
		return fmt.Errorf("token is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token.clone()
	return nil
}

// LoadToken returns a copy of the stored token.
func (m *MemoryStorage) LoadToken(ctx context.Context) (*Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == nil {
		return nil, ErrNotFound
	}
	return m.token.clone(), nil
}

// DeleteToken forgets the stored token.
func (m *MemoryStorage) DeleteToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = nil
	return nil
}

func (t *Token) clone() *Token {
	out := *t
	if t.Scopes != nil {
		out.Scopes = append([]string(nil), t.Scopes...)
	}
	return &out
}
