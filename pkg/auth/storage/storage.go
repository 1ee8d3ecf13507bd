// Package storage persists OAuth tokens between invocations.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by LoadToken when no token is stored.
var ErrNotFound = errors.New("token not found")

// Token is a stored OAuth token.
type Token struct {
	// AccessToken is the bearer token sent to the API.
	AccessToken string `json:"access_token"`
	// RefreshToken obtains a new access token via `auth refresh`.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is the type reported by the token endpoint.
	TokenType string `json:"token_type,omitempty"`
	// ExpiresAt is when the access token expires, if known.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	// Scopes are the granted scopes.
	Scopes []string `json:"scopes,omitempty"`
}

// IsExpired reports whether the token is past its expiry, with a 30 second
// allowance for clock skew. Tokens without an expiry never expire.
func (t *Token) IsExpired() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(30 * time.Second).After(t.ExpiresAt)
}

// Backend names a storage implementation.
type Backend string

const (
	// BackendKeyring stores the token in the OS keyring.
	BackendKeyring Backend = "keyring"
	// BackendFile stores the token in a 0600 JSON file.
	BackendFile Backend = "file"
	// BackendMemory keeps the token for the life of the process.
	BackendMemory Backend = "memory"
)

// Config selects and configures a backend.
type Config struct {
	Backend Backend
	// Service is the keyring service name.
	Service string
	// User is the keyring account name.
	User string
	// Path is the token file for the file backend.
	Path string
}

// TokenStorage stores and retrieves a token.
type TokenStorage interface {
	// SaveToken stores a token.
	SaveToken(ctx context.Context, token *Token) error
	// LoadToken retrieves the stored token or ErrNotFound.
	LoadToken(ctx context.Context) (*Token, error)
	// DeleteToken removes the stored token. Deleting nothing is not an error.
	DeleteToken(ctx context.Context) error
}

// New creates the storage described by cfg.
func New(cfg Config, appName string) (TokenStorage, error) {
	switch cfg.Backend {
	case BackendKeyring, "":
		return NewKeyringStorage(cfg.Service, cfg.User)
	case BackendFile:
		return NewFileStorage(cfg.Path, appName)
	case BackendMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported token storage: %s", cfg.Backend)
	}
}

// MultiStorage writes to every backend and reads from the first that has a
// token.
type MultiStorage struct {
	storages []TokenStorage
}

// NewMultiStorage creates a new multi-tier storage.
func NewMultiStorage(storages ...TokenStorage) *MultiStorage {
	return &MultiStorage{
		storages: storages,
	}
}

// SaveToken saves the token to all available storages.
func (m *MultiStorage) SaveToken(ctx context.Context, token *Token) error {
	var lastErr error
	saved := false

	for _, storage := range m.storages {
		if err := storage.SaveToken(ctx, token); err != nil {
			lastErr = err
		} else {
			saved = true
		}
	}

	if !saved && lastErr != nil {
		return lastErr
	}
	return nil
}

// LoadToken loads the token from the first storage that has one.
func (m *MultiStorage) LoadToken(ctx context.Context) (*Token, error) {
	for _, storage := range m.storages {
		token, err := storage.LoadToken(ctx)
		if err == nil && token != nil {
			return token, nil
		}
	}
	return nil, ErrNotFound
}

// DeleteToken deletes the token from all storages.
func (m *MultiStorage) DeleteToken(ctx context.Context) error {
	var lastErr error
	for _, storage := range m.storages {
		if err := storage.DeleteToken(ctx); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
