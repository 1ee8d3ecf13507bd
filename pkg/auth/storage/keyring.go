package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringUser is the keyring account used when none is configured.
const DefaultKeyringUser = "access_token"

// KeyringStorage implements OS keyring-based token storage.
type KeyringStorage struct {
	service string
	user    string
}

// NewKeyringStorage creates a new keyring-based storage.
func NewKeyringStorage(service, user string) (*KeyringStorage, error) {
	if service == "" {
		return nil, fmt.Errorf("keyring service is required for keyring storage")
	}
	if user == "" {
		user = DefaultKeyringUser
	}

	return &KeyringStorage{
		service: service,
		user:    user,
	}, nil
}

// SaveToken saves a token to the OS keyring.
func (k *KeyringStorage) SaveToken(ctx context.Context, token *Token) error {
	if token == nil {
		return fmt.Errorf("token is nil")
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := keyring.Set(k.service, k.user, string(data)); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// LoadToken loads a token from the OS keyring.
func (k *KeyringStorage) LoadToken(ctx context.Context) (*Token, error) {
	data, err := keyring.Get(k.service, k.user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve token from keyring: %w", err)
	}

	var token Token
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &token, nil
}

// DeleteToken deletes the token from the OS keyring.
func (k *KeyringStorage) DeleteToken(ctx context.Context) error {
	if err := keyring.Delete(k.service, k.user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// Service returns the keyring service name.
func (k *KeyringStorage) Service() string {
	return k.service
}
