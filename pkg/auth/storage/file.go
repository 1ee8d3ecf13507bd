package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// FileStorage implements file-based token storage.
type FileStorage struct {
	path string
}

// NewFileStorage creates a file storage at path, or at
// $XDG_CONFIG_HOME/<appName>/token.json when path is empty.
func NewFileStorage(path, appName string) (*FileStorage, error) {
	if path == "" {
		path = filepath.Join(xdg.ConfigHome, appName, "token.json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create token directory: %w", err)
	}

	return &FileStorage{path: path}, nil
}

// SaveToken saves a token to the file with owner-only permissions.
func (f *FileStorage) SaveToken(ctx context.Context, token *Token) error {
	if token == nil {
		return fmt.Errorf("token is nil")
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// LoadToken loads a token from the file.
func (f *FileStorage) LoadToken(ctx context.Context) (*Token, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &token, nil
}

// DeleteToken deletes the token file.
func (f *FileStorage) DeleteToken(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// Path returns the path to the token file.
func (f *FileStorage) Path() string {
	return f.path
}
