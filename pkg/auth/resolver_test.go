package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/CliForge/pinterest-ads-cli/pkg/auth/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTokenStorage is a TokenStorage for testing
type mockTokenStorage struct {
	token *storage.Token
	err   error
}

func (m *mockTokenStorage) SaveToken(ctx context.Context, token *storage.Token) error {
	m.token = token
	return nil
}

func (m *mockTokenStorage) LoadToken(ctx context.Context) (*storage.Token, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.token == nil {
		return nil, storage.ErrNotFound
	}
	return m.token, nil
}

func (m *mockTokenStorage) DeleteToken(ctx context.Context) error {
	m.token = nil
	return nil
}

func TestTokenResolver_Precedence(t *testing.T) {
	stored := &mockTokenStorage{token: &storage.Token{AccessToken: "keyring-token"}}

	tests := []struct {
		name       string
		env        string
		opts       []TokenResolverOption
		wantToken  string
		wantSource TokenSource
	}{
		{
			name:       "flag wins",
			env:        "env-token",
			opts:       []TokenResolverOption{WithFlagToken("flag-token"), WithConfigToken("cfg"), WithStorage(stored)},
			wantToken:  "flag-token",
			wantSource: TokenSourceFlag,
		},
		{
			name:       "env before config",
			env:        "env-token",
			opts:       []TokenResolverOption{WithConfigToken("cfg"), WithStorage(stored)},
			wantToken:  "env-token",
			wantSource: EnvSource(EnvAccessToken),
		},
		{
			name:       "config before keyring",
			opts:       []TokenResolverOption{WithConfigToken("cfg"), WithStorage(stored)},
			wantToken:  "cfg",
			wantSource: TokenSourceConfig,
		},
		{
			name:       "keyring last",
			opts:       []TokenResolverOption{WithStorage(stored)},
			wantToken:  "keyring-token",
			wantSource: TokenSourceKeyring,
		},
		{
			name:       "nothing found",
			opts:       []TokenResolverOption{WithStorage(&mockTokenStorage{})},
			wantToken:  "",
			wantSource: TokenSourceNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvAccessToken, tt.env)

			token, source, err := NewTokenResolver(EnvAccessToken, tt.opts...).Resolve(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestTokenResolver_StorageError(t *testing.T) {
	t.Setenv(EnvAccessToken, "")
	boom := errors.New("keyring locked")

	_, source, err := NewTokenResolver(EnvAccessToken, WithStorage(&mockTokenStorage{err: boom})).Resolve(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, TokenSourceNone, source)
}
