package auth

import (
	"context"
	"errors"
	"os"

	"github.com/CliForge/pinterest-ads-cli/pkg/auth/storage"
)

// TokenSource records where a token was found.
type TokenSource string

const (
	TokenSourceFlag    TokenSource = "flag"
	TokenSourceConfig  TokenSource = "config"
	TokenSourceKeyring TokenSource = "keyring"
	TokenSourceNone    TokenSource = "none"
)

// EnvSource is the source for a token read from envVar.
func EnvSource(envVar string) TokenSource {
	return TokenSource("env:" + envVar)
}

// TokenResolver finds a token from multiple sources.
type TokenResolver struct {
	flagToken   string
	envVar      string
	configToken string
	storage     storage.TokenStorage
}

// TokenResolverOption configures the resolver.
type TokenResolverOption func(*TokenResolver)

// NewTokenResolver creates a resolver for the slot read from envVar.
func NewTokenResolver(envVar string, opts ...TokenResolverOption) *TokenResolver {
	r := &TokenResolver{envVar: envVar}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithFlagToken sets the value given on the command line.
func WithFlagToken(token string) TokenResolverOption {
	return func(r *TokenResolver) {
		r.flagToken = token
	}
}

// WithConfigToken sets the value read from the config file.
func WithConfigToken(token string) TokenResolverOption {
	return func(r *TokenResolver) {
		r.configToken = token
	}
}

// WithStorage sets the persistent storage consulted last.
func WithStorage(s storage.TokenStorage) TokenResolverOption {
	return func(r *TokenResolver) {
		r.storage = s
	}
}

// Resolve finds a token. Order: flag → environment → config file → storage.
// A missing token is not an error; the source is then TokenSourceNone.
func (r *TokenResolver) Resolve(ctx context.Context) (string, TokenSource, error) {
	if r.flagToken != "" {
		return r.flagToken, TokenSourceFlag, nil
	}

	if r.envVar != "" {
		if token := os.Getenv(r.envVar); token != "" {
			return token, EnvSource(r.envVar), nil
		}
	}

	if r.configToken != "" {
		return r.configToken, TokenSourceConfig, nil
	}

	if r.storage != nil {
		token, err := r.storage.LoadToken(ctx)
		switch {
		case err == nil && token != nil && token.AccessToken != "":
			return token.AccessToken, TokenSourceKeyring, nil
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			return "", TokenSourceNone, err
		}
	}

	return "", TokenSourceNone, nil
}
