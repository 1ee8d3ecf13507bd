package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/CliForge/pinterest-ads-cli/internal/errs"
	"github.com/CliForge/pinterest-ads-cli/pkg/auth/storage"
	"golang.org/x/oauth2"
)

// RefreshConfig configures the refresh-token grant.
type RefreshConfig struct {
	ClientID     string
	ClientSecret string
	// TokenURL is usually <base_url>/oauth/token.
	TokenURL string
	Scopes   []string
	// HTTPClient overrides the client used for the token request.
	HTTPClient *http.Client
}

// TokenURL returns the OAuth token endpoint under baseURL.
func TokenURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/oauth/token"
}

// RefreshToken exchanges refreshToken for a new access token. The client ID
// and secret are sent as HTTP Basic credentials.
func RefreshToken(ctx context.Context, cfg RefreshConfig, refreshToken string) (*storage.Token, error) {
	if cfg.ClientID == "" {
		return nil, missing(EnvClientID)
	}
	if cfg.ClientSecret == "" {
		return nil, missing(EnvClientSecret)
	}
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token not available", errs.ErrInput)
	}

	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	if cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, cfg.HTTPClient)
	}

	tok, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	return convertOAuth2Token(tok), nil
}

// convertOAuth2Token converts an oauth2.Token to a stored token.
func convertOAuth2Token(token *oauth2.Token) *storage.Token {
	t := &storage.Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    token.Expiry,
	}

	if scope, ok := token.Extra("scope").(string); ok && scope != "" {
		t.Scopes = strings.FieldsFunc(scope, func(r rune) bool { return r == ' ' || r == ',' })
	}

	return t
}
