package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims are the claims shown by `auth status`.
type JWTClaims struct {
	Subject   string
	Issuer    string
	Scope     string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// ParseJWT parses a JWT WITHOUT verifying it, for claim inspection only.
// Expired tokens and bad signatures are not errors.
func ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("failed to extract claims from token")
	}

	out := &JWTClaims{}
	out.Subject, _ = claims.GetSubject()
	out.Issuer, _ = claims.GetIssuer()
	if scope, ok := claims["scope"].(string); ok {
		out.Scope = scope
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}

	return out, nil
}

// LooksLikeJWT reports whether token has the three-part JWS shape.
func LooksLikeJWT(token string) bool {
	return strings.Count(token, ".") == 2 && !strings.ContainsAny(token, " \t")
}

// Mask hides all but the edges of a secret.
func Mask(secret string) string {
	if len(secret) <= 12 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", 8) + secret[len(secret)-4:]
}

// SlotStatus describes one credential slot for display.
type SlotStatus struct {
	Slot      string      `json:"slot" yaml:"slot"`
	Present   bool        `json:"present" yaml:"present"`
	Source    TokenSource `json:"source" yaml:"source"`
	Masked    string      `json:"masked,omitempty" yaml:"masked,omitempty"`
	Subject   string      `json:"subject,omitempty" yaml:"subject,omitempty"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Expired   bool        `json:"expired,omitempty" yaml:"expired,omitempty"`
}

// Describe builds the status of a slot. JWT-shaped tokens report their
// subject and expiry.
func Describe(slot, secret string, source TokenSource, now time.Time) SlotStatus {
	status := SlotStatus{Slot: slot, Present: secret != "", Source: source}
	if secret == "" {
		status.Source = TokenSourceNone
		return status
	}

	status.Masked = Mask(secret)
	if !LooksLikeJWT(secret) {
		return status
	}

	claims, err := ParseJWT(secret)
	if err != nil {
		return status
	}
	status.Subject = claims.Subject
	if !claims.ExpiresAt.IsZero() {
		exp := claims.ExpiresAt.UTC()
		status.ExpiresAt = &exp
		status.Expired = now.After(exp)
	}
	return status
}
