// Package auth selects and applies credentials for API requests.
//
// Every operation carries security requirements copied from the API
// description. Select maps them onto the configured secrets:
//
//   - a requirement naming the "basic" scheme uses the OAuth client ID and
//     secret as HTTP Basic credentials;
//   - otherwise, a requirement naming "conversion_token" uses the conversion
//     token as a bearer token, when one is configured;
//   - otherwise the OAuth access token is sent as a bearer token.
//
// # Credential Sourcing
//
// The access token is resolved from the --access-token flag, then the
// PINTEREST_ACCESS_TOKEN environment variable, then the config file, then the
// OS keyring (see TokenResolver). The other slots come from flags, the
// environment or the config file only.
//
// # Example
//
//	cred, err := auth.Select(op.Security, creds)
//	if err != nil {
//	    return err
//	}
//	if err := cred.Apply(req); err != nil {
//	    return err
//	}
package auth

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/CliForge/pinterest-ads-cli/internal/errs"
	"golang.org/x/net/http/httpguts"
)

// Kind is how a credential is presented.
type Kind string

const (
	// KindBearer sends "Authorization: Bearer <token>".
	KindBearer Kind = "bearer"
	// KindBasic sends "Authorization: Basic base64(user:pass)".
	KindBasic Kind = "basic"
)

// Credential is a bearer token or a basic username/password pair.
type Credential struct {
	Kind     Kind
	Token    string
	Username string
	Password string
}

// Bearer returns a bearer credential.
func Bearer(token string) Credential {
	return Credential{Kind: KindBearer, Token: token}
}

// Basic returns a basic credential.
func Basic(username, password string) Credential {
	return Credential{Kind: KindBasic, Username: username, Password: password}
}

// Header returns the Authorization header value.
func (c Credential) Header() (string, error) {
	switch c.Kind {
	case KindBearer:
		value := "Bearer " + c.Token
		if !httpguts.ValidHeaderFieldValue(value) {
			return "", fmt.Errorf("%w: bearer token contains characters not allowed in a header", errs.ErrInvalidCredential)
		}
		return value, nil
	case KindBasic:
		raw := c.Username + ":" + c.Password
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw)), nil
	default:
		return "", fmt.Errorf("%w: unknown credential kind %q", errs.ErrInvalidCredential, c.Kind)
	}
}

// Apply sets the Authorization header on req.
func (c Credential) Apply(req *http.Request) error {
	value, err := c.Header()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", value)
	return nil
}

// String names the credential kind without revealing secrets.
func (c Credential) String() string {
	return string(c.Kind)
}
