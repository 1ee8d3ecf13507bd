package auth

import (
	"fmt"

	"github.com/CliForge/pinterest-ads-cli/internal/errs"
)

// Security scheme names with special handling.
const (
	SchemeBasic           = "basic"
	SchemeConversionToken = "conversion_token"
)

// Environment variables for each credential slot.
const (
	EnvAccessToken     = "PINTEREST_ACCESS_TOKEN"
	EnvClientID        = "PINTEREST_CLIENT_ID"
	EnvClientSecret    = "PINTEREST_CLIENT_SECRET"
	EnvConversionToken = "PINTEREST_CONVERSION_TOKEN"
)

// Credentials are the configured secrets. Empty strings are absent.
type Credentials struct {
	AccessToken     string
	ClientID        string
	ClientSecret    string
	ConversionToken string
}

// Select picks the credential for an operation's security requirements.
// Precedence is basic, then conversion token when configured, then the
// access token.
func Select(security []map[string][]string, creds Credentials) (Credential, error) {
	if requires(security, SchemeBasic) {
		return creds.basic()
	}
	if requires(security, SchemeConversionToken) && creds.ConversionToken != "" {
		return Bearer(creds.ConversionToken), nil
	}
	return creds.bearer()
}

// ForScheme returns the credential for an explicit scheme name: "bearer",
// "basic" or "conversion".
func ForScheme(scheme string, creds Credentials) (Credential, error) {
	switch scheme {
	case "bearer", "":
		return creds.bearer()
	case SchemeBasic:
		return creds.basic()
	case "conversion", SchemeConversionToken:
		if creds.ConversionToken == "" {
			return Credential{}, missing(EnvConversionToken)
		}
		return Bearer(creds.ConversionToken), nil
	default:
		return Credential{}, fmt.Errorf("%w: unknown auth scheme %q (want bearer, basic or conversion)", errs.ErrInput, scheme)
	}
}

func (c Credentials) bearer() (Credential, error) {
	if c.AccessToken == "" {
		return Credential{}, missing(EnvAccessToken)
	}
	return Bearer(c.AccessToken), nil
}

func (c Credentials) basic() (Credential, error) {
	if c.ClientID == "" {
		return Credential{}, missing(EnvClientID)
	}
	if c.ClientSecret == "" {
		return Credential{}, missing(EnvClientSecret)
	}
	return Basic(c.ClientID, c.ClientSecret), nil
}

func requires(security []map[string][]string, scheme string) bool {
	for _, req := range security {
		if _, ok := req[scheme]; ok {
			return true
		}
	}
	return false
}

func missing(envVar string) error {
	return fmt.Errorf("%w: %s", errs.ErrMissingCredential, envVar)
}
