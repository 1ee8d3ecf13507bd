package config

import (
	"strings"

	"github.com/CliForge/pinterest-ads-cli/pkg/auth"
	"github.com/CliForge/pinterest-ads-cli/pkg/auth/storage"
	"github.com/CliForge/pinterest-ads-cli/pkg/commandtree"
)

// DefaultBaseURL is used when neither the configuration nor the command tree
// names one.
const DefaultBaseURL = "https://api.pinterest.com/v5"

// MergeTree fills settings the configuration leaves empty from the command
// tree.
func (c *Config) MergeTree(tree *commandtree.CommandTree) {
	if c.BaseURL == "" && tree != nil {
		c.BaseURL = tree.BaseURL
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

// Credentials returns the configured credential slots. The access token may
// still be replaced by one from token storage.
func (c *Config) Credentials() auth.Credentials {
	return auth.Credentials{
		AccessToken:     c.AccessToken,
		ClientID:        c.ClientID,
		ClientSecret:    c.ClientSecret,
		ConversionToken: c.ConversionToken,
	}
}

// PathDefaults returns the configured path parameter defaults.
func (c *Config) PathDefaults() map[string]string {
	defaults := map[string]string{}
	if c.AdAccountID != "" {
		defaults["ad_account_id"] = c.AdAccountID
	}
	return defaults
}

// Storage returns the token storage settings.
func (c *Config) Storage() storage.Config {
	return storage.Config{
		Backend: storage.Backend(c.TokenStorage),
		Service: c.KeyringService,
		Path:    c.TokenFile,
	}
}
