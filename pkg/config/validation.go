package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/CliForge/pinterest-ads-cli/internal/errs"
	"github.com/CliForge/pinterest-ads-cli/pkg/auth/storage"
)

// OutputFormats are the accepted values of the output key.
var OutputFormats = []string{"json", "yaml", "table"}

var storageBackends = []string{
	string(storage.BackendKeyring),
	string(storage.BackendFile),
	string(storage.BackendMemory),
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid configuration:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Unwrap classifies validation failures as configuration errors.
func (e ValidationErrors) Unwrap() error {
	return errs.ErrConfiguration
}

// Validator handles configuration validation.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate checks a loaded configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.errors = make(ValidationErrors, 0)

	if cfg.BaseURL != "" && !v.isValidURL(cfg.BaseURL) {
		v.addError(KeyBaseURL, "must be an absolute http(s) URL")
	}
	if cfg.Timeout < 0 {
		v.addError(KeyTimeout, "must not be negative")
	}
	if !contains(OutputFormats, cfg.Output) {
		v.addError(KeyOutput, fmt.Sprintf("must be one of: %s", strings.Join(OutputFormats, ", ")))
	}
	if cfg.TokenStorage != "" && !contains(storageBackends, cfg.TokenStorage) {
		v.addError(KeyTokenStorage, fmt.Sprintf("must be one of: %s", strings.Join(storageBackends, ", ")))
	}
	if cfg.TokenStorage == string(storage.BackendKeyring) && cfg.KeyringService == "" {
		v.addError(KeyKeyringService, "is required for keyring token storage")
	}

	if len(v.errors) > 0 {
		return v.errors
	}
	return nil
}

// Helper methods

func (v *Validator) addError(field, message string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

func (v *Validator) isValidURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
