// Package config loads CLI settings from flags, environment and an optional
// YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration keys. Flags use the same names with '-' for '_'.
const (
	KeyBaseURL         = "base_url"
	KeyAccessToken     = "access_token"
	KeyClientID        = "client_id"
	KeyClientSecret    = "client_secret"
	KeyConversionToken = "conversion_token"
	KeyAdAccountID     = "ad_account_id"
	KeyTimeout         = "timeout"
	KeyCommandTree     = "command_tree"
	KeyOutput          = "output"
	KeyKeyringService  = "keyring_service"
	KeyTokenStorage    = "token_storage"
	KeyTokenFile       = "token_file"
	KeyDebug           = "debug"
)

// Keys lists every configuration key.
var Keys = []string{
	KeyBaseURL,
	KeyAccessToken,
	KeyClientID,
	KeyClientSecret,
	KeyConversionToken,
	KeyAdAccountID,
	KeyTimeout,
	KeyCommandTree,
	KeyOutput,
	KeyKeyringService,
	KeyTokenStorage,
	KeyTokenFile,
	KeyDebug,
}

// Config is the resolved configuration of one invocation.
type Config struct {
	BaseURL         string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	AccessToken     string `mapstructure:"access_token" yaml:"access_token,omitempty"`
	ClientID        string `mapstructure:"client_id" yaml:"client_id,omitempty"`
	ClientSecret    string `mapstructure:"client_secret" yaml:"client_secret,omitempty"`
	ConversionToken string `mapstructure:"conversion_token" yaml:"conversion_token,omitempty"`
	AdAccountID     string `mapstructure:"ad_account_id" yaml:"ad_account_id,omitempty"`
	// Timeout is the per-request timeout in seconds. Zero disables it.
	Timeout        int    `mapstructure:"timeout" yaml:"timeout,omitempty"`
	CommandTree    string `mapstructure:"command_tree" yaml:"command_tree,omitempty"`
	Output         string `mapstructure:"output" yaml:"output,omitempty"`
	KeyringService string `mapstructure:"keyring_service" yaml:"keyring_service,omitempty"`
	TokenStorage   string `mapstructure:"token_storage" yaml:"token_storage,omitempty"`
	TokenFile      string `mapstructure:"token_file" yaml:"token_file,omitempty"`
	Debug          bool   `mapstructure:"debug" yaml:"debug,omitempty"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" yaml:"-"`
}

// RequestTimeout returns Timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Loader reads configuration for one application.
type Loader struct {
	appName   string
	envPrefix string
}

// NewLoader creates a loader. Environment variables are read as
// <envPrefix>_<KEY>; an empty prefix is derived from appName.
func NewLoader(appName, envPrefix string) *Loader {
	if envPrefix == "" {
		envPrefix = strings.ToUpper(strings.ReplaceAll(appName, "-", "_"))
	}
	return &Loader{appName: appName, envPrefix: envPrefix}
}

// EnvPrefix returns the environment variable prefix.
func (l *Loader) EnvPrefix() string {
	return l.envPrefix
}

// ConfigPath returns the config file location: <PREFIX>_CONFIG when set,
// otherwise $XDG_CONFIG_HOME/<app>/config.yaml.
func (l *Loader) ConfigPath() string {
	if custom := os.Getenv(l.envPrefix + "_CONFIG"); custom != "" {
		return custom
	}
	return filepath.Join(xdg.ConfigHome, l.appName, "config.yaml")
}

// Load resolves the configuration. Precedence: changed flag > environment >
// config file > default. flags may be nil.
func (l *Loader) Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(l.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyOutput, "json")
	v.SetDefault(KeyTimeout, 0)
	v.SetDefault(KeyKeyringService, l.appName)
	v.SetDefault(KeyTokenStorage, "keyring")
	v.SetDefault(KeyDebug, false)

	// AutomaticEnv only applies to keys viper already knows about.
	for _, key := range Keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if flags != nil {
		for _, key := range Keys {
			if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", f.Name, err)
				}
			}
		}
	}

	path := l.ConfigPath()
	file := ""
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		file = path
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.File = file

	if err := NewValidator().Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
