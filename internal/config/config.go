// Package config resolves toolshed settings from viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/Veraticus/toolshed/internal/common"
	"github.com/Veraticus/toolshed/internal/gateway"
)

// EnvPrefix is prepended to every environment override, e.g. TOOLSHED_API_BASE_URL.
const EnvPrefix = "TOOLSHED"

// apiURLEnv is a shorthand accepted when api.base_url is not configured.
const apiURLEnv = "TOOLSHED_API_URL"

// Keys.
const (
	KeyAPIBaseURL    = "api.base_url"
	KeyAPITimeout    = "api.timeout"
	KeyAPIMaxRetries = "api.max_retries"
	KeyDatabasePath  = "database.path"
	KeyLogLevel      = "logging.level"
	KeyLogFormat     = "logging.format"
)

// Settings is the resolved configuration of one run.
type Settings struct {
	DatabasePath string
	LogLevel     string
	LogFormat    string
	API          gateway.Config
}

// SetDefaults registers the built-in values on v.
func SetDefaults(v *viper.Viper) {
	api := gateway.DefaultConfig()
	v.SetDefault(KeyAPIBaseURL, api.BaseURL)
	v.SetDefault(KeyAPITimeout, api.Timeout.String())
	v.SetDefault(KeyAPIMaxRetries, api.MaxRetries)
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath())
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// BindEnv makes every key overridable through TOOLSHED_* variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadAPIConfig reads the gateway settings. The viper value wins, then
// TOOLSHED_API_URL, then the default.
func LoadAPIConfig(v *viper.Viper) (gateway.Config, error) {
	cfg := gateway.DefaultConfig()

	if !v.IsSet(KeyAPIBaseURL) || v.GetString(KeyAPIBaseURL) == cfg.BaseURL {
		if env := os.Getenv(apiURLEnv); env != "" {
			v.Set(KeyAPIBaseURL, env)
		}
	}
	cfg.BaseURL = strings.TrimSpace(v.GetString(KeyAPIBaseURL))
	if cfg.BaseURL == "" {
		return gateway.Config{}, fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyAPIBaseURL)
	}

	timeout, err := cast.ToDurationE(v.Get(KeyAPITimeout))
	if err != nil || timeout <= 0 {
		return gateway.Config{}, fmt.Errorf("%w: %s must be a positive duration, got %v", common.ErrInvalidConfig, KeyAPITimeout, v.Get(KeyAPITimeout))
	}
	cfg.Timeout = timeout

	retries, err := cast.ToIntE(v.Get(KeyAPIMaxRetries))
	if err != nil || retries < 1 {
		return gateway.Config{}, fmt.Errorf("%w: %s must be at least 1, got %v", common.ErrInvalidConfig, KeyAPIMaxRetries, v.Get(KeyAPIMaxRetries))
	}
	cfg.MaxRetries = retries

	return cfg, nil
}

// Load resolves every setting from v.
func Load(v *viper.Viper) (Settings, error) {
	api, err := LoadAPIConfig(v)
	if err != nil {
		return Settings{}, err
	}

	dbPath := ExpandPath(v.GetString(KeyDatabasePath))
	if dbPath == "" {
		return Settings{}, fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}

	level := v.GetString(KeyLogLevel)
	if _, err := common.ParseLevel(level); err != nil {
		return Settings{}, err
	}

	return Settings{
		API:          api,
		DatabasePath: dbPath,
		LogLevel:     level,
		LogFormat:    v.GetString(KeyLogFormat),
	}, nil
}

// DefaultDatabasePath is the credential database under the XDG data directory.
func DefaultDatabasePath() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		base = filepath.Join("~", ".local", "share")
	}
	return filepath.Join(base, "toolshed", "toolshed.db")
}

// ExpandPath expands a leading ~ and $VAR references.
func ExpandPath(path string) string {
	switch {
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}
