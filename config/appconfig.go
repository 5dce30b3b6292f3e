// config/appconfig.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// AppKey defines a configuration key for a command.
// Commands register their keys using this type, and Load handles reading
// them from config files, environment variables, and command-line flags.
type AppKey struct {
	// Name is the key name (e.g., "email_smtp_server").
	// This is used as-is for config files and CLI flags.
	// For env vars, it's uppercased and prefixed when a prefix is given
	// (e.g., EMAIL_SMTP_SERVER with no prefix, PIPEKIT_LINT_STRICT with "PIPEKIT_LINT").
	Name string

	// Default is the default value if not set elsewhere.
	// Supported types: string, int, int64, bool, []string.
	Default any

	// Desc is a short description for --help output.
	Desc string

	// Secret keeps the value out of log output.
	Secret bool
}

// AppConfigValues holds the loaded app configuration values.
// Keys are the AppKey.Name values; values are coerced to the type of the
// key's Default.
type AppConfigValues map[string]any

// String returns a string value or empty string if not found/wrong type.
func (a AppConfigValues) String(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// Int returns an int value or 0 if not found/wrong type.
func (a AppConfigValues) Int(key string) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

// Int64 returns an int64 value or 0 if not found/wrong type.
func (a AppConfigValues) Int64(key string) int64 {
	switch v := a[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// Bool returns a bool value or false if not found/wrong type.
func (a AppConfigValues) Bool(key string) bool {
	if v, ok := a[key].(bool); ok {
		return v
	}
	return false
}

// StringSlice returns a []string value or nil if not found/wrong type.
func (a AppConfigValues) StringSlice(key string) []string {
	if v, ok := a[key].([]string); ok {
		return v
	}
	return nil
}

// Duration parses a duration value from the config.
// Accepts:
//   - Duration strings: "10m", "1h30m", "90s", "2h"
//   - Numeric values: interpreted as seconds (e.g., 600 = 10 minutes)
//   - Plain numeric strings: "600" = 600 seconds
//
// Returns def if the key is not found, empty, or invalid.
func (a AppConfigValues) Duration(key string, def time.Duration) time.Duration {
	raw := a[key]
	if raw == nil {
		return def
	}
	dur, err := parseDurationFlexible(raw, def)
	if err != nil {
		return def
	}
	return dur
}

// RegisterAppFlags registers command-line flags for app config keys on fs.
// Must be called before fs is parsed.
func RegisterAppFlags(fs *pflag.FlagSet, keys []AppKey) error {
	for _, key := range keys {
		if fs.Lookup(key.Name) != nil {
			return fmt.Errorf("config key %q conflicts with existing flag", key.Name)
		}

		switch d := key.Default.(type) {
		case string:
			fs.String(key.Name, d, key.Desc)
		case int:
			fs.Int(key.Name, d, key.Desc)
		case int64:
			fs.Int64(key.Name, d, key.Desc)
		case bool:
			fs.Bool(key.Name, d, key.Desc)
		case []string:
			fs.StringSlice(key.Name, d, key.Desc)
		default:
			return fmt.Errorf("config key %q has unsupported default type %T", key.Name, key.Default)
		}
	}
	return nil
}

// loadAppConfig loads app-specific configuration using the same precedence
// as the core config: flags > env > config files > defaults.
//
// Config file values are read from v, which already holds the merged files.
func loadAppConfig(logger *zap.Logger, v *viper.Viper, fs *pflag.FlagSet, envPrefix string, keys []AppKey) (AppConfigValues, error) {
	if len(keys) == 0 {
		return make(AppConfigValues), nil
	}

	appV := viper.New()
	if envPrefix != "" {
		appV.SetEnvPrefix(envPrefix)
	}
	appV.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	appV.AutomaticEnv()

	// Config file values go in as the config layer so env and flags still win.
	fileVals := make(map[string]any)
	for _, key := range keys {
		appV.SetDefault(key.Name, key.Default)
		_ = appV.BindEnv(key.Name)

		if v.InConfig(key.Name) {
			fileVals[key.Name] = v.Get(key.Name)
		}

		if f := fs.Lookup(key.Name); f != nil && f.Changed {
			if err := appV.BindPFlag(key.Name, f); err != nil {
				return nil, fmt.Errorf("bind flag %q: %w", key.Name, err)
			}
		}
	}
	if len(fileVals) > 0 {
		if err := appV.MergeConfigMap(fileVals); err != nil {
			return nil, fmt.Errorf("merge app config: %w", err)
		}
	}

	// Env values arrive as strings; coerce to the type of the default.
	result := make(AppConfigValues, len(keys))
	for _, key := range keys {
		switch key.Default.(type) {
		case int:
			result[key.Name] = appV.GetInt(key.Name)
		case int64:
			result[key.Name] = appV.GetInt64(key.Name)
		case bool:
			result[key.Name] = appV.GetBool(key.Name)
		case []string:
			result[key.Name] = appV.GetStringSlice(key.Name)
		default:
			result[key.Name] = appV.GetString(key.Name)
		}
	}

	fields := make([]zap.Field, 0, len(keys))
	for _, key := range keys {
		if key.Secret || looksSecret(key.Name) {
			fields = append(fields, zap.String(key.Name, "[REDACTED]"))
			continue
		}
		fields = append(fields, zap.Any(key.Name, result[key.Name]))
	}
	logger.Debug("app config loaded", fields...)

	return result, nil
}

func looksSecret(name string) bool {
	n := strings.ToLower(name)
	for _, s := range []string{"key", "secret", "pass", "token"} {
		if strings.Contains(n, s) {
			return true
		}
	}
	return false
}
