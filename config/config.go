// config/config.go
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dalemusser/pipekit/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix is the environment prefix for core keys (PIPEKIT_ENV, PIPEKIT_LOG_LEVEL).
const EnvPrefix = "PIPEKIT"

// CoreConfig holds the settings shared by every pipekit command.
type CoreConfig struct {
	Env        string `mapstructure:"env"`       // "dev" | "prod"
	LogLevel   string `mapstructure:"log_level"` // debug, info, warn, error …
	ConfigFile string `mapstructure:"config"`    // explicit config file, optional
	EnvFile    string `mapstructure:"env_file"`  // dotenv file, default ".env"
}

// Dump returns a pretty JSON string of the config for debugging.
func (c CoreConfig) Dump() string {
	b, _ := json.MarshalIndent(c, "", "  ")
	return string(b)
}

// RegisterCoreFlags adds the core flags to fs. Call it once on the root
// command's persistent flag set.
func RegisterCoreFlags(fs *pflag.FlagSet) {
	fs.String("env", "dev", `Runtime environment "dev"|"prod"`)
	fs.String("log_level", "info", "Log level")
	fs.String("config", "", "Config file (yaml|yml|json|toml); default looks for ./config.*")
	fs.String("env_file", ".env", "Dotenv file loaded before reading the environment")
}

// Load merges defaults → config file → .env → env vars → explicit flags into
// one CoreConfig plus the values for the given app keys.
// Final precedence (highest wins): flags(explicit) > env > config > defaults.
//
// fs must already be parsed. appPrefix is the env prefix for app keys; an
// empty prefix maps a key straight to its upper-cased name.
func Load(logger *zap.Logger, fs *pflag.FlagSet, appPrefix string, keys []AppKey) (*CoreConfig, AppConfigValues, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// 0) Optionally load .env (real env still wins over .env)
	envFile := ".env"
	if f := fs.Lookup("env_file"); f != nil && f.Changed {
		envFile = f.Value.String()
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err == nil {
			logger.Debug("loaded env file", zap.String("file", envFile))
		}
	}

	// 1) Viper + env
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, k := range coreKeys() {
		_ = v.BindEnv(k)
	}

	// 2) Config file: explicit --config, otherwise optional ./config.*
	if err := mergeConfigFiles(logger, v, fs); err != nil {
		return nil, nil, err
	}

	// 3) Defaults (lowest precedence)
	setDefaults(v)

	// 4) Apply *explicit* flags (highest precedence)
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed && isCoreKey(f.Name) {
			_ = v.BindPFlag(f.Name, f)
		}
	})

	var cfg CoreConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unable to decode core config: %w", err)
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := validateCoreConfig(cfg); err != nil {
		return nil, nil, err
	}

	app, err := loadAppConfig(logger, v, fs, appPrefix, keys)
	if err != nil {
		return nil, nil, err
	}
	return &cfg, app, nil
}

func mergeConfigFiles(logger *zap.Logger, v *viper.Viper, fs *pflag.FlagSet) error {
	if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
		file := f.Value.String()
		b, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read config file %s: %w", file, err)
		}
		v.SetConfigType(strings.TrimPrefix(filepath.Ext(file), "."))
		if err := v.MergeConfig(bytes.NewReader(b)); err != nil {
			return fmt.Errorf("decode config file %s: %w", file, err)
		}
		logger.Debug("loaded config file", zap.String("file", file))
		return nil
	}

	for _, ext := range [...]string{"yaml", "yml", "json", "toml"} {
		file := "config." + ext
		if _, err := os.Stat(file); err != nil {
			continue
		}
		b, err := os.ReadFile(file)
		if err != nil {
			logger.Warn("cannot read config file", zap.String("file", file), zap.Error(err))
			continue
		}
		v.SetConfigType(ext)
		if err := v.MergeConfig(bytes.NewReader(b)); err != nil {
			logger.Warn("cannot decode config file", zap.String("file", file), zap.Error(err))
			continue
		}
		logger.Debug("loaded config file", zap.String("file", file))
	}
	return nil
}

func coreKeys() []string {
	return []string{"env", "log_level", "config", "env_file"}
}

func isCoreKey(name string) bool {
	for _, k := range coreKeys() {
		if k == name {
			return true
		}
	}
	return false
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("config", "")
	v.SetDefault("env_file", ".env")
}

func validateCoreConfig(cfg CoreConfig) error {
	var invalid []string

	if cfg.Env != "dev" && cfg.Env != "prod" {
		invalid = append(invalid, `env must be "dev" or "prod"`)
	}

	if !logging.IsValidLogLevel(cfg.LogLevel) {
		invalid = append(invalid, "log_level must be one of "+strings.Join(logging.ValidLogLevels, ", "))
	}

	if len(invalid) == 0 {
		return nil
	}
	return fmt.Errorf("core configuration errors: invalid: %s", strings.Join(invalid, ", "))
}
