// logging/logging.go
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BootstrapLogger returns a console logger for early startup, before the
// configured level is known. It logs warnings and above to stderr so that
// config loading stays quiet on a healthy run.
func BootstrapLogger() *zap.Logger {
	core := zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stderr), zap.WarnLevel)
	return zap.New(core)
}

// ValidLogLevels lists all valid zap log levels for validation.
var ValidLogLevels = []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

// IsValidLogLevel checks if the given level string is a valid zap log level.
// Comparison is case-insensitive.
func IsValidLogLevel(level string) bool {
	level = strings.ToLower(level)
	for _, valid := range ValidLogLevels {
		if level == valid {
			return true
		}
	}
	return false
}

// BuildLogger constructs the command logger based on log level and env,
// writing to stderr so stdout stays free for command output.
// If env is "prod", it uses a JSON encoder; otherwise, a console encoder.
func BuildLogger(level, env string) (*zap.Logger, error) {
	return New(level, env, zapcore.Lock(os.Stderr))
}

// New is BuildLogger with an explicit sink.
func New(level, env string, out zapcore.WriteSyncer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("logging: invalid level %q; valid levels are %s",
			level, strings.Join(ValidLogLevels, ", "))
	}

	enc := consoleEncoder()
	if env == "prod" {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	}

	return zap.New(zapcore.NewCore(enc, out, lvl)), nil
}

// MustBuildLogger is a convenience for commands that cannot continue without
// a logger. On failure it writes to stderr and falls back to a bootstrap logger.
func MustBuildLogger(level, env string) *zap.Logger {
	logger, err := BuildLogger(level, env)
	if err != nil {
		_, _ = os.Stderr.WriteString("WARNING: " + err.Error() + "; using warn level\n")
		return BootstrapLogger()
	}
	return logger
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}
