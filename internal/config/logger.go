package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger builds a zap logger for the given environment. Production
// gets JSON output, everything else gets the console encoder. An
// unrecognized level falls back to the environment default.
func InitLogger(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	if parsed, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}

	return cfg.Build()
}

// MustInitLogger builds a logger or panics. Used during startup where
// there is no logger to report the failure with.
func MustInitLogger(env, level string) *zap.Logger {
	logger, err := InitLogger(env, level)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger
}
