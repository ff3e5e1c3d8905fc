// Package logger builds the structured zap logger shared by all components.
package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger configured for the given environment.
// Development and local environments get debug level and caller stacks.
func New(env string) (*zap.Logger, error) {
	return buildConfig(env).Build()
}

// Must is New that falls back to a no-op logger instead of failing start-up.
func Must(env string) *zap.Logger {
	l, err := New(env)
	if err != nil {
		log.Printf("failed to build logger, falling back to nop: %v", err)
		return zap.NewNop()
	}
	return l
}

// Std adapts a zap logger to the standard library logger used by gorm.
func Std(l *zap.Logger) *log.Logger {
	return zap.NewStdLog(l.WithOptions(zap.AddCallerSkip(1)))
}

func buildConfig(env string) zap.Config {
	var cfg zap.Config
	if env == "development" || env == "local" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Encoding = "json"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}
