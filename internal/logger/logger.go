// Package logger builds the process-wide zap logger. Handlers report
// request errors through their JSON responses; zap covers startup, the
// queue consumer and everything else outside the request path.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a named zap logger. In "prod" it emits JSON at info level;
// any other environment gets the human-readable development encoder at
// debug level.
func New(env, name string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "prod" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return log.Named(name), nil
}
