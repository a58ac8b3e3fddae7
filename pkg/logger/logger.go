package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New builds the process logger. Production mode emits JSON at info level,
// everything else gets the colored development encoder at debug level.
func New(appEnv string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(appEnv) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}
