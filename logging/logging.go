// Package logging builds the service's zap logger.
package logging

import (
	"github.com/warp/stockledger/config"
	"go.uber.org/zap"
)

// New returns a development console logger or a production JSON logger,
// depending on APP_ENV and LOGGER_ENCODING.
func New(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.IsDevelopment() {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}
	if cfg.Logger.Encoding == "json" || cfg.Logger.Encoding == "console" {
		zapConfig.Encoding = cfg.Logger.Encoding
	}

	level, err := zap.ParseAtomicLevel(cfg.Logger.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level
	zapConfig.DisableCaller = cfg.Logger.DisableCaller
	zapConfig.DisableStacktrace = cfg.Logger.DisableStacktrace

	zapConfig.InitialFields = map[string]interface{}{
		"service":     "stockledger",
		"environment": cfg.Server.AppEnv,
	}
	return zapConfig.Build()
}
