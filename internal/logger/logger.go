package logger

import (
	"context"

	"go-gamifier/internal/config"
	"go-gamifier/internal/database"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewLogger builds the console logger and tees every entry into the Mongo "logs" collection.
func NewLogger(lc fx.Lifecycle, cfg *config.Config, mongodb *database.MongodbDB) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Environment == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Caller function name ends up in the stored log record.
	zapConfig.EncoderConfig.FunctionKey = "func"

	baseLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	dbWriter := NewDBLogWriter(mongodb, cfg)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			dbWriter.Close()
			return baseLogger.Sync()
		},
	})

	finalCore := NewDBCore(baseLogger.Core(), dbWriter)
	return zap.New(finalCore, zap.AddCaller()), nil
}
