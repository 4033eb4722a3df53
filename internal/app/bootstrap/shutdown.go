// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down the overdue monitor and the local store.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Registry != nil {
		logger.Info("stopping overdue monitor")
		deps.Registry.Stop()
	}
	if deps.Local != nil {
		logger.Info("closing local store")
		if err := deps.Local.Close(); err != nil {
			logger.Error("local store close failed", zap.Error(err))
			return err
		}
	}
	return nil
}
