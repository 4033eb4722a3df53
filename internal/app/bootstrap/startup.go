// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// initialLoadTimeout bounds the startup READ_ALL; a slow backend must not
// delay serving, since the registry already holds the persisted snapshot.
const initialLoadTimeout = 45 * time.Second

// Startup runs one-time application initialization after the local store and
// registry are built, but before the HTTP handler is built. The overdue
// monitor starts here, and the initial remote load runs in the background so
// an unreachable backend never blocks startup.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	deps.Registry.StartOverdueMonitor()

	if deps.Registry.Online() {
		go func() {
			loadCtx, cancel := context.WithTimeout(context.Background(), initialLoadTimeout)
			defer cancel()
			if err := deps.Registry.Load(loadCtx); err != nil {
				logger.Warn("initial remote load failed, serving persisted snapshot", zap.Error(err))
			}
		}()
	} else {
		logger.Info("starting offline", zap.Bool("override", appCfg.OfflineOverride))
	}

	return nil
}
