// internal/app/bootstrap/connectdb.go
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/app/registry"
	"github.com/coopstack/memberdocs/internal/app/store/local"
)

// ConnectDB opens the local fallback store and builds the member registry on
// top of it. There is no remote connection to establish here: the sheets
// backend is contacted lazily per request, and an unreachable backend is a
// working (offline) state rather than a startup failure.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	if err := os.MkdirAll(appCfg.DataDir, 0o755); err != nil {
		return DBDeps{}, fmt.Errorf("creating data dir %s: %w", appCfg.DataDir, err)
	}

	store, err := local.Open(appCfg.DataDir)
	if err != nil {
		return DBDeps{}, fmt.Errorf("opening local store in %s: %w", appCfg.DataDir, err)
	}
	logger.Info("local store opened", zap.String("dir", appCfg.DataDir))

	reg := registry.New(store, registry.Config{
		EndpointURL:     appCfg.SheetsEndpointURL,
		OfflineOverride: appCfg.OfflineOverride,
		GraceDays:       appCfg.OverdueGraceDays,
		Debounce:        appCfg.OverdueDebounce,
		NotificationCap: appCfg.NotificationCap,
	}, logger)

	return DBDeps{Local: store, Registry: reg}, nil
}
