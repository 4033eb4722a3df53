// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for MemberDocs.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: sheets_endpoint_url, data_dir, etc.
//   - Environment variables: MEMBERDOCS_SHEETS_ENDPOINT_URL, MEMBERDOCS_DATA_DIR, etc.
//   - Command-line flags: --sheets_endpoint_url, --data_dir, etc.
var appConfigKeys = []config.AppKey{
	{Name: "sheets_endpoint_url", Default: "", Desc: "Sheets backend web app URL (blank starts offline)"},
	{Name: "offline_override", Default: false, Desc: "Force offline mode even when an endpoint is configured"},

	{Name: "data_dir", Default: "./data/memberdocs", Desc: "Directory for the local fallback store"},

	{Name: "overdue_grace_days", Default: 30, Desc: "Days after registration before missing documents count as overdue"},
	{Name: "overdue_debounce", Default: "2s", Desc: "Quiet period between collection changes and an overdue scan"},

	{Name: "notification_cap", Default: 50, Desc: "Maximum retained operator notifications"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MEMBERDOCS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		SheetsEndpointURL: appValues.String("sheets_endpoint_url"),
		OfflineOverride:   appValues.Bool("offline_override"),

		DataDir: appValues.String("data_dir"),

		OverdueGraceDays: appValues.Int("overdue_grace_days"),
		OverdueDebounce:  appValues.Duration("overdue_debounce", 2*time.Second),

		NotificationCap: appValues.Int("notification_cap"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The endpoint URL is checked here so a typo fails startup instead of
// silently sending the service offline.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.SheetsEndpointURL != "" {
		u, err := url.Parse(appCfg.SheetsEndpointURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			logger.Error("invalid sheets endpoint URL", zap.String("url", appCfg.SheetsEndpointURL))
			return fmt.Errorf("sheets_endpoint_url must be an absolute http(s) URL")
		}
	}
	if appCfg.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if appCfg.OverdueGraceDays <= 0 {
		return fmt.Errorf("overdue_grace_days must be positive")
	}
	return nil
}
