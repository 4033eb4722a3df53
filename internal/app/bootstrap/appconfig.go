// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
type AppConfig struct {
	// Remote sheets backend
	SheetsEndpointURL string // backend web app URL; blank starts the service offline
	OfflineOverride   bool   // force offline mode even when an endpoint is set

	// Local fallback store
	DataDir string // directory for the Badger database

	// Overdue document monitoring
	OverdueGraceDays int           // days after registration before missing documents count as overdue
	OverdueDebounce  time.Duration // quiet period between collection changes and an overdue scan

	// Operator notification log
	NotificationCap int // maximum retained notifications
}
