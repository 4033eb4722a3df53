// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	dashboardfeature "github.com/coopstack/memberdocs/internal/app/features/dashboard"
	healthfeature "github.com/coopstack/memberdocs/internal/app/features/health"
	membersfeature "github.com/coopstack/memberdocs/internal/app/features/members"
	notificationsfeature "github.com/coopstack/memberdocs/internal/app/features/notifications"
	settingsfeature "github.com/coopstack/memberdocs/internal/app/features/settings"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, the local store, and any Startup
// hooks have completed. Feature routers are mounted per area: members,
// dashboard, notifications, settings, and health. Identity arrives on each
// request via the X-Acting-User / X-Acting-Role headers set by the front
// proxy, so there is no session middleware here.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	r.Mount("/members", membersfeature.Routes(membersfeature.NewHandler(deps.Registry, logger)))
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardfeature.NewHandler(deps.Registry, logger)))
	r.Mount("/notifications", notificationsfeature.Routes(notificationsfeature.NewHandler(deps.Registry, logger)))
	r.Mount("/settings", settingsfeature.Routes(settingsfeature.NewHandler(deps.Registry, logger)))
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.Local, deps.Registry, logger)))

	return r, nil
}
