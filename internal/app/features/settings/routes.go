// internal/app/features/settings/routes.go
package settings

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the settings routes. Typically:
// r.Mount("/settings", settings.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleGet)
	r.Put("/endpoint", h.HandleSetEndpoint)
	r.Put("/offline", h.HandleSetOffline)
	r.Get("/backup", h.HandleBackup)
	r.Post("/restore", h.HandleRestore)
	r.Post("/clear", h.HandleClear)
	return r
}
