// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the notification routes. Typically:
// r.Mount("/notifications", notifications.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleList)
	r.Post("/read", h.HandleMarkRead)
	r.Delete("/{id}", h.HandleDelete)
	r.Delete("/", h.HandleClear)
	return r
}
