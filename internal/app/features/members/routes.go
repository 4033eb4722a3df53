// internal/app/features/members/routes.go
package members

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts all member routes under the path where the caller mounts it.
// Typically: r.Mount("/members", members.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/next-id", h.HandleNextID)
	r.Post("/reload", h.HandleReload)
	r.Post("/import", h.HandleImport)

	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}", h.HandleUpdateDetails)
	r.Put("/{id}/documents", h.HandleUpdateDocuments)
	r.Delete("/{id}", h.HandleDelete)
	r.Get("/{id}/history", h.HandleHistory)
	r.Get("/{id}/checklist", h.HandleChecklist)

	return r
}
