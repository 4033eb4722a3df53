// internal/app/features/notifications/handler.go

// Package notifications exposes the capped operator notification log.
package notifications

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/app/features/apierr"
	"github.com/coopstack/memberdocs/internal/app/policy/memberpolicy"
	"github.com/coopstack/memberdocs/internal/app/registry"
)

type Handler struct {
	Registry *registry.Registry
	Log      *zap.Logger
}

func NewHandler(reg *registry.Registry, logger *zap.Logger) *Handler {
	return &Handler{Registry: reg, Log: logger}
}

// HandleList serves GET /notifications, newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !memberpolicy.CanView(r) {
		apierr.Unauthorized(w)
		return
	}
	apierr.JSON(w, http.StatusOK, h.Registry.Notifications())
}

// HandleMarkRead serves POST /notifications/read. An empty or omitted id
// list marks every notification read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	if !memberpolicy.CanView(r) {
		apierr.Unauthorized(w)
		return
	}
	var req struct {
		IDs []string `json:"ids"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apierr.BadRequest(w, "invalid JSON body")
			return
		}
	}
	h.Registry.MarkNotificationsRead(req.IDs)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete serves DELETE /notifications/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !memberpolicy.CanView(r) {
		apierr.Unauthorized(w)
		return
	}
	h.Registry.DeleteNotification(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// HandleClear serves DELETE /notifications.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if !memberpolicy.CanView(r) {
		apierr.Unauthorized(w)
		return
	}
	h.Registry.ClearNotifications()
	w.WriteHeader(http.StatusNoContent)
}
