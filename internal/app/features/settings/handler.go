// internal/app/features/settings/handler.go

// Package settings manages the service's operating mode: the remote backend
// endpoint, the offline override, and local-data maintenance
// (backup/restore/clear). Mutations are admin-only.
package settings

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/app/features/apierr"
	"github.com/coopstack/memberdocs/internal/app/policy/memberpolicy"
	"github.com/coopstack/memberdocs/internal/app/registry"
	"github.com/coopstack/memberdocs/internal/app/system/authz"
	"github.com/coopstack/memberdocs/internal/domain/models"
)

type Handler struct {
	Registry *registry.Registry
	Log      *zap.Logger
}

func NewHandler(reg *registry.Registry, logger *zap.Logger) *Handler {
	return &Handler{Registry: reg, Log: logger}
}

type settingsView struct {
	EndpointURL     string `json:"endpointUrl"`
	OfflineOverride bool   `json:"offlineOverride"`
	Online          bool   `json:"online"`
}

// HandleGet serves GET /settings.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if !memberpolicy.CanView(r) {
		apierr.Unauthorized(w)
		return
	}
	apierr.JSON(w, http.StatusOK, settingsView{
		EndpointURL:     h.Registry.EndpointURL(),
		OfflineOverride: h.Registry.OfflineOverride(),
		Online:          h.Registry.Online(),
	})
}

// HandleSetEndpoint serves PUT /settings/endpoint. Saving a non-empty URL
// leaves offline mode and triggers the one full reload that overwrites the
// collection; a reload failure keeps the endpoint configured and is
// reported for retry.
func (h *Handler) HandleSetEndpoint(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
		return
	}
	raw := strings.TrimSpace(req.URL)
	if raw != "" {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			apierr.BadRequest(w, "endpoint must be an absolute http(s) URL")
			return
		}
	}

	h.Log.Info("endpoint changed",
		zap.String("actor", authz.ActorName(r)),
		zap.Bool("cleared", raw == ""))
	if err := h.Registry.SetEndpoint(r.Context(), raw); err != nil {
		apierr.Upstream(w, "endpoint saved, but loading member data failed: "+err.Error())
		return
	}
	h.HandleGet(w, r)
}

// HandleSetOffline serves PUT /settings/offline. Clearing the override while
// an endpoint is configured reloads from remote.
func (h *Handler) HandleSetOffline(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req struct {
		Offline bool `json:"offline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
		return
	}

	h.Log.Info("offline override changed",
		zap.Bool("offline", req.Offline),
		zap.String("actor", authz.ActorName(r)))
	if err := h.Registry.SetOffline(r.Context(), req.Offline); err != nil {
		apierr.Upstream(w, "offline mode changed, but loading member data failed: "+err.Error())
		return
	}
	h.HandleGet(w, r)
}

// HandleBackup serves GET /settings/backup: the full collection as a JSON
// download.
func (h *Handler) HandleBackup(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="memberdocs-backup.json"`)
	apierr.JSON(w, http.StatusOK, h.Registry.Members())
}

// HandleRestore serves POST /settings/restore: replaces the collection with
// the uploaded backup. The restore is local-only; it does not write to the
// remote backend.
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var members []models.Member
	if err := json.NewDecoder(r.Body).Decode(&members); err != nil {
		apierr.BadRequest(w, "backup file must be a JSON array of member records")
		return
	}

	actor := authz.ActorName(r)
	n := h.Registry.ReplaceAll(actor, members)
	h.Log.Info("collection restored",
		zap.Int("members", n),
		zap.String("actor", actor))
	apierr.JSON(w, http.StatusOK, map[string]int{"restored": n})
}

// HandleClear serves POST /settings/clear: wipes the collection and the
// persisted local snapshot.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	actor := authz.ActorName(r)
	h.Registry.ClearAll(actor)
	h.Log.Warn("local member data cleared", zap.String("actor", actor))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !memberpolicy.CanView(r) {
		apierr.Unauthorized(w)
		return false
	}
	if !memberpolicy.CanManageSettings(r) {
		apierr.Forbidden(w)
		return false
	}
	return true
}
