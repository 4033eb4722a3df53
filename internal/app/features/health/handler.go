// internal/app/features/health/handler.go
package health

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/app/registry"
	"github.com/coopstack/memberdocs/internal/app/store/local"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Local    *local.Store
	Registry *registry.Registry
	Log      *zap.Logger
}

// NewHandler constructs a health Handler with the local store and logger.
func NewHandler(store *local.Store, reg *registry.Registry, logger *zap.Logger) *Handler {
	return &Handler{
		Local:    store,
		Registry: reg,
		Log:      logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status     string `json:"status"`
	LocalStore string `json:"localStore"`
	Mode       string `json:"mode"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "localStore":"open", "mode":"online" }
//
// On local store failure: 503 and
//
//	{ "status":"error", "localStore":"unavailable", "message":"Local store unavailable", "error":"…"}
//
// The remote backend is deliberately not probed here: offline is a working
// mode, not a failure.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	mode := "offline"
	if h.Registry.Online() {
		mode = "online"
	}
	resp := healthResponse{
		Status:     "ok",
		LocalStore: "open",
		Mode:       mode,
	}

	if err := h.Local.Ping(); err != nil {
		h.Log.Error("health-check: local store ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.LocalStore = "unavailable"
		resp.Message = "Local store unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	_ = json.NewEncoder(w).Encode(resp)
}
