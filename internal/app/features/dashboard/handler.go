// internal/app/features/dashboard/handler.go

// Package dashboard serves collection-level statistics: totals per
// category and the compliance buckets the landing screen renders.
package dashboard

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/app/features/apierr"
	"github.com/coopstack/memberdocs/internal/app/policy/memberpolicy"
	"github.com/coopstack/memberdocs/internal/app/registry"
	"github.com/coopstack/memberdocs/internal/domain/checklist"
	"github.com/coopstack/memberdocs/internal/domain/models"
)

type Handler struct {
	Registry *registry.Registry
	Log      *zap.Logger
}

func NewHandler(reg *registry.Registry, logger *zap.Logger) *Handler {
	return &Handler{Registry: reg, Log: logger}
}

// stats is the dashboard payload. Every member lands in exactly one
// compliance bucket: complete, overdue (past the grace period and still
// incomplete), or pending (incomplete but inside the grace period).
type stats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"byCategory"`
	Complete   int            `json:"complete"`
	Pending    int            `json:"pending"`
	Overdue    int            `json:"overdue"`
	GraceDays  int            `json:"graceDays"`
	Online     bool           `json:"online"`
}

// HandleStats serves GET /dashboard/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if !memberpolicy.CanView(r) {
		apierr.Unauthorized(w)
		return
	}

	now := time.Now()
	s := stats{
		ByCategory: make(map[string]int, len(models.Categories)),
		GraceDays:  h.Registry.GraceDays(),
		Online:     h.Registry.Online(),
	}
	for _, cat := range models.Categories {
		s.ByCategory[string(cat)] = 0
	}

	for _, m := range h.Registry.Members() {
		s.Total++
		s.ByCategory[string(m.Category)]++
		switch {
		case checklist.Compliant(m):
			s.Complete++
		case h.Registry.Overdue(m, now):
			s.Overdue++
		default:
			s.Pending++
		}
	}

	apierr.JSON(w, http.StatusOK, s)
}
