// internal/app/features/members/list.go
package members

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/coopstack/memberdocs/internal/app/features/apierr"
	"github.com/coopstack/memberdocs/internal/app/policy/memberpolicy"
	"github.com/coopstack/memberdocs/internal/domain/checklist"
	"github.com/coopstack/memberdocs/internal/domain/models"
)

// Compliance filter values accepted by the list endpoint.
const (
	statusComplete = "complete"
	statusPending  = "pending"
)

// HandleList serves GET /members with optional filters:
//
//	?category=external_staff   canonical category value or display label
//	?status=complete|pending   checklist compliance
//	?q=somsak                  case-insensitive substring of id or name
//	?issuer=registrar          case-insensitive exact issuer match
//	?auditor=anan              case-insensitive exact auditor match
//
// Results are sorted by numeric member id.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !memberpolicy.CanView(r) {
		apierr.Unauthorized(w)
		return
	}

	var catFilter models.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		catFilter = models.Category(raw)
		if !catFilter.Valid() {
			parsed, ok := models.ParseCategoryLabel(raw)
			if !ok {
				apierr.BadRequest(w, "unrecognized category filter "+strconv.Quote(raw))
				return
			}
			catFilter = parsed
		}
	}
	status := r.URL.Query().Get("status")
	if status != "" && status != statusComplete && status != statusPending {
		apierr.BadRequest(w, "status filter must be complete or pending")
		return
	}
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	issuer := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("issuer")))
	auditor := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("auditor")))

	all := h.Registry.Members()
	filtered := make([]models.Member, 0, len(all))
	for _, m := range all {
		if catFilter != "" && m.Category != catFilter {
			continue
		}
		if status == statusComplete && !checklist.Compliant(m) {
			continue
		}
		if status == statusPending && checklist.Compliant(m) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(m.Name), query) &&
			!strings.Contains(m.ID, query) {
			continue
		}
		if issuer != "" && strings.ToLower(m.Issuer) != issuer {
			continue
		}
		if auditor != "" && strings.ToLower(m.Auditor) != auditor {
			continue
		}
		filtered = append(filtered, m)
	}

	sort.Slice(filtered, func(i, j int) bool {
		a, aerr := strconv.Atoi(filtered[i].ID)
		b, berr := strconv.Atoi(filtered[j].ID)
		if aerr != nil || berr != nil {
			return filtered[i].ID < filtered[j].ID
		}
		return a < b
	})

	apierr.JSON(w, http.StatusOK, listResponse{
		Members: filtered,
		Total:   len(all),
		Online:  h.Registry.Online(),
	})
}

// HandleNextID serves GET /members/next-id.
func (h *Handler) HandleNextID(w http.ResponseWriter, r *http.Request) {
	if !memberpolicy.CanView(r) {
		apierr.Unauthorized(w)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"id": h.Registry.NextID()})
}

// HandleReload serves POST /members/reload: re-reads the remote backend and
// replaces the collection. Surfaces the remote failure so the caller can
// offer a retry.
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if !memberpolicy.CanView(r) {
		apierr.Unauthorized(w)
		return
	}
	if !h.Registry.Online() {
		apierr.JSON(w, http.StatusOK, map[string]any{"online": false, "total": len(h.Registry.Members())})
		return
	}
	if err := h.Registry.Load(r.Context()); err != nil {
		apierr.Upstream(w, "loading member data failed: "+err.Error())
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]any{"online": true, "total": len(h.Registry.Members())})
}
