// internal/app/features/members/viewedit.go
package members

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/app/features/apierr"
	"github.com/coopstack/memberdocs/internal/app/policy/memberpolicy"
	"github.com/coopstack/memberdocs/internal/app/registry"
	"github.com/coopstack/memberdocs/internal/app/system/authz"
	"github.com/coopstack/memberdocs/internal/domain/checklist"
	"github.com/coopstack/memberdocs/internal/domain/models"
)

// HandleGet serves GET /members/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if !memberpolicy.CanView(r) {
		apierr.Unauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")
	m, ok := h.Registry.Get(id)
	if !ok {
		apierr.NotFound(w, "member "+models.NormalizeID(id)+" not found")
		return
	}
	apierr.JSON(w, http.StatusOK, m)
}

// HandleUpdateDetails serves PUT /members/{id}. Changing the category resets
// the document checklist and clears the audit history; the record moves to
// the new category's partition.
func (h *Handler) HandleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	if !memberpolicy.CanEdit(r) {
		apierr.Unauthorized(w)
		return
	}

	var req detailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
		return
	}
	name, cat, regDate, issuer, err := req.parse()
	if err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	actor := authz.ActorName(r)
	m, err := h.Registry.UpdateDetails(r.Context(), actor, id, name, cat, regDate, issuer)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			apierr.NotFound(w, "member "+models.NormalizeID(id)+" not found")
			return
		}
		apierr.BadRequest(w, err.Error())
		return
	}

	h.Log.Info("member details updated",
		zap.String("member_id", m.ID),
		zap.String("actor", actor))
	apierr.JSON(w, http.StatusOK, m)
}

// HandleUpdateDocuments serves PUT /members/{id}/documents. The submitted
// flag set replaces the member's documents wholesale; an audit entry is
// recorded only when something actually changed.
func (h *Handler) HandleUpdateDocuments(w http.ResponseWriter, r *http.Request) {
	if !memberpolicy.CanEdit(r) {
		apierr.Unauthorized(w)
		return
	}

	var req documentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid JSON body")
		return
	}
	if req.Documents == nil {
		apierr.BadRequest(w, "documents map is required")
		return
	}

	id := chi.URLParam(r, "id")
	actor := authz.ActorName(r)
	m, err := h.Registry.UpdateDocuments(r.Context(), actor, id, req.Documents)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			apierr.NotFound(w, "member "+models.NormalizeID(id)+" not found")
			return
		}
		apierr.BadRequest(w, err.Error())
		return
	}
	apierr.JSON(w, http.StatusOK, m)
}

// HandleDelete serves DELETE /members/{id}. Admin-only.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !memberpolicy.CanView(r) {
		apierr.Unauthorized(w)
		return
	}
	if !memberpolicy.CanDelete(r) {
		apierr.Forbidden(w)
		return
	}

	id := chi.URLParam(r, "id")
	actor := authz.ActorName(r)
	if err := h.Registry.Delete(r.Context(), actor, id); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			apierr.NotFound(w, "member "+models.NormalizeID(id)+" not found")
			return
		}
		apierr.Internal(w)
		return
	}

	h.Log.Info("member deleted",
		zap.String("member_id", models.NormalizeID(id)),
		zap.String("actor", actor))
	w.WriteHeader(http.StatusNoContent)
}

// HandleHistory serves GET /members/{id}/history: audit entries newest
// first.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if !memberpolicy.CanView(r) {
		apierr.Unauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")
	m, ok := h.Registry.Get(id)
	if !ok {
		apierr.NotFound(w, "member "+models.NormalizeID(id)+" not found")
		return
	}
	history := m.History
	if history == nil {
		history = []models.AuditLogEntry{}
	}
	apierr.JSON(w, http.StatusOK, history)
}

// HandleChecklist serves GET /members/{id}/checklist: the member's category
// checklist with current checked state, in canonical order.
func (h *Handler) HandleChecklist(w http.ResponseWriter, r *http.Request) {
	if !memberpolicy.CanView(r) {
		apierr.Unauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")
	m, ok := h.Registry.Get(id)
	if !ok {
		apierr.NotFound(w, "member "+models.NormalizeID(id)+" not found")
		return
	}

	full := checklist.Full(m.Category)
	items := make([]checklistItem, 0, len(full))
	for _, item := range full {
		items = append(items, checklistItem{
			Name:      item.Name,
			Mandatory: item.Mandatory,
			Checked:   m.Documents[item.Name],
		})
	}
	apierr.JSON(w, http.StatusOK, items)
}
