// internal/app/features/members/create.go
package members

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/app/features/apierr"
	"github.com/coopstack/memberdocs/internal/app/policy/memberpolicy"
	"github.com/coopstack/memberdocs/internal/app/system/authz"
)

// HandleCreate serves POST /members. The member id is assigned by the
// service; the new record starts with an all-false checklist for its
// category.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
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

	actor := authz.ActorName(r)
	m, err := h.Registry.Add(r.Context(), actor, name, cat, regDate, issuer)
	if err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	h.Log.Info("member created",
		zap.String("member_id", m.ID),
		zap.String("category", string(m.Category)),
		zap.String("actor", actor))
	apierr.JSON(w, http.StatusCreated, m)
}
