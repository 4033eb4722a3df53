// internal/app/features/members/upload.go
package members

import (
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/app/features/apierr"
	"github.com/coopstack/memberdocs/internal/app/policy/memberpolicy"
	"github.com/coopstack/memberdocs/internal/app/system/authz"
	"github.com/coopstack/memberdocs/internal/app/system/importutil"
)

const maxImportBytes = 10 << 20 // 10 MiB

// HandleImport serves POST /members/import. Admin-only. The batch arrives
// either as a multipart upload under the "file" field or as a raw CSV/TSV
// request body. The whole batch is pre-scanned first; valid rows are
// reconciled against the collection, rejects are reported per line and
// never block the rest of the batch.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	if !memberpolicy.CanView(r) {
		apierr.Unauthorized(w)
		return
	}
	if !memberpolicy.CanImport(r) {
		apierr.Forbidden(w)
		return
	}

	body, err := importBody(r)
	if err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}
	defer body.Close()

	result, err := importutil.ParseMembers(io.LimitReader(body, maxImportBytes))
	if err != nil {
		apierr.BadRequest(w, "unreadable import file: "+err.Error())
		return
	}
	if result.Scanned == 0 {
		apierr.BadRequest(w, "import file contains no data rows")
		return
	}
	if len(result.Rows) == 0 {
		// Every row was rejected; report the reasons without touching the
		// collection.
		apierr.JSON(w, http.StatusUnprocessableEntity, importResponse{
			Scanned:  result.Scanned,
			Rejected: result.Errors,
		})
		return
	}

	actor := authz.ActorName(r)
	sum, err := h.Registry.Import(r.Context(), actor, result.Rows)
	if err != nil {
		apierr.Internal(w)
		return
	}

	h.Log.Info("import finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("added", sum.Added),
		zap.Int("updated", sum.Updated),
		zap.Int("rejected", len(result.Errors)),
		zap.String("actor", actor))

	rejected := result.Errors
	if rejected == nil {
		rejected = []importutil.RowError{}
	}
	apierr.JSON(w, http.StatusOK, importResponse{
		Scanned:  result.Scanned,
		Added:    sum.Added,
		Updated:  sum.Updated,
		Rejected: rejected,
	})
}

// importBody locates the batch payload: the "file" part of a multipart
// form, or the raw request body for text uploads.
func importBody(r *http.Request) (io.ReadCloser, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			return nil, err
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return r.Body, nil
}
