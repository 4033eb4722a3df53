// Package memberpolicy provides authorization policies for member records.
//
// Authorization rules:
//   - Any named actor can view members, edit details, and update document
//     checklists.
//   - Only admins can delete members, run bulk imports, or manage the
//     service settings (endpoint, offline override, backup/restore/clear).
//   - Anonymous requests cannot do anything.
package memberpolicy

import (
	"net/http"

	"github.com/coopstack/memberdocs/internal/app/system/authz"
)

// CanView reports whether the current actor can read member records.
func CanView(r *http.Request) bool {
	_, _, ok := authz.UserCtx(r)
	return ok
}

// CanEdit reports whether the current actor can create members, edit member
// details, or update document checklists.
func CanEdit(r *http.Request) bool {
	_, _, ok := authz.UserCtx(r)
	return ok
}

// CanDelete reports whether the current actor can delete member records.
// Deletes are destructive on the remote backend, so they are admin-only.
func CanDelete(r *http.Request) bool {
	return authz.IsAdmin(r)
}

// CanImport reports whether the current actor can run a bulk import.
func CanImport(r *http.Request) bool {
	return authz.IsAdmin(r)
}

// CanManageSettings reports whether the current actor can change the backend
// endpoint, toggle offline mode, or run backup/restore/clear operations.
func CanManageSettings(r *http.Request) bool {
	return authz.IsAdmin(r)
}
