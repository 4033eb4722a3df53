// internal/app/system/authz/authz.go

// Package authz extracts the acting user's identity from request headers.
// Authentication itself lives in the front proxy; this service trusts the
// X-Acting-User and X-Acting-Role headers it forwards.
package authz

import (
	"net/http"
	"strings"
)

// Request headers carrying the acting identity.
const (
	HeaderActingUser = "X-Acting-User"
	HeaderActingRole = "X-Acting-Role"
)

// Roles the policy layer distinguishes.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// UserCtx returns the acting user's role (lowercased), display name, and a
// found flag. If no identity headers are present it returns "visitor", "",
// false, so ok=true always means a named actor.
func UserCtx(r *http.Request) (role string, name string, ok bool) {
	name = strings.TrimSpace(r.Header.Get(HeaderActingUser))
	if name == "" {
		return "visitor", "", false
	}
	role = strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderActingRole)))
	if role == "" {
		role = RoleStaff
	}
	return role, name, true
}

// IsAdmin reports whether the request carries an admin identity.
func IsAdmin(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && role == RoleAdmin
}

// ActorName returns the acting user's name, or "" when anonymous.
func ActorName(r *http.Request) string {
	_, name, _ := UserCtx(r)
	return name
}
