// internal/app/features/apierr/apierr.go

// Package apierr writes the JSON error envelope shared by every feature:
//
//	{"error": {"code": "not_found", "message": "member 00042 not found"}}
package apierr

import (
	"encoding/json"
	"net/http"
)

// Stable machine-readable error codes.
const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeUpstream     = "upstream_unavailable"
	CodeInternal     = "internal_error"
)

type envelope struct {
	Error body `json:"error"`
}

type body struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Write sends the envelope with the given status.
func Write(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: body{Code: code, Message: message}})
}

// BadRequest writes a 400 with the bad_request code.
func BadRequest(w http.ResponseWriter, message string) {
	Write(w, http.StatusBadRequest, CodeBadRequest, message)
}

// Unauthorized writes a 401 for requests with no acting identity.
func Unauthorized(w http.ResponseWriter) {
	Write(w, http.StatusUnauthorized, CodeUnauthorized, "an acting user identity is required")
}

// Forbidden writes a 403 for actors without the needed role.
func Forbidden(w http.ResponseWriter) {
	Write(w, http.StatusForbidden, CodeForbidden, "this operation requires the admin role")
}

// NotFound writes a 404 with the given message.
func NotFound(w http.ResponseWriter, message string) {
	Write(w, http.StatusNotFound, CodeNotFound, message)
}

// Upstream writes a 502 for remote backend failures surfaced to the caller.
func Upstream(w http.ResponseWriter, message string) {
	Write(w, http.StatusBadGateway, CodeUpstream, message)
}

// Internal writes a 500 without leaking details.
func Internal(w http.ResponseWriter) {
	Write(w, http.StatusInternalServerError, CodeInternal, "internal error")
}

// JSON writes any payload with the given status; the success-path twin of
// Write so handlers stay symmetric.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
