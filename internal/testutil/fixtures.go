// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/app/registry"
	"github.com/coopstack/memberdocs/internal/app/store/local"
	sheetsstore "github.com/coopstack/memberdocs/internal/app/store/sheets"
	"github.com/coopstack/memberdocs/internal/domain/checklist"
	"github.com/coopstack/memberdocs/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// WithActor sets the acting identity headers on a request.
func WithActor(r *http.Request, name, role string) *http.Request {
	r.Header.Set("X-Acting-User", name)
	if role != "" {
		r.Header.Set("X-Acting-Role", role)
	}
	return r
}

// OpenTempStore opens a local store in a per-test temp directory; it is
// closed with the test.
func OpenTempStore(t *testing.T) *local.Store {
	t.Helper()
	store, err := local.Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening temp local store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("closing temp local store: %v", err)
		}
	})
	return store
}

// NewRegistry builds a registry over a temp local store. endpointURL ""
// starts it offline. The overdue monitor is not started; tests drive scans
// through CheckOverdue directly.
func NewRegistry(t *testing.T, endpointURL string) *registry.Registry {
	t.Helper()
	return registry.New(OpenTempStore(t), registry.Config{
		EndpointURL: endpointURL,
	}, zap.NewNop())
}

// NewMember builds a member with sensible defaults for tests. The returned
// member is local-only; use SeedRemote to place it in a fake backend.
func NewMember(t *testing.T, id, name string, cat models.Category) models.Member {
	t.Helper()
	m := models.Member{
		ID:               models.NormalizeID(id),
		Name:             name,
		Category:         cat,
		RegistrationDate: time.Now().UTC().Truncate(24 * time.Hour),
		Documents:        checklist.NewDocuments(cat),
		Issuer:           "Registrar",
		Auditor:          "Tester",
		History:          []models.AuditLogEntry{},
	}
	m.MarkLocal()
	return m
}

// SeedRemote encodes members as wire rows into the fake backend, each under
// its category's partition.
func SeedRemote(t *testing.T, f *FakeSheets, members ...models.Member) {
	t.Helper()
	for _, m := range members {
		row, err := sheetsstore.EncodeRow(m)
		if err != nil {
			t.Fatalf("encoding member %s: %v", m.ID, err)
		}
		f.Seed(FakeRow{Sheet: m.Category.Sheet(), Data: row})
	}
}

// DecodeJSON unmarshals a response body into dest, failing the test on
// malformed JSON.
func DecodeJSON(t *testing.T, data []byte, dest any) {
	t.Helper()
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("decoding response JSON: %v\nbody: %s", err, data)
	}
}
