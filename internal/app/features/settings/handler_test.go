// internal/app/features/settings/handler_test.go
package settings_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/app/features/settings"
	"github.com/coopstack/memberdocs/internal/domain/models"
	"github.com/coopstack/memberdocs/internal/testutil"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	h := settings.NewHandler(testutil.NewRegistry(t, ""), zap.NewNop())
	return settings.Routes(h)
}

func do(t *testing.T, srv http.Handler, method, path string, body any, name, role string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if name != "" {
		req = testutil.WithActor(req, name, role)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestSettingsMutationsAreAdminOnly(t *testing.T) {
	srv := newServer(t)
	cases := []struct {
		method, path string
		body         any
	}{
		{"PUT", "/endpoint", map[string]string{"url": "https://example.com"}},
		{"PUT", "/offline", map[string]bool{"offline": true}},
		{"GET", "/backup", nil},
		{"POST", "/restore", []models.Member{}},
		{"POST", "/clear", nil},
	}
	for _, c := range cases {
		rec := do(t, srv, c.method, c.path, c.body, "Pim", "staff")
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s %s as staff returned %d, want 403", c.method, c.path, rec.Code)
		}
	}
}

func TestGetSettings(t *testing.T) {
	srv := newServer(t)
	rec := do(t, srv, "GET", "/", nil, "Pim", "staff")
	if rec.Code != http.StatusOK {
		t.Fatalf("get settings returned %d", rec.Code)
	}
	var view struct {
		EndpointURL     string `json:"endpointUrl"`
		OfflineOverride bool   `json:"offlineOverride"`
		Online          bool   `json:"online"`
	}
	testutil.DecodeJSON(t, rec.Body.Bytes(), &view)
	if view.EndpointURL != "" || view.Online {
		t.Fatalf("fresh registry settings: %+v", view)
	}
}

func TestSetEndpointLoadsCollection(t *testing.T) {
	fake := testutil.NewFakeSheets(t)
	testutil.SeedRemote(t, fake, testutil.NewMember(t, "1", "Somsak", models.CategoryCurrent))

	reg := testutil.NewRegistry(t, "")
	h := settings.NewHandler(reg, zap.NewNop())
	srv := settings.Routes(h)

	rec := do(t, srv, "PUT", "/endpoint", map[string]string{"url": fake.URL()}, "Anan", "admin")
	if rec.Code != http.StatusOK {
		t.Fatalf("set endpoint returned %d: %s", rec.Code, rec.Body.String())
	}
	if len(reg.Members()) != 1 {
		t.Fatalf("collection not loaded after endpoint change")
	}
	if !reg.Online() {
		t.Fatalf("registry offline after endpoint change")
	}
}

func TestSetEndpointRejectsBadURL(t *testing.T) {
	srv := newServer(t)
	rec := do(t, srv, "PUT", "/endpoint", map[string]string{"url": "not a url"}, "Anan", "admin")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad URL returned %d, want 400", rec.Code)
	}
}

func TestSetEndpointSurfacesLoadFailure(t *testing.T) {
	fake := testutil.NewFakeSheets(t)
	fake.FailAction("READ_ALL")

	reg := testutil.NewRegistry(t, "")
	srv := settings.Routes(settings.NewHandler(reg, zap.NewNop()))

	rec := do(t, srv, "PUT", "/endpoint", map[string]string{"url": fake.URL()}, "Anan", "admin")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("failed load returned %d, want 502", rec.Code)
	}
	// Endpoint stays configured for a later retry.
	if reg.EndpointURL() != fake.URL() {
		t.Fatalf("endpoint not kept after failed load")
	}
}

func TestBackupRestoreClear(t *testing.T) {
	reg := testutil.NewRegistry(t, "")
	srv := settings.Routes(settings.NewHandler(reg, zap.NewNop()))

	reg.ReplaceAll("seed", []models.Member{{ID: "1", Name: "Somsak", Category: models.CategoryCurrent}})

	rec := do(t, srv, "GET", "/backup", nil, "Anan", "admin")
	if rec.Code != http.StatusOK {
		t.Fatalf("backup returned %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd == "" {
		t.Fatalf("backup is not served as a download")
	}
	var dump []models.Member
	testutil.DecodeJSON(t, rec.Body.Bytes(), &dump)
	if len(dump) != 1 || dump[0].ID != "00001" {
		t.Fatalf("backup content: %+v", dump)
	}

	rec = do(t, srv, "POST", "/clear", nil, "Anan", "admin")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear returned %d", rec.Code)
	}
	if len(reg.Members()) != 0 {
		t.Fatalf("collection survived clear")
	}

	rec = do(t, srv, "POST", "/restore", dump, "Anan", "admin")
	if rec.Code != http.StatusOK {
		t.Fatalf("restore returned %d: %s", rec.Code, rec.Body.String())
	}
	if len(reg.Members()) != 1 {
		t.Fatalf("collection not restored")
	}
}

func TestOfflineToggle(t *testing.T) {
	fake := testutil.NewFakeSheets(t)
	reg := testutil.NewRegistry(t, fake.URL())
	srv := settings.Routes(settings.NewHandler(reg, zap.NewNop()))

	rec := do(t, srv, "PUT", "/offline", map[string]bool{"offline": true}, "Anan", "admin")
	if rec.Code != http.StatusOK {
		t.Fatalf("offline toggle returned %d", rec.Code)
	}
	if reg.Online() {
		t.Fatalf("registry still online after override")
	}

	rec = do(t, srv, "PUT", "/offline", map[string]bool{"offline": false}, "Anan", "admin")
	if rec.Code != http.StatusOK {
		t.Fatalf("online toggle returned %d: %s", rec.Code, rec.Body.String())
	}
	if !reg.Online() {
		t.Fatalf("registry still offline after clearing override")
	}
}
