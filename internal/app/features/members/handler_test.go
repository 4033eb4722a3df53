// internal/app/features/members/handler_test.go
package members_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/app/features/members"
	"github.com/coopstack/memberdocs/internal/domain/models"
	"github.com/coopstack/memberdocs/internal/testutil"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	h := members.NewHandler(testutil.NewRegistry(t, ""), zap.NewNop())
	return members.Routes(h)
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body any, name, role string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
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

func createMember(t *testing.T, srv http.Handler, name, category string) models.Member {
	t.Helper()
	rec := doJSON(t, srv, "POST", "/", map[string]string{
		"name":             name,
		"category":         category,
		"registrationDate": "2024-07-15",
		"issuer":           "Registrar",
	}, "Pim", "staff")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	var m models.Member
	testutil.DecodeJSON(t, rec.Body.Bytes(), &m)
	return m
}

func TestListRequiresIdentity(t *testing.T) {
	srv := newServer(t)
	rec := doJSON(t, srv, "GET", "/", nil, "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous list returned %d, want 401", rec.Code)
	}
}

func TestCreateAndList(t *testing.T) {
	srv := newServer(t)
	m := createMember(t, srv, "Somsak", "Current Staff")
	if m.ID != "00001" || m.Category != models.CategoryCurrent {
		t.Fatalf("created member: %+v", m)
	}
	createMember(t, srv, "Pranee", "external_staff")

	rec := doJSON(t, srv, "GET", "/", nil, "Pim", "staff")
	if rec.Code != http.StatusOK {
		t.Fatalf("list returned %d", rec.Code)
	}
	var resp struct {
		Members []models.Member `json:"members"`
		Total   int             `json:"total"`
		Online  bool            `json:"online"`
	}
	testutil.DecodeJSON(t, rec.Body.Bytes(), &resp)
	if resp.Total != 2 || len(resp.Members) != 2 {
		t.Fatalf("list: %+v", resp)
	}
	if resp.Online {
		t.Fatalf("offline registry reported online")
	}
	// Sorted by numeric id.
	if resp.Members[0].ID != "00001" || resp.Members[1].ID != "00002" {
		t.Fatalf("order: %s, %s", resp.Members[0].ID, resp.Members[1].ID)
	}
}

func TestListFilters(t *testing.T) {
	srv := newServer(t)
	createMember(t, srv, "Somsak", "Current Staff")
	createMember(t, srv, "Pranee", "External Staff")

	rec := doJSON(t, srv, "GET", "/?category=external_staff", nil, "Pim", "staff")
	var resp struct {
		Members []models.Member `json:"members"`
		Total   int             `json:"total"`
	}
	testutil.DecodeJSON(t, rec.Body.Bytes(), &resp)
	if len(resp.Members) != 1 || resp.Members[0].Name != "Pranee" {
		t.Fatalf("category filter: %+v", resp.Members)
	}
	if resp.Total != 2 {
		t.Fatalf("total must count the unfiltered collection, got %d", resp.Total)
	}

	rec = doJSON(t, srv, "GET", "/?q=som", nil, "Pim", "staff")
	testutil.DecodeJSON(t, rec.Body.Bytes(), &resp)
	if len(resp.Members) != 1 || resp.Members[0].Name != "Somsak" {
		t.Fatalf("search filter: %+v", resp.Members)
	}

	rec = doJSON(t, srv, "GET", "/?status=pending", nil, "Pim", "staff")
	testutil.DecodeJSON(t, rec.Body.Bytes(), &resp)
	if len(resp.Members) != 2 {
		t.Fatalf("all-false checklists are pending: %+v", resp.Members)
	}

	rec = doJSON(t, srv, "GET", "/?status=wrong", nil, "Pim", "staff")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status filter returned %d", rec.Code)
	}

	// Third member registered by a different actor and issuer.
	rec = doJSON(t, srv, "POST", "/", map[string]string{
		"name":             "Chai",
		"category":         "Current Staff",
		"registrationDate": "2024-07-15",
		"issuer":           "Branch Office",
	}, "Anan", "staff")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d", rec.Code)
	}

	rec = doJSON(t, srv, "GET", "/?issuer=branch+office", nil, "Pim", "staff")
	testutil.DecodeJSON(t, rec.Body.Bytes(), &resp)
	if len(resp.Members) != 1 || resp.Members[0].Name != "Chai" {
		t.Fatalf("issuer filter: %+v", resp.Members)
	}

	rec = doJSON(t, srv, "GET", "/?auditor=anan", nil, "Pim", "staff")
	testutil.DecodeJSON(t, rec.Body.Bytes(), &resp)
	if len(resp.Members) != 1 || resp.Members[0].Auditor != "Anan" {
		t.Fatalf("auditor filter: %+v", resp.Members)
	}
}

func TestUpdateDocumentsAndHistory(t *testing.T) {
	srv := newServer(t)
	m := createMember(t, srv, "Somsak", "Current Staff")

	docs := map[string]bool{}
	for name := range m.Documents {
		docs[name] = false
	}
	docs["Applicant ID card copy"] = true

	rec := doJSON(t, srv, "PUT", "/"+m.ID+"/documents", map[string]any{"documents": docs}, "Anan", "staff")
	if rec.Code != http.StatusOK {
		t.Fatalf("documents update returned %d: %s", rec.Code, rec.Body.String())
	}
	var updated models.Member
	testutil.DecodeJSON(t, rec.Body.Bytes(), &updated)
	if !updated.Documents["Applicant ID card copy"] || updated.Auditor != "Anan" {
		t.Fatalf("update not applied: %+v", updated)
	}

	rec = doJSON(t, srv, "GET", "/"+m.ID+"/history", nil, "Pim", "staff")
	var history []models.AuditLogEntry
	testutil.DecodeJSON(t, rec.Body.Bytes(), &history)
	if len(history) != 1 || history[0].Auditor != "Anan" {
		t.Fatalf("history: %+v", history)
	}
}

func TestDeleteIsAdminOnly(t *testing.T) {
	srv := newServer(t)
	m := createMember(t, srv, "Somsak", "Current Staff")

	rec := doJSON(t, srv, "DELETE", "/"+m.ID, nil, "Pim", "staff")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("staff delete returned %d, want 403", rec.Code)
	}

	rec = doJSON(t, srv, "DELETE", "/"+m.ID, nil, "Anan", "admin")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin delete returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, "GET", "/"+m.ID, nil, "Pim", "staff")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deleted member still served: %d", rec.Code)
	}
}

func TestGetUnknownMember(t *testing.T) {
	srv := newServer(t)
	rec := doJSON(t, srv, "GET", "/99999", nil, "Pim", "staff")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rec.Code)
	}
}

func TestChecklistEndpoint(t *testing.T) {
	srv := newServer(t)
	m := createMember(t, srv, "Pranee", "External Staff")

	rec := doJSON(t, srv, "GET", "/"+m.ID+"/checklist", nil, "Pim", "staff")
	if rec.Code != http.StatusOK {
		t.Fatalf("checklist returned %d", rec.Code)
	}
	var items []struct {
		Name      string `json:"name"`
		Mandatory bool   `json:"mandatory"`
		Checked   bool   `json:"checked"`
	}
	testutil.DecodeJSON(t, rec.Body.Bytes(), &items)
	if len(items) != 8 {
		t.Fatalf("extended checklist has %d items, want 8", len(items))
	}
	for _, item := range items {
		if item.Checked {
			t.Fatalf("fresh member has %q checked", item.Name)
		}
	}
}

func TestNextIDEndpoint(t *testing.T) {
	srv := newServer(t)
	createMember(t, srv, "Somsak", "Current Staff")

	rec := doJSON(t, srv, "GET", "/next-id", nil, "Pim", "staff")
	var resp map[string]string
	testutil.DecodeJSON(t, rec.Body.Bytes(), &resp)
	if resp["id"] != "00002" {
		t.Fatalf("next id: got %q, want 00002", resp["id"])
	}
}

func TestImportEndpoint(t *testing.T) {
	srv := newServer(t)

	csv := strings.Join([]string{
		"id,name,category,registration date,issuer",
		"1,Somsak,Current Staff,2024-07-15,Registrar",
		"2,,Current Staff,2024-07-15,",
	}, "\n")

	// Staff cannot import.
	req := httptest.NewRequest("POST", "/import", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	req = testutil.WithActor(req, "Pim", "staff")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("staff import returned %d, want 403", rec.Code)
	}

	// Admin import applies valid rows and reports rejects.
	req = httptest.NewRequest("POST", "/import", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	req = testutil.WithActor(req, "Anan", "admin")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin import returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Scanned  int `json:"scanned"`
		Added    int `json:"added"`
		Updated  int `json:"updated"`
		Rejected []struct {
			Line   int    `json:"line"`
			Reason string `json:"reason"`
		} `json:"rejected"`
	}
	testutil.DecodeJSON(t, rec.Body.Bytes(), &resp)
	if resp.Scanned != 2 || resp.Added != 1 || len(resp.Rejected) != 1 {
		t.Fatalf("import result: %+v", resp)
	}

	listRec := doJSON(t, srv, "GET", "/", nil, "Pim", "staff")
	var list struct {
		Members []models.Member `json:"members"`
	}
	testutil.DecodeJSON(t, listRec.Body.Bytes(), &list)
	if len(list.Members) != 1 || list.Members[0].Name != "Somsak" {
		t.Fatalf("imported collection: %+v", list.Members)
	}
}

func TestImportAllRowsRejected(t *testing.T) {
	srv := newServer(t)
	csv := "id,name,category,registration date,issuer\n,NoID,Current Staff,2024-07-15,\n"

	req := httptest.NewRequest("POST", "/import", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	req = testutil.WithActor(req, "Anan", "admin")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("all-rejected import returned %d, want 422", rec.Code)
	}
}
