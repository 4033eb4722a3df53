// internal/app/features/notifications/handler_test.go
package notifications_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/app/features/notifications"
	"github.com/coopstack/memberdocs/internal/app/registry"
	"github.com/coopstack/memberdocs/internal/domain/models"
	"github.com/coopstack/memberdocs/internal/testutil"
)

func newServer(t *testing.T) (http.Handler, *registry.Registry) {
	t.Helper()
	reg := testutil.NewRegistry(t, "")
	return notifications.Routes(notifications.NewHandler(reg, zap.NewNop())), reg
}

func get(t *testing.T, srv http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.WithActor(httptest.NewRequest(method, path, strings.NewReader("")), "Pim", "staff")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestListNewestFirst(t *testing.T) {
	srv, reg := newServer(t)
	reg.Notify(models.NoteInfo, "first")
	reg.Notify(models.NoteWarning, "second")

	rec := get(t, srv, "GET", "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("list returned %d", rec.Code)
	}
	var notes []models.Notification
	testutil.DecodeJSON(t, rec.Body.Bytes(), &notes)
	if len(notes) != 2 || notes[0].Message != "second" {
		t.Fatalf("order: %+v", notes)
	}
}

func TestMarkAllRead(t *testing.T) {
	srv, reg := newServer(t)
	reg.Notify(models.NoteInfo, "a")
	reg.Notify(models.NoteInfo, "b")

	rec := get(t, srv, "POST", "/read")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("mark read returned %d", rec.Code)
	}
	for _, n := range reg.Notifications() {
		if !n.Read {
			t.Fatalf("notification %q still unread", n.Message)
		}
	}
}

func TestDeleteAndClear(t *testing.T) {
	srv, reg := newServer(t)
	n := reg.Notify(models.NoteInfo, "doomed")
	reg.Notify(models.NoteInfo, "survivor")

	rec := get(t, srv, "DELETE", "/"+n.ID)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete returned %d", rec.Code)
	}
	notes := reg.Notifications()
	if len(notes) != 1 || notes[0].Message != "survivor" {
		t.Fatalf("after delete: %+v", notes)
	}

	rec = get(t, srv, "DELETE", "/")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear returned %d", rec.Code)
	}
	if len(reg.Notifications()) != 0 {
		t.Fatalf("log survived clear")
	}
}

func TestNotificationCap(t *testing.T) {
	_, reg := newServer(t)
	for i := 0; i < 60; i++ {
		reg.Notify(models.NoteInfo, "n")
	}
	if got := len(reg.Notifications()); got != 50 {
		t.Fatalf("log holds %d entries, want the 50 newest", got)
	}
}
