// internal/testutil/sheetsfake.go
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// FakeRow is one stored row in the fake backend.
type FakeRow struct {
	Sheet string
	Data  []string
}

// FakeSheets is an in-memory stand-in for the spreadsheet backend. It speaks
// the same action protocol over a httptest server: one POST endpoint
// dispatching on the "action" body field, rows partitioned by sheet name,
// row indexes starting at 2 (row 1 is the header row in the real backend).
type FakeSheets struct {
	t  *testing.T
	mu sync.Mutex

	sheets map[string][][]string
	order  []string // sheet creation order, for stable READ_ALL output

	failActions map[string]bool // actions that respond with status "error"
	calls       []string

	srv *httptest.Server
}

// NewFakeSheets starts a fake backend; it is shut down with the test.
func NewFakeSheets(t *testing.T) *FakeSheets {
	t.Helper()
	f := &FakeSheets{
		t:           t,
		sheets:      make(map[string][][]string),
		failActions: make(map[string]bool),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

// URL returns the endpoint URL clients should talk to.
func (f *FakeSheets) URL() string { return f.srv.URL }

// Seed stores rows directly, bypassing the protocol.
func (f *FakeSheets) Seed(rows ...FakeRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range rows {
		f.appendLocked(row.Sheet, row.Data)
	}
}

// FailAction makes every subsequent call with the given action respond with
// a status "error" envelope.
func (f *FakeSheets) FailAction(action string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failActions[action] = true
}

// Calls returns the actions received so far, in order.
func (f *FakeSheets) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// Rows returns the rows of one sheet in storage order.
func (f *FakeSheets) Rows(sheet string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.sheets[sheet]))
	for i, r := range f.sheets[sheet] {
		row := make([]string, len(r))
		copy(row, r)
		out[i] = row
	}
	return out
}

// RowCount returns the total rows across all sheets.
func (f *FakeSheets) RowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, rows := range f.sheets {
		n += len(rows)
	}
	return n
}

type fakeRequest struct {
	Action    string     `json:"action"`
	SheetName string     `json:"sheetName"`
	RowIndex  int        `json:"rowIndex"`
	RowData   []string   `json:"rowData"`
	RowsData  [][]string `json:"rowsData"`
}

type fakeMember struct {
	RowData   []any  `json:"rowData"`
	SheetName string `json:"sheetName"`
	RowIndex  int    `json:"rowIndex"`
}

func (f *FakeSheets) handle(w http.ResponseWriter, r *http.Request) {
	var req fakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		f.respond(w, map[string]any{"status": "error", "message": "bad request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req.Action)

	if f.failActions[req.Action] {
		f.respond(w, map[string]any{"status": "error", "message": "injected failure for " + req.Action})
		return
	}

	switch req.Action {
	case "READ_ALL":
		var members []fakeMember
		for _, sheet := range f.order {
			for i, row := range f.sheets[sheet] {
				data := make([]any, len(row))
				for j, cell := range row {
					data[j] = cell
				}
				members = append(members, fakeMember{RowData: data, SheetName: sheet, RowIndex: i + 2})
			}
		}
		f.respond(w, map[string]any{"status": "success", "members": members, "count": len(members)})

	case "ADD":
		f.appendLocked(req.SheetName, req.RowData)
		f.respond(w, map[string]any{"status": "success"})

	case "BULK_ADD":
		for _, row := range req.RowsData {
			f.appendLocked(req.SheetName, row)
		}
		f.respond(w, map[string]any{"status": "success", "count": len(req.RowsData)})

	case "UPDATE":
		rows := f.sheets[req.SheetName]
		i := req.RowIndex - 2
		if i < 0 || i >= len(rows) {
			f.respond(w, map[string]any{"status": "error", "message": "row not found"})
			return
		}
		rows[i] = req.RowData
		f.respond(w, map[string]any{"status": "success"})

	case "DELETE":
		rows := f.sheets[req.SheetName]
		i := req.RowIndex - 2
		if i < 0 || i >= len(rows) {
			f.respond(w, map[string]any{"status": "error", "message": "row not found"})
			return
		}
		f.sheets[req.SheetName] = append(rows[:i:i], rows[i+1:]...)
		f.respond(w, map[string]any{"status": "success"})

	default:
		f.respond(w, map[string]any{"status": "error", "message": "unknown action " + req.Action})
	}
}

func (f *FakeSheets) appendLocked(sheet string, row []string) {
	if _, ok := f.sheets[sheet]; !ok {
		f.order = append(f.order, sheet)
	}
	f.sheets[sheet] = append(f.sheets[sheet], row)
}

func (f *FakeSheets) respond(w http.ResponseWriter, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		f.t.Errorf("fake sheets: encoding response: %v", err)
	}
}
