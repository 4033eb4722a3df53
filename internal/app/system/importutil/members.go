// internal/app/system/importutil/members.go

// Package importutil pre-scans bulk member imports (CSV or tab-separated
// paste) into validated rows. It never touches a store; a batch can be
// parsed, its per-row errors shown, and the valid subset still imported.
package importutil

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/coopstack/memberdocs/internal/domain/models"
)

// Expected columns, in order: id, name, category, registration date, issuer.
// Issuer is optional; everything else is required.

// RowError describes why one input line was rejected.
type RowError struct {
	Line   int    `json:"line"` // 1-based line in the input, header included
	Reason string `json:"reason"`
}

func (e RowError) String() string { return fmt.Sprintf("line %d: %s", e.Line, e.Reason) }

// Result carries the valid rows and the rejects of one pre-scan.
type Result struct {
	Rows    []models.ImportRow
	Scanned int // non-empty data rows examined
	Errors  []RowError
}

// HasErrors reports whether any row was rejected.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// ParseMembers reads an entire import batch from r. A header row is detected
// and skipped; a UTF-8 BOM is tolerated; tab-separated paste is accepted
// alongside comma-separated files. Rejected rows never abort the batch —
// they are collected with human-readable reasons while the rest parse.
//
// Duplicate ids within the batch keep the first occurrence and reject the
// rest, so a batch is unambiguous before it ever reaches reconciliation.
func ParseMembers(r io.Reader) (*Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimPrefix(raw, []byte("\uFEFF"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if delimiter := sniffDelimiter(raw); delimiter != 0 {
		reader.Comma = delimiter
	}

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(rec) == 0 {
			continue
		}
		records = append(records, rec)
	}

	res := &Result{}
	seen := make(map[string]bool)
	startLine := 1
	if len(records) > 0 && isHeader(records[0]) {
		records = records[1:]
		startLine = 2
	}

	for i, rec := range records {
		line := startLine + i
		id := models.NormalizeID(field(rec, 0))
		name := strings.TrimSpace(field(rec, 1))
		label := strings.TrimSpace(field(rec, 2))
		dateRaw := strings.TrimSpace(field(rec, 3))
		issuer := strings.TrimSpace(field(rec, 4))

		// Rows with neither id nor name are blank filler, not data.
		if strings.TrimSpace(field(rec, 0)) == "" && name == "" {
			continue
		}
		res.Scanned++

		if strings.TrimSpace(field(rec, 0)) == "" {
			res.Errors = append(res.Errors, RowError{Line: line, Reason: "missing member id"})
			continue
		}
		if seen[id] {
			res.Errors = append(res.Errors, RowError{Line: line, Reason: fmt.Sprintf("duplicate member id %s in batch", id)})
			continue
		}
		seen[id] = true

		if name == "" {
			res.Errors = append(res.Errors, RowError{Line: line, Reason: fmt.Sprintf("missing name (id %s)", id)})
			continue
		}
		cat, ok := models.ParseCategoryLabel(label)
		if !ok {
			res.Errors = append(res.Errors, RowError{Line: line, Reason: fmt.Sprintf("unrecognized category %q (id %s)", label, id)})
			continue
		}
		regDate, err := ParseFlexibleDate(dateRaw)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Line: line, Reason: fmt.Sprintf("bad registration date %q (id %s)", dateRaw, id)})
			continue
		}

		res.Rows = append(res.Rows, models.ImportRow{
			ID:               id,
			Name:             name,
			Category:         cat,
			RegistrationDate: regDate,
			Issuer:           issuer,
		})
	}

	return res, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return rec[i]
}

func isHeader(rec []string) bool {
	if len(rec) < 2 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(rec[0]))
	second := strings.ToLower(strings.TrimSpace(rec[1]))
	return (first == "id" || first == "member id") && strings.Contains(second, "name")
}

// sniffDelimiter picks tab when the first line is tab-separated (pasted from
// a spreadsheet) and has no commas.
func sniffDelimiter(raw []byte) rune {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	if bytes.ContainsRune(line, '\t') && !bytes.ContainsRune(line, ',') {
		return '\t'
	}
	return 0
}
