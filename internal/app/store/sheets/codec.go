// internal/app/store/sheets/codec.go
package sheets

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/coopstack/memberdocs/internal/domain/models"
)

// Wire rows are positional with exactly eight fields:
//
//	0 id | 1 name | 2 category label | 3 registration date (RFC 3339)
//	4 documents (JSON object) | 5 issuer | 6 auditor | 7 history (JSON array)
//
// The order is part of the wire contract and must never change.
const rowWidth = 8

// EncodeRow turns a member into its wire row. The full row is always
// produced; the protocol has no partial update.
func EncodeRow(m models.Member) ([]string, error) {
	docs, err := json.Marshal(m.Documents)
	if err != nil {
		return nil, fmt.Errorf("encode documents: %w", err)
	}
	history := m.History
	if history == nil {
		history = []models.AuditLogEntry{}
	}
	hist, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return []string{
		m.ID,
		m.Name,
		m.Category.Label(),
		m.RegistrationDate.UTC().Format(time.RFC3339),
		string(docs),
		m.Issuer,
		m.Auditor,
		string(hist),
	}, nil
}

// DecodeRow is the exact inverse of EncodeRow, with two normalizations
// applied unconditionally: historical category label spellings map onto the
// canonical categories, and the id is zero-padded. sheet and row come from
// the backend's response envelope, not from the row itself.
//
// Spreadsheet cells are loosely typed, so the raw fields arrive as any and
// are stringified before use.
func DecodeRow(rowData []any, sheet string, row int) (models.Member, error) {
	var m models.Member
	if len(rowData) < 3 {
		return m, fmt.Errorf("row has %d fields, want %d", len(rowData), rowWidth)
	}
	id := strings.TrimSpace(cell(rowData, 0))
	name := strings.TrimSpace(cell(rowData, 1))
	label := cell(rowData, 2)
	if id == "" || name == "" || strings.TrimSpace(label) == "" {
		return m, fmt.Errorf("row missing id, name, or category")
	}
	cat, ok := models.ParseCategoryLabel(label)
	if !ok {
		return m, fmt.Errorf("unrecognized category label %q", label)
	}

	regDate, err := decodeDate(cell(rowData, 3))
	if err != nil {
		return m, fmt.Errorf("registration date: %w", err)
	}

	docs := map[string]bool{}
	if raw := strings.TrimSpace(cell(rowData, 4)); raw != "" {
		if err := json.Unmarshal([]byte(raw), &docs); err != nil {
			return m, fmt.Errorf("decode documents: %w", err)
		}
	}
	var history []models.AuditLogEntry
	if raw := strings.TrimSpace(cell(rowData, 7)); raw != "" {
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			return m, fmt.Errorf("decode history: %w", err)
		}
	}

	return models.Member{
		ID:               models.NormalizeID(id),
		Name:             name,
		Category:         cat,
		RegistrationDate: regDate,
		Documents:        docs,
		Issuer:           strings.TrimSpace(cell(rowData, 5)),
		Auditor:          strings.TrimSpace(cell(rowData, 6)),
		History:          history,
		Sheet:            sheet,
		Row:              row,
	}, nil
}

// decodeDate tolerates a blank cell by defaulting to the current instant:
// legacy rows were written without a registration date and must still load.
// Garbage values are still errors.
func decodeDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable value %q", raw)
}

func cell(rowData []any, i int) string {
	if i >= len(rowData) || rowData[i] == nil {
		return ""
	}
	switch v := rowData[i].(type) {
	case string:
		return v
	case float64:
		// JSON numbers; sheet ids often arrive numeric.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
