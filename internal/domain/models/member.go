// internal/domain/models/member.go
package models

import (
	"strings"
	"time"
)

// MemberIDLength is the width of a canonical member id ("1" -> "00001").
const MemberIDLength = 5

// Member is one tracked person with a document-compliance record.
//
// Documents maps document name -> present flag. For a freshly created member
// the key set is exactly the full checklist of its category, all false. After
// a category change the map is either preserved wholesale or replaced
// wholesale with a fresh all-false map for the new category; the two are
// never merged.
type Member struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Category         Category        `json:"category"`
	RegistrationDate time.Time       `json:"registrationDate"`
	Documents        map[string]bool `json:"documents"`
	Issuer           string          `json:"issuer,omitempty"`
	Auditor          string          `json:"auditor,omitempty"`

	// History is newest-first and append-only: entries are prepended, never
	// mutated in place.
	History []AuditLogEntry `json:"history"`

	// Sheet and Row locate the backing row in the remote store. A record
	// that exists only locally carries the sentinel pair (LocalSheet, -1).
	// Row is 1-based and valid only until the next mutation of its sheet.
	Sheet string `json:"sheetName"`
	Row   int    `json:"rowIndex"`
}

// AuditLogEntry records one document-flag change set on a member.
// An entry is created only when at least one flag actually changed value.
type AuditLogEntry struct {
	Timestamp time.Time        `json:"timestamp"`
	Auditor   string           `json:"auditor"`
	Changes   []DocumentChange `json:"changes"`
}

// DocumentChange is a single flag transition inside an audit entry.
type DocumentChange struct {
	Document string `json:"document"`
	From     bool   `json:"from"`
	To       bool   `json:"to"`
}

// NormalizeID brings a raw member id into canonical form: trimmed and
// left-padded with zeros to MemberIDLength. Idempotent. Every code path that
// creates or ingests an id must normalize it before comparing or storing.
func NormalizeID(raw string) string {
	s := strings.TrimSpace(raw)
	for len(s) < MemberIDLength {
		s = "0" + s
	}
	return s
}

// RemoteBacked reports whether the member has a live row in the remote store.
func (m *Member) RemoteBacked() bool {
	return m.Row > 0 && m.Sheet != LocalSheet && m.Sheet != ""
}

// MarkLocal stamps the local-only sentinel pair onto the member.
func (m *Member) MarkLocal() {
	m.Sheet = LocalSheet
	m.Row = -1
}

// Clone returns a deep copy of the member so callers can hand out snapshots
// without exposing shared maps or history slices.
func (m Member) Clone() Member {
	c := m
	c.Documents = make(map[string]bool, len(m.Documents))
	for k, v := range m.Documents {
		c.Documents[k] = v
	}
	if m.History != nil {
		c.History = make([]AuditLogEntry, len(m.History))
		copy(c.History, m.History)
		for i := range c.History {
			changes := make([]DocumentChange, len(m.History[i].Changes))
			copy(changes, m.History[i].Changes)
			c.History[i].Changes = changes
		}
	}
	return c
}

// CloneMembers deep-copies a member slice.
func CloneMembers(in []Member) []Member {
	if in == nil {
		return nil
	}
	out := make([]Member, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// ImportRow is one validated row from a bulk import batch, before it is
// reconciled against the existing collection.
type ImportRow struct {
	ID               string
	Name             string
	Category         Category
	RegistrationDate time.Time
	Issuer           string
}
