// internal/domain/models/category.go
package models

import "strings"

// Category classifies a member and decides both the document checklist that
// applies and the backend partition (sheet) the record is stored in.
type Category string

// Canonical member categories.
//
// These values are stable, language-agnostic keys used throughout the
// application and in the wire rows. Human-facing labels belong to the UI
// collaborator.
const (
	CategoryCurrent   Category = "current_staff"
	CategoryExternal  Category = "external_staff"
	CategoryRetired   Category = "retired_staff"
	CategoryAssociate Category = "associate_member"
)

// Categories is the full set of canonical categories, in display order.
// Treat this slice as the single source of truth for validation and for
// enumerating backend partitions.
var Categories = []Category{
	CategoryCurrent,
	CategoryExternal,
	CategoryRetired,
	CategoryAssociate,
}

// categoryLabels maps each category to its canonical wire label.
var categoryLabels = map[Category]string{
	CategoryCurrent:   "Current Staff",
	CategoryExternal:  "External Staff",
	CategoryRetired:   "Retired Staff",
	CategoryAssociate: "Associate Member",
}

// categorySheets maps each category to the backend partition it is stored in.
// External keeps the short legacy sheet name so existing spreadsheets keep
// working after the label migration.
var categorySheets = map[Category]string{
	CategoryCurrent:   "Current Staff",
	CategoryExternal:  "External",
	CategoryRetired:   "Retired Staff",
	CategoryAssociate: "Associate Member",
}

// LocalSheet is the sentinel partition name for records that are not backed
// by the remote store. It pairs with row index -1.
const LocalSheet = "Local"

// Label returns the canonical wire label for c.
func (c Category) Label() string { return categoryLabels[c] }

// Sheet returns the backend partition name for c.
func (c Category) Sheet() string { return categorySheets[c] }

// Valid reports whether c is one of the canonical categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategoryLabel maps a stored or imported category label onto a
// canonical Category. Besides the canonical labels it accepts the historical
// spellings and synonyms that older spreadsheets used. Unrecognized labels
// return ok=false; callers must reject, never default.
func ParseCategoryLabel(label string) (Category, bool) {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return "", false
	}
	// Normalize separator noise so "current-staff" and "current_staff" match.
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}

	switch {
	case strings.Contains(s, "current staff"), strings.Contains(s, "cooperative officer"):
		return CategoryCurrent, true
	case s == "external", s == "external staff", s == "external member":
		return CategoryExternal, true
	case s == "retired", s == "retired staff", s == "pensioner":
		return CategoryRetired, true
	case strings.Contains(s, "associate"):
		return CategoryAssociate, true
	}
	return "", false
}
