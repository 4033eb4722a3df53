// internal/domain/checklist/checklist.go

// Package checklist resolves the document requirements for each member
// category and defines the single compliance predicate used by every surface
// (list badges, dashboard, overdue monitor). Components must not recompute
// compliance their own way.
package checklist

import "github.com/coopstack/memberdocs/internal/domain/models"

// Item is one required document in a category's checklist. Mandatory items
// gate compliance; the rest are tracked but do not block it.
type Item struct {
	Name      string `json:"name"`
	Mandatory bool   `json:"mandatory"`
}

// The two checklist variants. Which categories share which variant is pure
// configuration data (variantByCategory); there is no per-category logic.
var standardDocs = []Item{
	{Name: "Applicant ID card copy", Mandatory: true},
	{Name: "Applicant house registration copy", Mandatory: true},
	{Name: "Applicant bank book copy", Mandatory: true},
	{Name: "Beneficiary ID card or birth certificate copy", Mandatory: true},
	{Name: "Marriage certificate copy", Mandatory: false},
	{Name: "Name change certificate copy", Mandatory: false},
}

var extendedDocs = []Item{
	{Name: "Applicant ID card copy", Mandatory: true},
	{Name: "Primary member ID card copy", Mandatory: true},
	{Name: "Applicant house registration copy", Mandatory: true},
	{Name: "Primary member house registration copy", Mandatory: true},
	{Name: "Applicant bank book copy", Mandatory: true},
	{Name: "Beneficiary ID card or birth certificate copy", Mandatory: true},
	{Name: "Marriage certificate copy", Mandatory: false},
	{Name: "Name change certificate copy", Mandatory: false},
}

var variantByCategory = map[models.Category][]Item{
	models.CategoryCurrent:   standardDocs,
	models.CategoryRetired:   standardDocs,
	models.CategoryExternal:  extendedDocs,
	models.CategoryAssociate: extendedDocs,
}

// Full returns the ordered full checklist for a category, including optional
// documents. Unknown categories fall back to the standard variant so the
// result is always non-empty.
func Full(cat models.Category) []Item {
	if docs, ok := variantByCategory[cat]; ok {
		return docs
	}
	return standardDocs
}

// Core returns the mandatory subset of Full(cat), preserving order.
func Core(cat models.Category) []Item {
	full := Full(cat)
	core := make([]Item, 0, len(full))
	for _, d := range full {
		if d.Mandatory {
			core = append(core, d)
		}
	}
	return core
}

// NewDocuments builds the fresh all-false document map for a category, sized
// to its full checklist. Used for newly created members and for category
// changes that reset document state.
func NewDocuments(cat models.Category) map[string]bool {
	full := Full(cat)
	docs := make(map[string]bool, len(full))
	for _, d := range full {
		docs[d.Name] = false
	}
	return docs
}

// Compliant reports whether every mandatory document of the member's
// category is marked present. This predicate is the single source of truth
// for "documents complete".
func Compliant(m models.Member) bool {
	for _, d := range Core(m.Category) {
		if !m.Documents[d.Name] {
			return false
		}
	}
	return true
}

// HasAnyDocument reports whether at least one document flag is set. The
// dashboard uses it to split non-compliant members into "pending" (some
// papers received) and "incomplete" (nothing received).
func HasAnyDocument(m models.Member) bool {
	for _, present := range m.Documents {
		if present {
			return true
		}
	}
	return false
}
