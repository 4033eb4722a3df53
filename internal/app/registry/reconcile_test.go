// internal/app/registry/reconcile_test.go
package registry_test

import (
	"context"
	"testing"
	"time"

	"github.com/coopstack/memberdocs/internal/app/registry"
	"github.com/coopstack/memberdocs/internal/domain/checklist"
	"github.com/coopstack/memberdocs/internal/domain/models"
	"github.com/coopstack/memberdocs/internal/testutil"
)

func importRow(id, name string, cat models.Category) models.ImportRow {
	return models.ImportRow{
		ID:               models.NormalizeID(id),
		Name:             name,
		Category:         cat,
		RegistrationDate: time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		Issuer:           "Import",
	}
}

func TestImportOnlineAddsAndUpdates(t *testing.T) {
	fake := testutil.NewFakeSheets(t)
	reg, _ := newRegistry(t, fake.URL())
	ctx := context.Background()

	// Existing member with checked documents and history.
	m, _ := reg.Add(ctx, "Pim", "Somsak", models.CategoryCurrent, time.Now().UTC(), "")
	docs := checklist.NewDocuments(models.CategoryCurrent)
	docs["Applicant ID card copy"] = true
	if _, err := reg.UpdateDocuments(ctx, "Pim", m.ID, docs); err != nil {
		t.Fatalf("UpdateDocuments: %v", err)
	}

	sum, err := reg.Import(ctx, "Anan", []models.ImportRow{
		importRow(m.ID, "Somsak Renamed", models.CategoryCurrent), // same-category update
		importRow("100", "Newcomer", models.CategoryExternal),     // new member
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if sum.Added != 1 || sum.Updated != 1 {
		t.Fatalf("summary: %+v, want 1 added / 1 updated", sum)
	}

	// Same-category update overwrites details but preserves documents and
	// history; the importing actor becomes the auditor.
	got, ok := reg.Get(m.ID)
	if !ok {
		t.Fatalf("existing member lost")
	}
	if got.Name != "Somsak Renamed" || got.Issuer != "Import" {
		t.Fatalf("details not overwritten: %+v", got)
	}
	if !got.Documents["Applicant ID card copy"] {
		t.Fatalf("documents lost on same-category import")
	}
	if len(got.History) != 1 {
		t.Fatalf("history lost on same-category import")
	}
	if got.Auditor != "Anan" {
		t.Fatalf("auditor: got %q, want Anan", got.Auditor)
	}

	// New member starts with a fresh extended checklist, remote-backed
	// after the reload.
	added, ok := reg.Get("00100")
	if !ok {
		t.Fatalf("imported member missing")
	}
	if len(added.Documents) != 8 || checklist.HasAnyDocument(added) {
		t.Fatalf("imported member documents: %+v", added.Documents)
	}
	if !added.RemoteBacked() {
		t.Fatalf("imported member not remote-backed after reload")
	}
}

func TestImportCategoryChangeResets(t *testing.T) {
	fake := testutil.NewFakeSheets(t)
	reg, _ := newRegistry(t, fake.URL())
	ctx := context.Background()

	m, _ := reg.Add(ctx, "Pim", "Somsak", models.CategoryCurrent, time.Now().UTC(), "")
	docs := checklist.NewDocuments(models.CategoryCurrent)
	docs["Applicant ID card copy"] = true
	if _, err := reg.UpdateDocuments(ctx, "Pim", m.ID, docs); err != nil {
		t.Fatalf("UpdateDocuments: %v", err)
	}

	if _, err := reg.Import(ctx, "Anan", []models.ImportRow{
		importRow(m.ID, "Somsak", models.CategoryAssociate),
	}); err != nil {
		t.Fatalf("Import: %v", err)
	}

	got, ok := reg.Get(m.ID)
	if !ok {
		t.Fatalf("member lost on category-change import")
	}
	if got.Category != models.CategoryAssociate {
		t.Fatalf("category: %q", got.Category)
	}
	if checklist.HasAnyDocument(got) || len(got.History) != 0 {
		t.Fatalf("documents or history survived the category change: %+v", got)
	}
	if rows := fake.Rows("Current Staff"); len(rows) != 0 {
		t.Fatalf("old partition still holds %d rows", len(rows))
	}
	if rows := fake.Rows("Associate Member"); len(rows) != 1 {
		t.Fatalf("new partition holds %d rows, want 1", len(rows))
	}
}

func TestImportRemoteFailureMergesLocally(t *testing.T) {
	fake := testutil.NewFakeSheets(t)
	fake.FailAction("BULK_ADD")
	reg, store := newRegistry(t, fake.URL())
	ctx := context.Background()

	sum, err := reg.Import(ctx, "Anan", []models.ImportRow{
		importRow("1", "A", models.CategoryCurrent),
		importRow("2", "B", models.CategoryRetired),
	})
	if err != nil {
		t.Fatalf("Import must fall back, not fail: %v", err)
	}
	if sum.Added != 2 {
		t.Fatalf("fallback summary: %+v", sum)
	}

	// Whole batch lives locally with sentinels, persisted, and a warning
	// was recorded.
	for _, id := range []string{"00001", "00002"} {
		m, ok := reg.Get(id)
		if !ok {
			t.Fatalf("member %s lost in fallback", id)
		}
		if m.Sheet != models.LocalSheet {
			t.Fatalf("member %s not sentinel-marked: %q", id, m.Sheet)
		}
	}
	persisted, _ := store.Members()
	if len(persisted) != 2 {
		t.Fatalf("persisted %d members, want 2", len(persisted))
	}
	if !findNotification(reg.Notifications(), models.NoteWarning, "import") {
		t.Fatalf("no import warning recorded: %+v", reg.Notifications())
	}
}

func TestImportOfflineMerge(t *testing.T) {
	reg, _ := newRegistry(t, "")
	ctx := context.Background()

	m, _ := reg.Add(ctx, "Pim", "Somsak", models.CategoryCurrent, time.Now().UTC(), "")
	sum, err := reg.Import(ctx, "Anan", []models.ImportRow{
		importRow(m.ID, "Somsak Updated", models.CategoryCurrent),
		importRow("50", "Fresh", models.CategoryRetired),
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if sum.Added != 1 || sum.Updated != 1 {
		t.Fatalf("summary: %+v", sum)
	}
	got, _ := reg.Get(m.ID)
	if got.Name != "Somsak Updated" {
		t.Fatalf("offline merge did not update: %+v", got)
	}
}

func TestImportEmptyBatch(t *testing.T) {
	reg, _ := newRegistry(t, "")
	sum, err := reg.Import(context.Background(), "Anan", nil)
	if err != nil {
		t.Fatalf("Import(nil): %v", err)
	}
	if sum != (registry.ImportSummary{}) {
		t.Fatalf("empty batch produced %+v", sum)
	}
}
