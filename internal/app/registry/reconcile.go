// internal/app/registry/reconcile.go

package registry

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/domain/checklist"
	"github.com/coopstack/memberdocs/internal/domain/models"
)

// ImportSummary reports what a bulk import did to the collection. Row-level
// rejections happen upstream during parsing; by the time rows reach Import
// they are individually valid.
type ImportSummary struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
}

// Import reconciles a batch of parsed rows against the collection.
//
// Per row: an unknown id becomes a new member with a fresh all-false
// checklist; a known id with the same category gets name, registration date,
// and issuer overwritten while documents and history are preserved; a known
// id with a different category is moved — remotely that is a delete of the
// old row plus an add of a reset record, since the partitioned backend has
// no move primitive.
//
// Online, new members go out in one BULK_ADD per affected partition and the
// collection is reloaded afterwards so every record carries its true row
// position. Any remote failure falls back to applying the whole batch as an
// offline merge, so the import is never partially lost.
func (r *Registry) Import(ctx context.Context, actor string, rows []models.ImportRow) (ImportSummary, error) {
	if len(rows) == 0 {
		return ImportSummary{}, nil
	}

	client, online := r.remote()
	if !online {
		sum := r.applyOfflineMerge(actor, rows)
		r.Notify(models.NoteSuccess, fmt.Sprintf("Imported %d members locally (%d added, %d updated)", sum.Added+sum.Updated, sum.Added, sum.Updated))
		return sum, nil
	}

	existing := make(map[string]models.Member)
	for _, m := range r.Members() {
		existing[m.ID] = m
	}

	var adds []models.Member
	var sum ImportSummary
	var remoteErr error

	for _, row := range rows {
		old, known := existing[row.ID]
		if !known {
			adds = append(adds, newImportMember(actor, row))
			sum.Added++
			continue
		}
		sum.Updated++
		if old.Category == row.Category {
			next := old.Clone()
			next.Name = row.Name
			next.RegistrationDate = row.RegistrationDate
			next.Issuer = row.Issuer
			next.Auditor = actor
			if !old.RemoteBacked() {
				// Local-only record: the reload after the import would drop
				// it, so push it out with the batch, checklist intact.
				adds = append(adds, next)
				continue
			}
			if err := client.Update(ctx, next); err != nil {
				remoteErr = err
				break
			}
			continue
		}
		// Category moved: drop the old row first so the id never exists in
		// two partitions at once, then add the reset record.
		if old.RemoteBacked() {
			if err := client.Delete(ctx, old.Sheet, old.Row); err != nil {
				remoteErr = err
				break
			}
		}
		if err := client.Add(ctx, newImportMember(actor, row)); err != nil {
			remoteErr = err
			break
		}
	}

	if remoteErr == nil && len(adds) > 0 {
		remoteErr = client.BulkAdd(ctx, adds)
	}

	if remoteErr != nil {
		r.log.Warn("remote import failed, merging locally", zap.Error(remoteErr))
		sum = r.applyOfflineMerge(actor, rows)
		r.Notify(models.NoteWarning, fmt.Sprintf("Connection problem during import: %d rows merged locally instead", len(rows)))
		return sum, nil
	}

	if err := r.Load(ctx); err != nil {
		r.Notify(models.NoteWarning, "Import saved remotely but reloading failed")
		return sum, nil
	}
	r.Notify(models.NoteSuccess, fmt.Sprintf("Imported %d members (%d added, %d updated)", sum.Added+sum.Updated, sum.Added, sum.Updated))
	return sum, nil
}

// applyOfflineMerge reconciles the batch directly against the in-memory
// collection and persists the result.
func (r *Registry) applyOfflineMerge(actor string, rows []models.ImportRow) ImportSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := models.CloneMembers(r.members)
	index := make(map[string]int, len(next))
	for i := range next {
		index[next[i].ID] = i
	}

	var sum ImportSummary
	for _, row := range rows {
		i, known := index[row.ID]
		if !known {
			m := newImportMember(actor, row)
			index[m.ID] = len(next)
			next = append(next, m)
			sum.Added++
			continue
		}
		sum.Updated++
		old := next[i]
		if old.Category == row.Category {
			old.Name = row.Name
			old.RegistrationDate = row.RegistrationDate
			old.Issuer = row.Issuer
			old.Auditor = actor
			next[i] = old
			continue
		}
		// Offline category move: replace in place with a reset record, same
		// slot, remote position retained for a later reconciling reload.
		moved := newImportMember(actor, row)
		moved.Sheet = old.Sheet
		moved.Row = old.Row
		next[i] = moved
	}

	r.setMembersLocked(next)
	r.persistMembersLocked()
	return sum
}

// newImportMember builds a fresh record for a row entering the collection:
// all-false checklist for its category, empty history, local sentinel until
// a reload learns its remote position.
func newImportMember(actor string, row models.ImportRow) models.Member {
	m := models.Member{
		ID:               row.ID,
		Name:             row.Name,
		Category:         row.Category,
		RegistrationDate: row.RegistrationDate,
		Documents:        checklist.NewDocuments(row.Category),
		Issuer:           row.Issuer,
		Auditor:          actor,
		History:          []models.AuditLogEntry{},
	}
	m.MarkLocal()
	return m
}
