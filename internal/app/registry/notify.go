// internal/app/registry/notify.go

package registry

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/domain/models"
)

// Notify prepends a notification to the capped log and persists the log
// best-effort.
func (r *Registry) Notify(kind, message string) models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appendNoteLocked(kind, message)
}

func (r *Registry) appendNoteLocked(kind, message string) models.Notification {
	return r.appendNoteAtLocked(kind, message, time.Now().UTC())
}

func (r *Registry) appendNoteAtLocked(kind, message string, ts time.Time) models.Notification {
	n := models.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		Timestamp: ts,
	}
	next := append([]models.Notification{n}, r.notes...)
	if len(next) > r.cfg.NotificationCap {
		next = next[:r.cfg.NotificationCap]
	}
	r.notes = next
	r.persistNotesLocked()
	return n
}

// Notifications returns the log newest first.
func (r *Registry) Notifications() []models.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Notification, len(r.notes))
	copy(out, r.notes)
	return out
}

// MarkNotificationsRead flags the given ids as read; an empty id list marks
// everything.
func (r *Registry) MarkNotificationsRead(ids []string) {
	all := len(ids) == 0
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]models.Notification, len(r.notes))
	copy(next, r.notes)
	for i := range next {
		if all || want[next[i].ID] {
			next[i].Read = true
		}
	}
	r.notes = next
	r.persistNotesLocked()
}

// DeleteNotification removes one entry by id.
func (r *Registry) DeleteNotification(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]models.Notification, 0, len(r.notes))
	for _, n := range r.notes {
		if n.ID != id {
			next = append(next, n)
		}
	}
	r.notes = next
	r.persistNotesLocked()
}

// ClearNotifications empties the log.
func (r *Registry) ClearNotifications() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = []models.Notification{}
	r.persistNotesLocked()
}

func (r *Registry) persistNotesLocked() {
	if err := r.local.SaveNotifications(r.notes); err != nil {
		r.log.Warn("persisting notifications failed", zap.Error(err))
	}
}
