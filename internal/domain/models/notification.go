// internal/domain/models/notification.go
package models

import "time"

// Notification kinds.
const (
	NoteSuccess = "success"
	NoteWarning = "warning"
	NoteInfo    = "info"
	NoteError   = "error"
)

// Notification is one entry in the in-app notification log. The log is kept
// newest-first and capped (see registry); entries survive restarts through
// the local fallback store.
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"isRead"`
}
