// internal/app/store/sheets/errors.go
package sheets

import "fmt"

// SyncError is the single failure type the client surfaces: transport
// failures, non-success statuses from the backend (including its lock
// timeouts), and malformed responses all arrive here. The client never
// retries; recovery policy belongs to the caller.
type SyncError struct {
	Action  string // wire action that failed (READ_ALL, ADD, ...)
	Message string // raw backend message, when one was returned
	Err     error  // underlying transport/decode error, when one exists
}

func (e *SyncError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("sheets %s: %s: %v", e.Action, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("sheets %s: %s", e.Action, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("sheets %s: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("sheets %s: request failed", e.Action)
}

func (e *SyncError) Unwrap() error { return e.Err }
