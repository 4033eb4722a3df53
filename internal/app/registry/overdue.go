// internal/app/registry/overdue.go

package registry

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/domain/checklist"
	"github.com/coopstack/memberdocs/internal/domain/models"
)

// overdueMarker appears in every overdue warning; the daily throttle matches
// on it, so existing warnings keep throttling even after the message wording
// around the counts changes.
const overdueMarker = "overdue documents"

// StartOverdueMonitor launches the background goroutine that scans the
// collection for members past the document grace period. Scans are kicked by
// collection replacement and debounced, so a burst of mutations costs one
// scan.
func (r *Registry) StartOverdueMonitor() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-r.stopCh:
				if timer != nil {
					timer.Stop()
				}
				return
			case <-r.kick:
				if timer == nil {
					timer = time.NewTimer(r.cfg.Debounce)
					fire = timer.C
				} else {
					if !timer.Stop() {
						select {
						case <-fire:
						default:
						}
					}
					timer.Reset(r.cfg.Debounce)
				}
			case <-fire:
				timer = nil
				fire = nil
				r.CheckOverdue(time.Now())
			}
		}
	}()
}

// Stop shuts the overdue monitor down and waits for it.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

// Overdue reports whether a member is past the grace period with an
// incomplete checklist as of the given instant.
func (r *Registry) Overdue(m models.Member, now time.Time) bool {
	return elapsedDays(m.RegistrationDate, now) > r.cfg.GraceDays && !checklist.Compliant(m)
}

// CheckOverdue scans the collection once as of the given instant and, when
// overdue members exist, records at most one warning per calendar day. It
// reports whether a warning was added.
func (r *Registry) CheckOverdue(now time.Time) bool {
	overdue := 0
	for _, m := range r.Members() {
		if r.Overdue(m, now) {
			overdue++
		}
	}
	if overdue == 0 {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.warnedTodayLocked(now) {
		return false
	}
	msg := fmt.Sprintf("%d member(s) registered more than %d days ago still have %s", overdue, r.cfg.GraceDays, overdueMarker)
	r.appendNoteAtLocked(models.NoteWarning, msg, now.UTC())
	r.log.Info("overdue scan", zap.Int("overdue", overdue))
	return true
}

// warnedTodayLocked reports whether an overdue warning already exists for
// now's calendar day.
func (r *Registry) warnedTodayLocked(now time.Time) bool {
	y, mo, d := now.UTC().Date()
	for _, n := range r.notes {
		if n.Kind != models.NoteWarning || !strings.Contains(n.Message, overdueMarker) {
			continue
		}
		ny, nmo, nd := n.Timestamp.UTC().Date()
		if ny == y && nmo == mo && nd == d {
			return true
		}
	}
	return false
}

// elapsedDays counts calendar-rounded days between registration and now,
// rounding partial days up so day 31 starts the moment 30 full days have
// passed.
func elapsedDays(registered, now time.Time) int {
	return int(math.Ceil(now.Sub(registered).Hours() / 24))
}
