// internal/app/registry/registry.go

// Package registry owns the canonical in-memory member collection and
// decides, per operation, whether the remote sheets backend or the local
// fallback store handles persistence.
//
// Mode rules: the registry is online when an endpoint is configured and the
// offline override is off. Online mutations that fail remotely are never
// dropped — they commit to memory and the local store and record a warning
// naming the affected member. That trades temporary remote/local divergence
// for zero data loss; orphaned local writes are not re-synced automatically.
//
// Every mutation swaps in a fresh slice, so concurrent readers (list
// rendering, the overdue monitor) always observe a complete snapshot and
// never a half-applied change.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/app/store/local"
	"github.com/coopstack/memberdocs/internal/app/store/sheets"
	"github.com/coopstack/memberdocs/internal/domain/checklist"
	"github.com/coopstack/memberdocs/internal/domain/models"
)

// ErrNotFound is returned when an operation names a member id that is not in
// the collection.
var ErrNotFound = errors.New("member not found")

// Config carries the tunables the registry needs at construction time.
// Persisted values in the local store (endpoint URL, offline override) take
// precedence over the configured defaults, matching how operators expect a
// previously saved endpoint to survive restarts.
type Config struct {
	EndpointURL     string
	OfflineOverride bool
	GraceDays       int
	Debounce        time.Duration
	NotificationCap int
}

// Registry is the mode controller plus the collection it guards.
type Registry struct {
	mu       sync.RWMutex
	members  []models.Member
	notes    []models.Notification
	endpoint string
	offline  bool
	client   *sheets.Client

	local   *local.Store
	log     *zap.Logger
	baseLog *zap.Logger
	cfg     Config

	kick     chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New builds a registry seeded from the local fallback store: persisted
// members and notifications become the initial collection so an offline
// start still shows data, and a persisted endpoint/offline override wins
// over the configured defaults.
func New(localStore *local.Store, cfg Config, logger *zap.Logger) *Registry {
	if cfg.GraceDays <= 0 {
		cfg.GraceDays = 30
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 2 * time.Second
	}
	if cfg.NotificationCap <= 0 {
		cfg.NotificationCap = 50
	}

	r := &Registry{
		local:   localStore,
		log:     logger.With(zap.String("component", "registry")),
		baseLog: logger,
		cfg:     cfg,
		kick:    make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
	}

	r.endpoint = cfg.EndpointURL
	if stored, err := localStore.EndpointURL(); err != nil {
		r.log.Warn("reading persisted endpoint failed", zap.Error(err))
	} else if stored != "" {
		r.endpoint = stored
	}
	r.offline = cfg.OfflineOverride
	if stored, err := localStore.OfflineOverride(); err != nil {
		r.log.Warn("reading persisted offline override failed", zap.Error(err))
	} else if stored {
		r.offline = true
	}
	if r.endpoint != "" {
		r.client = sheets.New(r.endpoint, logger)
	}

	if members, err := localStore.Members(); err != nil {
		r.log.Warn("reading persisted members failed", zap.Error(err))
	} else {
		r.members = normalizeIngest(members)
	}
	if notes, err := localStore.Notifications(); err != nil {
		r.log.Warn("reading persisted notifications failed", zap.Error(err))
	} else {
		r.notes = notes
	}

	return r
}

// Online reports whether mutations are routed to the remote backend.
func (r *Registry) Online() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.onlineLocked()
}

func (r *Registry) onlineLocked() bool {
	return r.endpoint != "" && !r.offline && r.client != nil
}

// remote returns the sheets client iff the registry is online right now.
func (r *Registry) remote() (*sheets.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.onlineLocked() {
		return nil, false
	}
	return r.client, true
}

// EndpointURL returns the currently configured backend endpoint ("" when
// none).
func (r *Registry) EndpointURL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.endpoint
}

// OfflineOverride reports whether the operator forced offline mode.
func (r *Registry) OfflineOverride() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.offline
}

// GraceDays returns the document grace period in days.
func (r *Registry) GraceDays() int {
	return r.cfg.GraceDays
}

// Members returns a deep-copied snapshot of the collection.
func (r *Registry) Members() []models.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return models.CloneMembers(r.members)
}

// Get returns a deep copy of one member by (normalized) id.
func (r *Registry) Get(id string) (models.Member, bool) {
	id = models.NormalizeID(id)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.members {
		if r.members[i].ID == id {
			return r.members[i].Clone(), true
		}
	}
	return models.Member{}, false
}

// NextID returns the next free member id: highest numeric id in the
// collection plus one, zero-padded.
func (r *Registry) NextID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	maxID := 0
	for i := range r.members {
		if n, err := strconv.Atoi(r.members[i].ID); err == nil && n > maxID {
			maxID = n
		}
	}
	return models.NormalizeID(strconv.Itoa(maxID + 1))
}

// Load issues READ_ALL and replaces the collection wholesale with the
// result, then mirrors it to the local store so a later offline fallback has
// recent data. On failure the collection keeps whatever it last held and the
// error is returned for the caller's retry affordance.
func (r *Registry) Load(ctx context.Context) error {
	r.mu.RLock()
	client := r.client
	online := r.onlineLocked()
	r.mu.RUnlock()
	if !online {
		return nil
	}

	members, err := client.ReadAll(ctx)
	if err != nil {
		r.log.Warn("remote load failed", zap.Error(err))
		return err
	}
	r.mu.Lock()
	r.setMembersLocked(members)
	r.persistMembersLocked()
	r.mu.Unlock()
	r.log.Info("collection loaded from remote", zap.Int("members", len(members)))
	return nil
}

// SetEndpoint saves a new backend endpoint URL, leaves offline mode, and
// performs the one READ_ALL that overwrites the collection. The load error,
// if any, is returned so the caller can offer a retry; the endpoint stays
// configured either way.
func (r *Registry) SetEndpoint(ctx context.Context, url string) error {
	r.mu.Lock()
	r.endpoint = url
	r.offline = false
	if url != "" {
		r.client = sheets.New(url, r.baseLog)
	} else {
		r.client = nil
	}
	if err := r.local.SaveEndpointURL(url); err != nil {
		r.log.Warn("persisting endpoint failed", zap.Error(err))
	}
	if err := r.local.SaveOfflineOverride(false); err != nil {
		r.log.Warn("persisting offline override failed", zap.Error(err))
	}
	r.mu.Unlock()

	if url == "" {
		return nil
	}
	return r.Load(ctx)
}

// SetOffline flips the operator's offline override. Returning to online
// triggers a reload, which overwrites the collection with remote state.
func (r *Registry) SetOffline(ctx context.Context, offline bool) error {
	r.mu.Lock()
	r.offline = offline
	if err := r.local.SaveOfflineOverride(offline); err != nil {
		r.log.Warn("persisting offline override failed", zap.Error(err))
	}
	if offline {
		// Entering offline mode: snapshot the collection so local data
		// is current.
		r.persistMembersLocked()
	}
	goingOnline := !offline && r.onlineLocked()
	r.mu.Unlock()

	if goingOnline {
		return r.Load(ctx)
	}
	return nil
}

// Add creates a new member with a fresh all-false checklist for its category
// and routes the write by mode. A failed remote add still commits the member
// locally with the ("Local", -1) sentinel and records a warning.
func (r *Registry) Add(ctx context.Context, actor, name string, cat models.Category, regDate time.Time, issuer string) (models.Member, error) {
	if name == "" {
		return models.Member{}, fmt.Errorf("name is required")
	}
	if !cat.Valid() {
		return models.Member{}, fmt.Errorf("unknown category %q", cat)
	}

	m := models.Member{
		ID:               r.NextID(),
		Name:             name,
		Category:         cat,
		RegistrationDate: regDate,
		Documents:        checklist.NewDocuments(cat),
		Issuer:           issuer,
		Auditor:          actor,
		History:          []models.AuditLogEntry{},
	}
	m.MarkLocal()

	if client, ok := r.remote(); ok {
		if err := client.Add(ctx, m); err != nil {
			r.commitLocal(m, true)
			r.Notify(models.NoteWarning, fmt.Sprintf("Connection problem: saved %q (%s) locally instead", m.Name, m.ID))
			return m, nil
		}
		// The backend assigns the row position, so a structural write is
		// followed by a full reload.
		if err := r.Load(ctx); err != nil {
			r.commitLocal(m, false)
			r.Notify(models.NoteWarning, fmt.Sprintf("Added %q (%s) remotely but reloading failed", m.Name, m.ID))
			return m, nil
		}
		r.Notify(models.NoteSuccess, fmt.Sprintf("Added member %q (%s)", m.Name, m.ID))
		if reloaded, found := r.Get(m.ID); found {
			return reloaded, nil
		}
		return m, nil
	}

	r.commitLocal(m, true)
	r.Notify(models.NoteSuccess, fmt.Sprintf("Added member %q (%s) locally", m.Name, m.ID))
	return m, nil
}

// UpdateDocuments applies a new document flag set to a member. An audit
// entry is prepended (and the auditor updated) only when at least one flag
// actually changed value. Same-partition write: the record is patched in
// place, no reload.
func (r *Registry) UpdateDocuments(ctx context.Context, actor, id string, updated map[string]bool) (models.Member, error) {
	id = models.NormalizeID(id)
	existing, ok := r.Get(id)
	if !ok {
		return models.Member{}, ErrNotFound
	}

	changes := diffDocuments(existing, updated)
	next := existing
	if len(changes) > 0 {
		next = existing.Clone()
		next.Documents = cloneFlags(updated)
		next.Auditor = actor
		next.History = append([]models.AuditLogEntry{{
			Timestamp: time.Now().UTC(),
			Auditor:   actor,
			Changes:   changes,
		}}, next.History...)
	}

	if client, ok := r.remote(); ok && next.RemoteBacked() {
		if err := client.Update(ctx, next); err != nil {
			r.replaceMember(next, true)
			r.Notify(models.NoteWarning, fmt.Sprintf("Connection problem: document changes for %q (%s) saved locally only", next.Name, next.ID))
			return next, nil
		}
		r.replaceMember(next, false)
		return next, nil
	}

	r.replaceMember(next, true)
	return next, nil
}

// UpdateDetails edits name, category, registration date, and issuer.
//
// A category change is structural: the new-category row is added, the old
// row deleted (the backend has no move primitive), documents reset to the
// new category's all-false checklist, history cleared, and the collection
// reloaded. An unchanged category is a plain in-place update that never
// touches documents or history.
func (r *Registry) UpdateDetails(ctx context.Context, actor, id, name string, cat models.Category, regDate time.Time, issuer string) (models.Member, error) {
	id = models.NormalizeID(id)
	existing, ok := r.Get(id)
	if !ok {
		return models.Member{}, ErrNotFound
	}
	if !cat.Valid() {
		return models.Member{}, fmt.Errorf("unknown category %q", cat)
	}

	next := existing.Clone()
	next.Name = name
	next.Category = cat
	next.RegistrationDate = regDate
	next.Issuer = issuer
	next.Auditor = actor

	categoryChanged := existing.Category != cat
	if categoryChanged {
		next.Documents = checklist.NewDocuments(cat)
		next.History = []models.AuditLogEntry{}
	}

	if client, ok := r.remote(); ok && existing.RemoteBacked() {
		var err error
		if categoryChanged {
			if err = client.Add(ctx, next); err == nil {
				err = client.Delete(ctx, existing.Sheet, existing.Row)
			}
			if err == nil {
				if lerr := r.Load(ctx); lerr != nil {
					r.replaceMember(next, false)
					r.Notify(models.NoteWarning, fmt.Sprintf("Moved %q (%s) remotely but reloading failed", next.Name, next.ID))
					return next, nil
				}
				r.Notify(models.NoteInfo, fmt.Sprintf("Updated member %q (%s)", next.Name, next.ID))
				if reloaded, found := r.Get(next.ID); found {
					return reloaded, nil
				}
				return next, nil
			}
		} else {
			if err = client.Update(ctx, next); err == nil {
				r.replaceMember(next, false)
				r.Notify(models.NoteInfo, fmt.Sprintf("Updated member %q (%s)", next.Name, next.ID))
				return next, nil
			}
		}
		r.replaceMember(next, true)
		r.Notify(models.NoteWarning, fmt.Sprintf("Connection problem: changes to %q (%s) saved locally only", next.Name, next.ID))
		return next, nil
	}

	r.replaceMember(next, true)
	r.Notify(models.NoteInfo, fmt.Sprintf("Updated member %q (%s)", next.Name, next.ID))
	return next, nil
}

// Delete removes a member. Online, the row is deleted remotely and the
// collection reloaded (positions after the row went stale); a remote failure
// still removes the member locally with a warning.
func (r *Registry) Delete(ctx context.Context, actor, id string) error {
	id = models.NormalizeID(id)
	existing, ok := r.Get(id)
	if !ok {
		return ErrNotFound
	}

	if client, ok := r.remote(); ok && existing.RemoteBacked() {
		if err := client.Delete(ctx, existing.Sheet, existing.Row); err != nil {
			r.removeMember(id, true)
			r.Notify(models.NoteWarning, fmt.Sprintf("Connection problem: removed %q (%s) locally only", existing.Name, existing.ID))
			return nil
		}
		if err := r.Load(ctx); err != nil {
			r.removeMember(id, false)
		}
		r.Notify(models.NoteSuccess, fmt.Sprintf("Deleted member %q (%s)", existing.Name, existing.ID))
		return nil
	}

	r.removeMember(id, true)
	r.Notify(models.NoteSuccess, fmt.Sprintf("Deleted member %q (%s)", existing.Name, existing.ID))
	return nil
}

// ReplaceAll swaps in an externally supplied collection (restore from
// backup). The replacement is local-only; it is normalized on the way in and
// persisted to the fallback store.
func (r *Registry) ReplaceAll(actor string, members []models.Member) int {
	normalized := normalizeIngest(members)
	r.mu.Lock()
	r.setMembersLocked(normalized)
	r.persistMembersLocked()
	r.mu.Unlock()
	r.Notify(models.NoteSuccess, fmt.Sprintf("Restored %d member records", len(normalized)))
	return len(normalized)
}

// ClearAll wipes the collection and the persisted snapshot.
func (r *Registry) ClearAll(actor string) {
	r.mu.Lock()
	r.setMembersLocked(nil)
	if err := r.local.ClearMembers(); err != nil {
		r.log.Warn("clearing persisted members failed", zap.Error(err))
	}
	r.mu.Unlock()
	r.Notify(models.NoteWarning, "All local member data cleared")
}

// setMembersLocked replaces the collection slice and pokes the overdue
// monitor. Callers hold the write lock.
func (r *Registry) setMembersLocked(members []models.Member) {
	if members == nil {
		members = []models.Member{}
	}
	r.members = members
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// persistMembersLocked mirrors the collection to the fallback store.
// Persistence is best-effort: a write failure (e.g. disk full) is logged and
// surfaced as a notification, but the in-memory state stays authoritative.
func (r *Registry) persistMembersLocked() {
	if err := r.local.SaveMembers(r.members); err != nil {
		r.log.Error("local persistence failed", zap.Error(err))
		r.appendNoteLocked(models.NoteError, "Local storage is full or unavailable; changes are held in memory only")
	}
}

// commitLocal appends a member to the collection, optionally persisting.
func (r *Registry) commitLocal(m models.Member, persist bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := append(models.CloneMembers(r.members), m)
	r.setMembersLocked(next)
	if persist {
		r.persistMembersLocked()
	}
}

// replaceMember swaps one member (matched by id) into a fresh slice.
func (r *Registry) replaceMember(m models.Member, persist bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := models.CloneMembers(r.members)
	for i := range next {
		if next[i].ID == m.ID {
			next[i] = m
			break
		}
	}
	r.setMembersLocked(next)
	if persist {
		r.persistMembersLocked()
	}
}

// removeMember drops one member (matched by id) from a fresh slice.
func (r *Registry) removeMember(id string, persist bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]models.Member, 0, len(r.members))
	for i := range r.members {
		if r.members[i].ID != id {
			next = append(next, r.members[i].Clone())
		}
	}
	r.setMembersLocked(next)
	if persist {
		r.persistMembersLocked()
	}
}

// diffDocuments lists the flags in updated that differ from the member's
// current documents, in checklist order first so audit entries are stable.
func diffDocuments(m models.Member, updated map[string]bool) []models.DocumentChange {
	var changes []models.DocumentChange
	seen := make(map[string]bool, len(updated))
	for _, item := range checklist.Full(m.Category) {
		if v, ok := updated[item.Name]; ok {
			seen[item.Name] = true
			if m.Documents[item.Name] != v {
				changes = append(changes, models.DocumentChange{Document: item.Name, From: m.Documents[item.Name], To: v})
			}
		}
	}
	// Stale keys from a prior category are tolerated; diff them too, in a
	// stable order.
	var rest []string
	for name := range updated {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		if m.Documents[name] != updated[name] {
			changes = append(changes, models.DocumentChange{Document: name, From: m.Documents[name], To: updated[name]})
		}
	}
	return changes
}

func cloneFlags(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// normalizeIngest re-normalizes ids and migrates legacy category labels on
// records arriving from outside the process (fallback store, restore files).
func normalizeIngest(in []models.Member) []models.Member {
	out := make([]models.Member, 0, len(in))
	for _, m := range in {
		m.ID = models.NormalizeID(m.ID)
		if !m.Category.Valid() {
			if cat, ok := models.ParseCategoryLabel(string(m.Category)); ok {
				m.Category = cat
			}
		}
		if m.Documents == nil {
			m.Documents = map[string]bool{}
		}
		if m.Sheet == "" {
			m.MarkLocal()
		}
		out = append(out, m)
	}
	return out
}
