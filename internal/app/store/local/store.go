// internal/app/store/local/store.go

// Package local is the fallback store: a small badger-backed key/value
// space the registry persists to whenever the remote backend is not in play
// (offline mode, or an online write that failed). Every key is independently
// readable and tolerates being absent — a missing key is an empty/default
// value, never an error.
package local

import (
	"encoding/json"
	"errors"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/coopstack/memberdocs/internal/domain/models"
)

// Named keys of the fallback store.
var (
	keyMembers         = []byte("members")
	keyNotifications   = []byte("notifications")
	keyEndpointURL     = []byte("endpoint_url")
	keyOfflineOverride = []byte("offline_override")
)

// Store wraps one badger database directory.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database is open and readable.
func (s *Store) Ping() error {
	return s.db.View(func(txn *badger.Txn) error { return nil })
}

// Members returns the persisted member snapshot, or nil when none exists.
func (s *Store) Members() ([]models.Member, error) {
	var members []models.Member
	ok, err := s.getJSON(keyMembers, &members)
	if err != nil || !ok {
		return nil, err
	}
	return members, nil
}

// SaveMembers replaces the persisted member snapshot.
func (s *Store) SaveMembers(members []models.Member) error {
	if members == nil {
		members = []models.Member{}
	}
	return s.setJSON(keyMembers, members)
}

// ClearMembers removes the persisted member snapshot.
func (s *Store) ClearMembers() error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(keyMembers)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Notifications returns the persisted notification log, or nil when none
// exists.
func (s *Store) Notifications() ([]models.Notification, error) {
	var notes []models.Notification
	ok, err := s.getJSON(keyNotifications, &notes)
	if err != nil || !ok {
		return nil, err
	}
	return notes, nil
}

// SaveNotifications replaces the persisted notification log.
func (s *Store) SaveNotifications(notes []models.Notification) error {
	if notes == nil {
		notes = []models.Notification{}
	}
	return s.setJSON(keyNotifications, notes)
}

// EndpointURL returns the persisted backend endpoint URL, or "" when none
// has been saved.
func (s *Store) EndpointURL() (string, error) {
	var url string
	_, err := s.getJSON(keyEndpointURL, &url)
	return url, err
}

// SaveEndpointURL persists the backend endpoint URL.
func (s *Store) SaveEndpointURL(url string) error {
	return s.setJSON(keyEndpointURL, url)
}

// OfflineOverride returns the persisted offline toggle; absent means false.
func (s *Store) OfflineOverride() (bool, error) {
	var offline bool
	_, err := s.getJSON(keyOfflineOverride, &offline)
	return offline, err
}

// SaveOfflineOverride persists the offline toggle.
func (s *Store) SaveOfflineOverride(offline bool) error {
	return s.setJSON(keyOfflineOverride, offline)
}

// getJSON reads and unmarshals one key. Returns ok=false when the key is
// absent.
func (s *Store) getJSON(key []byte, dest any) (bool, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) setJSON(key []byte, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, raw)
	})
}
