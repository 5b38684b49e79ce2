// Package fallback persists the last channel handoff succeeded on to a
// local bbolt database, so a bring-up implementation has something to fall
// back to if a future ACS invocation fails before ever reaching handoff.
// The ACS decision engine itself never reads this store: per its own
// invariants it carries no memory across invocations or AP restarts.
package fallback

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/open-acs/acsd/pkg/logx"
)

const lastGoodBucket = "last_good_channel"

// Entry is the persisted record of a successful handoff.
type Entry struct {
	Interface string    `json:"interface"`
	Channel   int       `json:"channel"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a bbolt-backed key-value store keyed by interface name.
type Store struct {
	logger *logx.Logger
	db     *bolt.DB
	mu     sync.Mutex
}

// Open opens (creating if needed) the bbolt database at path.
func Open(path string, logger *logx.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create fallback store directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open fallback store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(lastGoodBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize fallback store bucket: %w", err)
	}

	return &Store{logger: logger, db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record saves iface's last-known-good channel.
func (s *Store) Record(iface string, channel int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{Interface: iface, Channel: channel, UpdatedAt: time.Now()}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal fallback entry: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(lastGoodBucket))
		return bucket.Put([]byte(iface), data)
	})
	if err != nil {
		return fmt.Errorf("failed to persist fallback entry: %w", err)
	}

	s.logger.Debug("fallback channel recorded", "interface", iface, "channel", channel)
	return nil
}

// Lookup returns iface's last-known-good channel, if any has been recorded.
func (s *Store) Lookup(iface string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entry Entry
	found := false

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(lastGoodBucket))
		data := bucket.Get([]byte(iface))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read fallback entry: %w", err)
	}

	return entry, found, nil
}
