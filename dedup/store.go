// Package dedup holds the pipeline's only durable state: the mapping from
// content fingerprints to created remote work items. Every record is written
// through to SQLite synchronously, so a crash mid-run never forgets a created
// item and never risks mass duplicate creation.
package dedup

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"adofill/activity"
)

const (
	activityKeyPrefix = "task:"
	parentKeyPrefix   = "parent:"
)

var ErrRecordNotFound = errors.New("processed record not found")

// Record is one persisted proof that a key resulted in a remote work item.
type Record struct {
	Key        string
	RemoteID   int
	SourceType string
	CreatedAt  string
}

// Store is the SQLite-backed dedup store. All records are loaded at open so
// lookups never touch the database mid-run; writes go through synchronously.
// Single-process exclusive access is assumed.
type Store struct {
	db    *sql.DB
	cache map[string]Record
}

// Open loads the full store, failing fatally on unreadable or corrupt files.
// Stopping here is deliberate: proceeding with a broken store would recreate
// every previously processed activity.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open dedup store: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping dedup store: %w", err)
	}

	store := &Store{db: db, cache: make(map[string]Record, 256)}
	if err := store.verifyIntegrity(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.loadAll(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) verifyIntegrity() error {
	var result string
	if err := s.db.QueryRow(`PRAGMA quick_check;`).Scan(&result); err != nil {
		return fmt.Errorf("dedup store is unreadable (refusing to run): %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(result), "ok") {
		return fmt.Errorf("dedup store is corrupt (refusing to run): %s", result)
	}
	return nil
}

func (s *Store) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS processed (
	key TEXT PRIMARY KEY,
	remote_id INTEGER NOT NULL,
	source_type TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_processed_remote_id ON processed(remote_id);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create dedup schema: %w", err)
	}
	return nil
}

func (s *Store) loadAll() error {
	rows, err := s.db.Query(`SELECT key, remote_id, source_type, created_at FROM processed;`)
	if err != nil {
		return fmt.Errorf("load dedup records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var record Record
		if err := rows.Scan(&record.Key, &record.RemoteID, &record.SourceType, &record.CreatedAt); err != nil {
			return fmt.Errorf("scan dedup record: %w", err)
		}
		s.cache[record.Key] = record
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate dedup records: %w", err)
	}
	return nil
}

// ActivityKey namespaces an activity fingerprint. Parent keys use a disjoint
// prefix so the two can never collide in the shared table.
func ActivityKey(digest string) string {
	return activityKeyPrefix + digest
}

// ParentKey namespaces a monthly group digest.
func ParentKey(digest string) string {
	return parentKeyPrefix + digest
}

// Exists reports whether an activity fingerprint has already been created.
func (s *Store) Exists(digest string) bool {
	_, ok := s.cache[ActivityKey(digest)]
	return ok
}

// Get returns the processed record for an activity fingerprint.
func (s *Store) Get(digest string) (Record, bool) {
	record, ok := s.cache[ActivityKey(digest)]
	return record, ok
}

// Record persists a processed activity synchronously before returning.
func (s *Store) Record(digest string, remoteID int, source activity.SourceType) error {
	return s.write(ActivityKey(digest), remoteID, string(source))
}

// Remove deletes one activity record by fingerprint.
func (s *Store) Remove(digest string) error {
	return s.delete(ActivityKey(digest))
}

// RemoveByRemoteID deletes every record (activity or parent link) that points
// at the given remote work item. Returns the removed count; zero is not an
// error, the remote item may have been created outside this tool.
func (s *Store) RemoveByRemoteID(remoteID int) (int, error) {
	keys := make([]string, 0, 1)
	for key, record := range s.cache {
		if record.RemoteID == remoteID {
			keys = append(keys, key)
		}
	}

	for _, key := range keys {
		if err := s.delete(key); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}

// ParentExists reports whether a monthly parent has already been created.
func (s *Store) ParentExists(digest string) bool {
	_, ok := s.cache[ParentKey(digest)]
	return ok
}

// GetParent returns the parent link for a group digest.
func (s *Store) GetParent(digest string) (Record, bool) {
	record, ok := s.cache[ParentKey(digest)]
	return record, ok
}

// RecordParent persists a monthly parent link synchronously before returning.
func (s *Store) RecordParent(digest string, remoteID int) error {
	return s.write(ParentKey(digest), remoteID, "parent")
}

// CountBySource returns per-source processed counts. Parent links are
// reported under "parent".
func (s *Store) CountBySource() map[string]int {
	counts := make(map[string]int, 4)
	for _, record := range s.cache {
		counts[record.SourceType]++
	}
	return counts
}

// Len returns the total number of persisted records.
func (s *Store) Len() int {
	return len(s.cache)
}

func (s *Store) write(key string, remoteID int, sourceType string) error {
	createdAt := time.Now().UTC().Format(time.RFC3339)

	const stmt = `
INSERT INTO processed (key, remote_id, source_type, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET remote_id = excluded.remote_id, source_type = excluded.source_type;`

	if _, err := s.db.Exec(stmt, key, remoteID, sourceType, createdAt); err != nil {
		return fmt.Errorf("persist dedup record %s: %w", key, err)
	}

	s.cache[key] = Record{Key: key, RemoteID: remoteID, SourceType: sourceType, CreatedAt: createdAt}
	return nil
}

func (s *Store) delete(key string) error {
	res, err := s.db.Exec(`DELETE FROM processed WHERE key = ?;`, key)
	if err != nil {
		return fmt.Errorf("delete dedup record %s: %w", key, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read deleted row count: %w", err)
	}
	if rows == 0 {
		return ErrRecordNotFound
	}
	delete(s.cache, key)
	return nil
}
