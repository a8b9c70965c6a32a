package browserflag

import (
	"context"
	"fmt"
	"time"

	"brochure/internal/adapters/storage"
)

// fixed width so updated_at compares correctly as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements Store on the browser_flag table.
type SQLiteStore struct {
	db     storage.SQLDB
	hasher Hasher
	now    func() time.Time
}

// NewSQLiteStore creates a flag store that hashes browser ids with hasher.
func NewSQLiteStore(db storage.SQLDB, hasher Hasher) *SQLiteStore {
	return &SQLiteStore{db: db, hasher: hasher, now: time.Now}
}

// Values returns every flag stored for the browser.
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) Values(ctx context.Context, browserID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM browser_flag WHERE browser_hash = ?`, s.hasher.Hash(browserID))
	if err != nil {
		return nil, fmt.Errorf("read flags: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan flag: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Put upserts one flag value.
// PRE: browserID and key are non-empty
// INVARIANT: other keys of the browser are not modified
func (s *SQLiteStore) Put(ctx context.Context, browserID, key, value string) error {
	if browserID == "" || key == "" {
		return fmt.Errorf("put flag: browser id and key are required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO browser_flag (browser_hash, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (browser_hash, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.hasher.Hash(browserID), key, value, s.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("put flag %s: %w", key, err)
	}
	return nil
}

// Remove deletes one flag.
func (s *SQLiteStore) Remove(ctx context.Context, browserID, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM browser_flag WHERE browser_hash = ? AND key = ?`, s.hasher.Hash(browserID), key)
	if err != nil {
		return fmt.Errorf("remove flag %s: %w", key, err)
	}
	return nil
}

// Purge deletes flags last written before cutoff.
// POST: returns the number of rows deleted
func (s *SQLiteStore) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM browser_flag WHERE updated_at < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("purge flags: %w", err)
	}
	return res.RowsAffected()
}
