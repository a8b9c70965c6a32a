package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"brochure/internal/adapters/storage"
	domain "brochure/internal/domain/audit"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const selectColumns = `SELECT id, created_at, category, action, severity, browser_hash, subject, description, ip_address, user_agent FROM audit_event`

// SQLiteStore implements the audit Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new audit event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an audit event.
// PRE: event.ID is non-empty
// POST: Event is persisted
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (id, created_at, category, action, severity, browser_hash, subject, description, ip_address, user_agent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.UTC().Format(dateLayout), string(e.Category), string(e.Action), string(e.Severity),
		e.BrowserHash, e.Subject, e.Description, e.IPAddress, e.UserAgent)
	if err != nil {
		return fmt.Errorf("save audit event %s: %w", e.ID, err)
	}
	return nil
}

func where(f Filter) (string, []any) {
	var clauses []string
	var args []any
	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, string(f.Category))
	}
	if f.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, string(f.Action))
	}
	if !f.Since.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, f.Since.UTC().Format(dateLayout))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// List returns audit events with optional filtering, newest first.
// PRE: limit > 0
// POST: at most limit events, skipping filter.Offset
func (s *SQLiteStore) List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error) {
	clause, args := where(filter)
	args = append(args, limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx, selectColumns+clause+" ORDER BY created_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var created string
		if err := rows.Scan(&e.ID, &created, &e.Category, &e.Action, &e.Severity, &e.BrowserHash,
			&e.Subject, &e.Description, &e.IPAddress, &e.UserAgent); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(dateLayout, created)
		events = append(events, e)
	}
	return events, rows.Err()
}

// Count returns how many events match filter. Offset is ignored.
func (s *SQLiteStore) Count(ctx context.Context, filter Filter) (int, error) {
	clause, args := where(filter)
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_event"+clause, args...).Scan(&n); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("count audit events: %w", err)
	}
	return n, nil
}
