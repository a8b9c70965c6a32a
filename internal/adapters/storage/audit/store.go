package audit

import (
	"context"
	"time"

	domain "brochure/internal/domain/audit"
)

// Store defines the interface for audit event persistence.
type Store interface {
	// Save persists an audit event.
	// PRE: event has a non-empty ID
	// POST: Event is persisted
	Save(ctx context.Context, event domain.Event) error

	// List returns audit events matching filter.
	// PRE: limit > 0
	// POST: Returns events ordered by CreatedAt desc
	List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error)

	// Count returns how many events match filter.
	Count(ctx context.Context, filter Filter) (int, error)
}

// Filter narrows an audit listing. Zero values mean "any".
type Filter struct {
	Category domain.Category
	Action   domain.Action
	Since    time.Time
	Offset   int
}

var _ Store = (*SQLiteStore)(nil)
