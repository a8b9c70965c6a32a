// Package sessionstate reads and writes the per-browser session flags that
// decide which views render, and notifies open tabs when they change.
package sessionstate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"brochure/internal/domain/session"
)

// FlagStore is the durable key-value storage behind the flags.
type FlagStore interface {
	Values(ctx context.Context, browserID string) (map[string]string, error)
	Put(ctx context.Context, browserID, key, value string) error
	Remove(ctx context.Context, browserID, key string) error
}

// Reader is the injectable session context handed to views.
type Reader struct {
	store FlagStore
	hub   *Hub
	now   func() time.Time
}

// NewReader creates a Reader over store that publishes to hub.
// PRE: store and hub are non-nil
func NewReader(store FlagStore, hub *Hub) *Reader {
	return &Reader{store: store, hub: hub, now: time.Now}
}

// Read returns the current flags for browserID. It never fails: a missing
// browser, a missing key or a storage error all read as "absent".
func (r *Reader) Read(ctx context.Context, browserID string) session.Flags {
	if browserID == "" {
		return session.Flags{}
	}
	values, err := r.store.Values(ctx, browserID)
	if err != nil {
		slog.Warn("session_flag_read_failed", "error", err)
		return session.Flags{}
	}
	return session.FromValues(values)
}

// Set raises key for browserID and publishes the new state.
// POST: Read(browserID).With(key, true) holds
func (r *Reader) Set(ctx context.Context, browserID string, key session.Key) (session.Flags, error) {
	if err := r.store.Put(ctx, browserID, string(key), session.SetValue); err != nil {
		return session.Flags{}, fmt.Errorf("set %s: %w", key, err)
	}
	return r.publish(ctx, browserID, key), nil
}

// Clear removes key for browserID and publishes the new state.
func (r *Reader) Clear(ctx context.Context, browserID string, key session.Key) (session.Flags, error) {
	if err := r.store.Remove(ctx, browserID, string(key)); err != nil {
		return session.Flags{}, fmt.Errorf("clear %s: %w", key, err)
	}
	return r.publish(ctx, browserID, key), nil
}

// Reset clears every raised flag for browserID, publishing one change per
// cleared key. Used when the upstream session behind the flags is lost.
// POST: Read(browserID) is all false unless an error is returned
func (r *Reader) Reset(ctx context.Context, browserID string) (session.Flags, error) {
	flags := r.Read(ctx, browserID)
	for _, k := range session.Keys {
		if !flags.Has(k) {
			continue
		}
		next, err := r.Clear(ctx, browserID, k)
		if err != nil {
			return r.Read(ctx, browserID), err
		}
		flags = next
	}
	return flags, nil
}

func (r *Reader) publish(ctx context.Context, browserID string, key session.Key) session.Flags {
	flags := r.Read(ctx, browserID)
	n := r.hub.Publish(session.Change{
		BrowserID: browserID,
		Key:       key,
		Flags:     flags,
		At:        r.now(),
	})
	slog.Debug("session_change_published", "key", string(key), "tabs", n)
	return flags
}

// Subscribe returns a channel of changes for browserID and a cancel func.
func (r *Reader) Subscribe(browserID string) (<-chan session.Change, func()) {
	return r.hub.Subscribe(browserID)
}
