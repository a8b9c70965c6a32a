package browserflag

import (
	"context"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Store persists per-browser presence flags. It is the server-side stand-in
// for the browser's durable key-value storage.
type Store interface {
	// Values returns every flag stored for the browser, keyed by flag name.
	// POST: an unknown browser yields an empty map and no error
	Values(ctx context.Context, browserID string) (map[string]string, error)

	// Put writes one flag value.
	// PRE: browserID and key are non-empty
	// POST: Values(browserID)[key] == value
	Put(ctx context.Context, browserID, key, value string) error

	// Remove deletes one flag. Removing an absent flag is not an error.
	Remove(ctx context.Context, browserID, key string) error

	// Purge deletes flags not written since cutoff and returns how many went.
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// Hasher derives the at-rest identifier for a browser id so raw cookie values
// never reach the database.
type Hasher struct {
	key []byte
}

// NewHasher returns a Hasher keyed with secret. A nil secret gives an unkeyed hash.
// PRE: len(secret) <= 64
func NewHasher(secret []byte) Hasher {
	if len(secret) > blake2b.Size {
		secret = secret[:blake2b.Size]
	}
	return Hasher{key: secret}
}

// Hash returns the hex BLAKE2b-256 digest of browserID.
func (h Hasher) Hash(browserID string) string {
	m, err := blake2b.New256(h.key)
	if err != nil {
		// only reachable with an oversized key, which NewHasher truncates
		panic(err)
	}
	m.Write([]byte(browserID))
	return hex.EncodeToString(m.Sum(nil))
}

var _ Store = (*SQLiteStore)(nil)
