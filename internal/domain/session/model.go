package session

import "time"

// Key names a persisted presence flag.
type Key string

// Flag keys
const (
	KeyLoggedIn      Key = "isLoggedIn"
	KeyAdminLoggedIn Key = "isAdminLoggedIn"
)

// Keys lists every flag key the browser can hold.
var Keys = []Key{KeyLoggedIn, KeyAdminLoggedIn}

// ParseKey converts a stored key name to a Key.
func ParseKey(s string) (Key, bool) {
	for _, k := range Keys {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// SetValue is the value written when a flag is raised. Any non-empty value counts as set.
const SetValue = "true"

// FlagSet reports whether a stored value means "present".
// An absent key reads as the empty string and is therefore not set.
func FlagSet(value string) bool {
	return value != ""
}

// Flags are UI gating hints only. They record that a login response was observed
// by this browser; the remote API still owns real authentication.
type Flags struct {
	LoggedIn      bool `json:"isLoggedIn"`
	AdminLoggedIn bool `json:"isAdminLoggedIn"`
}

// FromValues builds Flags from raw stored values keyed by flag name.
// Unknown keys are ignored.
func FromValues(values map[string]string) Flags {
	return Flags{
		LoggedIn:      FlagSet(values[string(KeyLoggedIn)]),
		AdminLoggedIn: FlagSet(values[string(KeyAdminLoggedIn)]),
	}
}

// Has reports whether the flag for key is set.
func (f Flags) Has(key Key) bool {
	switch key {
	case KeyLoggedIn:
		return f.LoggedIn
	case KeyAdminLoggedIn:
		return f.AdminLoggedIn
	}
	return false
}

// With returns a copy of f with the flag for key set to on.
// INVARIANT: f is not mutated
func (f Flags) With(key Key, on bool) Flags {
	switch key {
	case KeyLoggedIn:
		f.LoggedIn = on
	case KeyAdminLoggedIn:
		f.AdminLoggedIn = on
	}
	return f
}

// Gate classifies which flag a view requires before it renders.
type Gate int

// Gates
const (
	GatePublic Gate = iota
	GateStudent
	GateAdmin
)

// String returns the gate name used in logs and templates.
func (g Gate) String() string {
	switch g {
	case GateStudent:
		return "student"
	case GateAdmin:
		return "admin"
	default:
		return "public"
	}
}

// Allows reports whether a view behind gate g may render its content.
// Public views always render; student views need isLoggedIn; admin views need isAdminLoggedIn.
func (f Flags) Allows(g Gate) bool {
	switch g {
	case GateStudent:
		return f.LoggedIn
	case GateAdmin:
		return f.AdminLoggedIn
	default:
		return true
	}
}

// Change is published whenever a browser's flags are written.
// Subscribers receive the full post-write state, not a delta.
type Change struct {
	BrowserID string    `json:"-"`
	Key       Key       `json:"key"`
	Flags     Flags     `json:"flags"`
	At        time.Time `json:"at"`
}
