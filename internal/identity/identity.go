// Package identity determines the current actor (guest vs. authenticated
// user) and derives the stable namespace token that partitions per-user
// storage.
package identity

import (
	"strings"

	"content-studio/internal/storage"
)

// FallbackToken is used when neither an email nor an opaque id is
// available for an authenticated user.
const FallbackToken = "unknown_user"

// Identity is either the anonymous guest or an authenticated user
// carrying its namespace token.
type Identity struct {
	token string
}

func Guest() Identity { return Identity{} }

func Authenticated(token string) Identity {
	if token == "" {
		token = FallbackToken
	}
	return Identity{token: token}
}

func (i Identity) IsGuest() bool { return i.token == "" }

// Token returns the namespace token; empty for guests.
func (i Identity) Token() string { return i.token }

// Namespace returns the storage namespace this identity partitions
// per-user collections into.
func (i Identity) Namespace() string {
	if i.token == "" {
		return storage.GuestNamespace
	}
	return i.token
}

// DeriveToken builds the deterministic namespace token for a user:
// the email lowercased with non-alphanumeric characters stripped, or the
// fallback id when no email is set, or FallbackToken when both are
// absent. The same logical user always yields the same token.
func DeriveToken(email, fallbackID string) string {
	if t := sanitize(email); t != "" {
		return t
	}
	if t := sanitize(fallbackID); t != "" {
		return t
	}
	return FallbackToken
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
