package identity

import (
	"encoding/json"

	"content-studio/internal/storage"
)

// profileClaims is the minimal slice of the stored profile the resolver
// needs. The full profile shape is owned by the profile package.
type profileClaims struct {
	Email string `json:"email"`
	ID    string `json:"id"`
}

// Resolver resolves the current identity from the authentication flag
// and profile record in process-wide persisted state. Resolution is
// synchronous, cheap and read-only: a profile that fails to parse yields
// Guest and repairing the stored bytes is left to its owner.
type Resolver struct {
	backend storage.Backend
}

func NewResolver(backend storage.Backend) *Resolver {
	return &Resolver{backend: backend}
}

func (r *Resolver) Resolve() Identity {
	raw, ok, err := r.backend.Get(storage.KeyAuthFlag)
	if err != nil || !ok {
		return Guest()
	}
	var authed bool
	if err := json.Unmarshal([]byte(raw), &authed); err != nil || !authed {
		return Guest()
	}

	raw, ok, err = r.backend.Get(storage.KeyProfile)
	if err != nil || !ok {
		return Guest()
	}
	var claims profileClaims
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		return Guest()
	}
	return Authenticated(DeriveToken(claims.Email, claims.ID))
}

// Namespace is a convenience for binding history stores: it returns the
// namespace of the identity current at call time.
func (r *Resolver) Namespace() string {
	return r.Resolve().Namespace()
}
