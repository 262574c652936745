// Package profile manages the singleton profile record and the
// authentication flag, and emits identity-change notifications so
// derived display state updates immediately and per-user stores reload.
//
// The profile lives under one global key per browser, not under a
// per-identity key: it is the record identity resolution reads to
// compute the namespace token, so partitioning it by that token would
// be circular.
package profile

import (
	"errors"

	"content-studio/internal/bus"
	"content-studio/internal/cells"
	"content-studio/internal/storage"
)

var ErrNotLoggedIn = errors.New("no profile record present")

// Profile is the per-identity singleton record. Email is immutable
// once set; it anchors the namespace token.
type Profile struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Bio    string `json:"bio,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

func validateProfile(p Profile) error {
	if p.Name == "" && p.Email == "" && p.ID == "" {
		return errors.New("profile identifies nobody")
	}
	return nil
}

// Event is published on every login, logout and profile edit. Profile
// is nil after a logout.
type Event struct {
	Profile *Profile
}

// DefaultName fills a first login that arrives without a display name.
const DefaultName = "New Creator"

// Service owns the profile and auth-flag cells.
type Service struct {
	auth   *cells.Cell[bool]
	prof   *cells.Cell[Profile]
	broker *bus.Broker[Event]
}

func NewService(backend storage.Backend) *Service {
	return &Service{
		auth:   cells.New(backend, storage.KeyAuthFlag, false, nil),
		prof:   cells.New(backend, storage.KeyProfile, Profile{}, validateProfile),
		broker: bus.NewBroker[Event](),
	}
}

// Broker exposes the identity-change feed.
func (s *Service) Broker() *bus.Broker[Event] { return s.broker }

// Authenticated reports the auth flag.
func (s *Service) Authenticated() bool {
	v, ok := s.auth.Get()
	return ok && v
}

// Current returns the stored profile, if a valid one is present.
func (s *Service) Current() (Profile, bool) {
	return s.prof.Get()
}

// Login stores the profile (applying first-login defaults), raises the
// auth flag and publishes the identity change.
func (s *Service) Login(p Profile) error {
	if p.Name == "" {
		p.Name = DefaultName
	}
	if err := s.prof.Set(p); err != nil {
		return err
	}
	if err := s.auth.Set(true); err != nil {
		return err
	}
	s.broker.Publish(Event{Profile: &p})
	return nil
}

// Update edits the mutable profile fields. Email is not part of the
// editable contract and is preserved from the stored record.
func (s *Service) Update(name, bio, avatar string) (Profile, error) {
	cur, ok := s.prof.Get()
	if !ok {
		return Profile{}, ErrNotLoggedIn
	}
	if name != "" {
		cur.Name = name
	}
	cur.Bio = bio
	cur.Avatar = avatar
	if err := s.prof.Set(cur); err != nil {
		return Profile{}, err
	}
	s.broker.Publish(Event{Profile: &cur})
	return cur, nil
}

// Logout lowers the auth flag, removes the profile record and
// publishes the identity change. History collections are intentionally
// left on disk under their namespaced keys.
func (s *Service) Logout() error {
	if err := s.auth.Set(false); err != nil {
		return err
	}
	if err := s.prof.Clear(); err != nil {
		return err
	}
	s.broker.Publish(Event{Profile: nil})
	return nil
}
