// Package studio wires the persistence subsystem together and keeps
// in-memory state reconciled with external mutations: storage writes
// from other execution contexts and in-process identity changes both
// force every per-user collection to rebind and reload.
package studio

import (
	"context"
	"log"
	"time"

	"content-studio/internal/analysis"
	"content-studio/internal/blog"
	"content-studio/internal/cells"
	"content-studio/internal/chat"
	"content-studio/internal/history"
	"content-studio/internal/identity"
	"content-studio/internal/llm"
	"content-studio/internal/profile"
	"content-studio/internal/storage"
	"content-studio/internal/watch"
)

type Config struct {
	Backend storage.Backend
	Client  llm.Client
	// Watcher is optional; without it only in-process identity changes
	// trigger reconciliation.
	Watcher *watch.Watcher

	AnalysisLimit int
	ChatWindow    time.Duration
}

type Studio struct {
	backend  storage.Backend
	resolver *identity.Resolver
	watcher  *watch.Watcher

	Profiles *profile.Service
	Analysis *analysis.Service
	Chat     *chat.Service
	Blog     *blog.Service

	tour *cells.Cell[bool]
}

func New(cfg Config) *Studio {
	resolver := identity.NewResolver(cfg.Backend)
	ns := history.NamespaceFunc(resolver.Namespace)
	return &Studio{
		backend:  cfg.Backend,
		resolver: resolver,
		watcher:  cfg.Watcher,
		Profiles: profile.NewService(cfg.Backend),
		Analysis: analysis.NewService(cfg.Backend, ns, analysis.NewAnalyzer(cfg.Client), cfg.AnalysisLimit),
		Chat:     chat.NewService(cfg.Backend, ns, cfg.Client, cfg.ChatWindow),
		Blog:     blog.NewService(cfg.Backend),
		tour:     cells.New(cfg.Backend, storage.KeyTourCompleted, false, nil),
	}
}

// Identity resolves the identity current at call time.
func (s *Studio) Identity() identity.Identity { return s.resolver.Resolve() }

// Start subscribes to the two reconciliation feeds and runs until ctx
// is done.
func (s *Studio) Start(ctx context.Context) {
	identityEvents := s.Profiles.Broker().Subscribe(ctx)
	go func() {
		for evt := range identityEvents {
			s.onIdentityChange(evt.Payload)
		}
	}()

	if s.watcher != nil {
		mutations := s.watcher.Broker().Subscribe(ctx)
		go func() {
			for evt := range mutations {
				s.onStorageMutation(evt.Payload.Key)
			}
		}()
	}
}

// Login stores the profile, then rebinds every per-user collection to
// the new namespace.
func (s *Studio) Login(p profile.Profile) error {
	if err := s.Profiles.Login(p); err != nil {
		return err
	}
	s.reloadPerUser()
	return nil
}

// Logout removes the profile record and the active conversation key,
// leaving analysis history and blog posts on disk, then rebinds the
// per-user collections to the guest namespace.
func (s *Studio) Logout() error {
	chatKey := storage.BuildKey(storage.PrefixChatHistory, s.resolver.Namespace())
	if err := s.Profiles.Logout(); err != nil {
		return err
	}
	if err := s.backend.Remove(chatKey); err != nil {
		log.Printf("⚠️ failed to remove conversation key on logout: %v", err)
	}
	s.reloadPerUser()
	return nil
}

func (s *Studio) TourCompleted() bool {
	v, ok := s.tour.Get()
	return ok && v
}

func (s *Studio) SetTourCompleted() error { return s.tour.Set(true) }

// onIdentityChange reacts to in-process login/logout/profile edits.
// Subscribers interested in display state already got the profile
// payload from the broker; here the persistence-backed collections
// reload for correctness.
func (s *Studio) onIdentityChange(evt profile.Event) {
	if evt.Profile != nil {
		log.Printf("🔑 identity changed, rebinding per-user collections")
	} else {
		log.Printf("🔑 logged out, rebinding per-user collections to guest")
	}
	s.reloadPerUser()
}

// onStorageMutation reacts to writes made by other execution contexts.
// A mutation of an identity-defining key changes the namespace of every
// per-user collection at once; other keys refresh only the collection
// they belong to.
func (s *Studio) onStorageMutation(key string) {
	switch {
	case storage.IsIdentityKey(key):
		log.Printf("🔄 external identity mutation (%s), reloading per-user collections", key)
		s.reloadPerUser()
	case key == s.Analysis.ActiveKey():
		s.reloadLogged("analysis history", s.Analysis.Reload)
	case key == s.Chat.ActiveKey():
		s.reloadLogged("conversation", s.Chat.Reload)
	case key == storage.KeyBlogPosts:
		s.reloadLogged("blog posts", s.Blog.Reload)
	}
}

func (s *Studio) reloadPerUser() {
	s.reloadLogged("analysis history", s.Analysis.Reload)
	s.reloadLogged("conversation", s.Chat.Reload)
}

func (s *Studio) reloadLogged(what string, reload func() error) {
	if err := reload(); err != nil {
		log.Printf("⚠️ failed to reload %s: %v", what, err)
	}
}
