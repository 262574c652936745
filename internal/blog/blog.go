// Package blog keeps the user-generated blog post collection: global
// (not per-user partitioned), unbounded, with slug uniqueness enforced
// at publish time.
package blog

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"content-studio/internal/history"
	"content-studio/internal/storage"
)

// Post is one published blog post. Immutable after publishing;
// destroyed only by direct removal.
type Post struct {
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Excerpt       string   `json:"excerpt"`
	Tags          []string `json:"tags"`
	Content       string   `json:"content"`
	FeaturedImage string   `json:"featuredImage,omitempty"`
}

func validatePost(p Post) error {
	if p.Slug == "" {
		return errors.New("post has empty slug")
	}
	if p.Title == "" {
		return errors.New("post has empty title")
	}
	return nil
}

// Slugify derives the canonical slug of a title: lowercased, runs of
// non-alphanumerics collapsed to single hyphens.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Service owns the blog post collection.
type Service struct {
	store *history.Store[Post]
	now   func() time.Time

	// publishes serialize so the uniqueness check and the append see
	// the same collection
	mu sync.Mutex
}

func NewService(backend storage.Backend) *Service {
	return &Service{
		store: history.New(backend, storage.KeyBlogPosts, nil, history.Policy[Post]{Validate: validatePost}),
		now:   time.Now,
	}
}

// Publish appends the post, deriving its slug from the title. A slug
// collision is resolved deterministically by suffixing the publish
// timestamp, so both posts stay independently retrievable.
func (s *Service) Publish(post Post) (history.Record[Post], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Load()
	if err != nil {
		return history.Record[Post]{}, err
	}

	slug := post.Slug
	if slug == "" {
		slug = Slugify(post.Title)
	}
	if slug == "" {
		return history.Record[Post]{}, errors.New("post needs a title")
	}
	if slugTaken(existing, slug) {
		slug = fmt.Sprintf("%s-%d", slug, s.now().UnixMilli())
	}
	post.Slug = slug

	return s.store.Append(post)
}

// Posts loads the collection, most recently published first.
func (s *Service) Posts() ([]history.Record[Post], error) {
	return s.store.Load()
}

// BySlug retrieves a single post.
func (s *Service) BySlug(slug string) (history.Record[Post], error) {
	items, err := s.store.Load()
	if err != nil {
		return history.Record[Post]{}, err
	}
	for _, r := range items {
		if r.Payload.Slug == slug {
			return r, nil
		}
	}
	return history.Record[Post]{}, fmt.Errorf("post %q: %w", slug, history.ErrNotFound)
}

// Remove deletes a post by record id. Not reachable from the current
// UI, but part of the store contract.
func (s *Service) Remove(id string) error { return s.store.Remove(id) }

// Reload refreshes in-memory state after a cross-context change.
func (s *Service) Reload() error {
	_, err := s.store.Load()
	return err
}

func slugTaken(items []history.Record[Post], slug string) bool {
	for _, r := range items {
		if r.Payload.Slug == slug {
			return true
		}
	}
	return false
}
