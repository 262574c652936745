package blog

import (
	"errors"
	"testing"
	"time"

	"content-studio/internal/history"
	"content-studio/internal/storage"
)

func newService(t *testing.T) *Service {
	t.Helper()
	b, err := storage.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("init backend: %v", err)
	}
	return NewService(b)
}

func TestSlugify(t *testing.T) {
	cases := []struct{ title, want string }{
		{"Hello, World!", "hello-world"},
		{"  10 Tips for 2025  ", "10-tips-for-2025"},
		{"already-a-slug", "already-a-slug"},
		{"???", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.title); got != c.want {
			t.Fatalf("Slugify(%q) = %q, want %q", c.title, got, c.want)
		}
	}
}

func TestService_PublishAndRetrieve(t *testing.T) {
	s := newService(t)

	rec, err := s.Publish(Post{Title: "Growing an Audience", Author: "Dana", Content: "..."})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if rec.Payload.Slug != "growing-an-audience" {
		t.Fatalf("unexpected slug: %q", rec.Payload.Slug)
	}

	got, err := s.BySlug("growing-an-audience")
	if err != nil {
		t.Fatalf("by slug: %v", err)
	}
	if got.ID != rec.ID {
		t.Fatalf("retrieved wrong post: %+v", got)
	}

	if _, err := s.BySlug("nope"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_SlugCollisionGetsDeterministicSuffix(t *testing.T) {
	s := newService(t)
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }

	first, err := s.Publish(Post{Title: "My Process"})
	if err != nil {
		t.Fatalf("publish first: %v", err)
	}
	second, err := s.Publish(Post{Title: "My Process"})
	if err != nil {
		t.Fatalf("publish second: %v", err)
	}

	if first.Payload.Slug != "my-process" {
		t.Fatalf("first slug: %q", first.Payload.Slug)
	}
	want := "my-process-1748779200000"
	if second.Payload.Slug != want {
		t.Fatalf("second slug: %q, want %q", second.Payload.Slug, want)
	}

	// both remain independently retrievable
	if _, err := s.BySlug(first.Payload.Slug); err != nil {
		t.Fatalf("first post lost: %v", err)
	}
	if _, err := s.BySlug(second.Payload.Slug); err != nil {
		t.Fatalf("second post lost: %v", err)
	}
}

func TestService_PostsAreGlobalNotPerUser(t *testing.T) {
	s := newService(t)
	if _, err := s.Publish(Post{Title: "Shared"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	// the collection lives under the bare, non-namespaced key
	posts, _ := s.Posts()
	if len(posts) != 1 {
		t.Fatalf("want 1 post, got %d", len(posts))
	}
	if got := s.store.ActiveKey(); got != storage.KeyBlogPosts {
		t.Fatalf("posts stored under %q", got)
	}
}

func TestService_Remove(t *testing.T) {
	s := newService(t)
	rec, _ := s.Publish(Post{Title: "Ephemeral"})
	if err := s.Remove(rec.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	posts, _ := s.Posts()
	if len(posts) != 0 {
		t.Fatalf("post not removed: %+v", posts)
	}
}
