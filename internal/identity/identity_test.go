package identity

import (
	"testing"

	"content-studio/internal/storage"
)

func TestDeriveToken(t *testing.T) {
	cases := []struct {
		email, id, want string
	}{
		{"John.Doe@Example.com", "", "johndoeexamplecom"},
		{"a@b.com", "", "abcom"},
		{"", "user-42", "user42"},
		{"", "", "unknown_user"},
		{"+++", "", "unknown_user"}, // sanitizes to nothing, no id either
	}
	for _, c := range cases {
		if got := DeriveToken(c.email, c.id); got != c.want {
			t.Fatalf("DeriveToken(%q, %q) = %q, want %q", c.email, c.id, got, c.want)
		}
	}
	// determinism: same logical user, same token
	if DeriveToken("a@b.com", "") != DeriveToken("A@B.COM", "") {
		t.Fatalf("token derivation is case sensitive")
	}
}

func TestIdentityNamespace(t *testing.T) {
	if ns := Guest().Namespace(); ns != "guest" {
		t.Fatalf("guest namespace: %q", ns)
	}
	if ns := Authenticated("abcom").Namespace(); ns != "abcom" {
		t.Fatalf("user namespace: %q", ns)
	}
	if ns := Authenticated("").Namespace(); ns != FallbackToken {
		t.Fatalf("empty token namespace: %q", ns)
	}
}

func TestResolver_Resolve(t *testing.T) {
	dir := t.TempDir()
	b, err := storage.NewFileBackend(dir)
	if err != nil {
		t.Fatalf("init backend: %v", err)
	}
	r := NewResolver(b)

	// nothing stored -> guest
	if id := r.Resolve(); !id.IsGuest() {
		t.Fatalf("expected guest, got %+v", id)
	}

	// flag false -> guest even with a profile present
	_ = b.Set(storage.KeyAuthFlag, `false`)
	_ = b.Set(storage.KeyProfile, `{"name":"John","email":"a@b.com"}`)
	if id := r.Resolve(); !id.IsGuest() {
		t.Fatalf("flag false must resolve to guest")
	}

	// flag true + profile -> authenticated with sanitized email token
	_ = b.Set(storage.KeyAuthFlag, `true`)
	id := r.Resolve()
	if id.IsGuest() || id.Token() != "abcom" {
		t.Fatalf("unexpected identity: %+v", id)
	}

	// corrupt profile -> guest, read-only (bytes untouched)
	_ = b.Set(storage.KeyProfile, `{{{`)
	if id := r.Resolve(); !id.IsGuest() {
		t.Fatalf("corrupt profile must resolve to guest")
	}
	raw, _, _ := b.Get(storage.KeyProfile)
	if raw != `{{{` {
		t.Fatalf("resolver must not repair stored bytes")
	}

	// profile without email falls back to the opaque id
	_ = b.Set(storage.KeyProfile, `{"name":"John","id":"user-42"}`)
	if id := r.Resolve(); id.Token() != "user42" {
		t.Fatalf("fallback id token: %+v", id)
	}

	// neither email nor id
	_ = b.Set(storage.KeyProfile, `{"name":"John"}`)
	if id := r.Resolve(); id.Token() != FallbackToken {
		t.Fatalf("unknown user token: %+v", id)
	}
}

func TestResolver_IdentityRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b, _ := storage.NewFileBackend(dir)
	r := NewResolver(b)

	_ = b.Set(storage.KeyAuthFlag, `true`)
	_ = b.Set(storage.KeyProfile, `{"email":"a@b.com"}`)
	first := storage.BuildKey(storage.PrefixAnalysisHistory, r.Namespace())

	_ = b.Set(storage.KeyAuthFlag, `false`)
	guest := storage.BuildKey(storage.PrefixAnalysisHistory, r.Namespace())

	_ = b.Set(storage.KeyAuthFlag, `true`)
	third := storage.BuildKey(storage.PrefixAnalysisHistory, r.Namespace())

	if first != third {
		t.Fatalf("same user must map to the same key: %q vs %q", first, third)
	}
	if guest == first {
		t.Fatalf("guest key must differ from the user key")
	}
}
