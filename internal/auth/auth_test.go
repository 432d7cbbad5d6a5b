// File path: internal/auth/auth_test.go
package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"projectvault/internal/save"
	"projectvault/internal/store"
)

func newTestResolver(t *testing.T) (*Resolver, *store.Store) {
	t.Helper()
	st, err := store.OpenWithConfig(store.Config{
		Path: filepath.Join(t.TempDir(), "vault.db"),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewResolver(st), st
}

func TestResolveAbsentHeaderIsAnonymous(t *testing.T) {
	resolver, _ := newTestResolver(t)
	actor, err := resolver.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if actor != save.AnonymousActor {
		t.Fatalf("expected anonymous actor, got %q", actor)
	}
}

func TestResolveMalformedHeaderRejected(t *testing.T) {
	resolver, _ := newTestResolver(t)
	if _, err := resolver.Resolve(context.Background(), "Basic abc"); !errors.Is(err, save.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestResolveUnknownTokenRejected(t *testing.T) {
	resolver, _ := newTestResolver(t)
	if _, err := resolver.Resolve(context.Background(), "Bearer nope"); !errors.Is(err, save.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestResolveKnownToken(t *testing.T) {
	resolver, st := newTestResolver(t)
	ctx := context.Background()
	if err := st.EnsureToken(ctx, HashToken("secret"), "user-1", "test"); err != nil {
		t.Fatalf("ensure token: %v", err)
	}
	actor, err := resolver.Resolve(ctx, "Bearer secret")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if actor != "user-1" {
		t.Fatalf("unexpected actor: %q", actor)
	}
}

func TestResolveOwnerRejectsAnonymous(t *testing.T) {
	resolver, _ := newTestResolver(t)
	if _, err := resolver.ResolveOwner(context.Background(), ""); !errors.Is(err, save.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
