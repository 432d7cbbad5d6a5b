// File path: internal/auth/auth.go
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"projectvault/internal/save"
	"projectvault/internal/store"
)

// Resolver maps bearer credentials to owner identities via the
// access_tokens table. Tokens are stored hashed; the raw value never
// touches the database.
type Resolver struct {
	store *store.Store
}

// NewResolver builds a Resolver over the given store.
func NewResolver(st *store.Store) *Resolver {
	return &Resolver{store: st}
}

// HashToken returns the hex SHA-256 digest stored for a raw token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Resolve maps an Authorization header value to an actor id. An absent
// header resolves to the anonymous service identity; a present but
// unknown credential is rejected.
func (r *Resolver) Resolve(ctx context.Context, header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return save.AnonymousActor, nil
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" || token == header {
		return "", fmt.Errorf("%w: malformed authorization header", save.ErrUnauthenticated)
	}
	ownerID, err := r.store.OwnerForToken(ctx, HashToken(token))
	if err != nil {
		if store.IsNotFound(err) {
			return "", fmt.Errorf("%w: unknown credential", save.ErrUnauthenticated)
		}
		return "", fmt.Errorf("resolve credential: %w", err)
	}
	return ownerID, nil
}

// ResolveOwner is Resolve with the anonymous identity rejected; used for
// operations that require a real owner, such as project creation.
func (r *Resolver) ResolveOwner(ctx context.Context, header string) (string, error) {
	actor, err := r.Resolve(ctx, header)
	if err != nil {
		return "", err
	}
	if actor == save.AnonymousActor {
		return "", fmt.Errorf("%w: owner credential required", save.ErrUnauthenticated)
	}
	return actor, nil
}
