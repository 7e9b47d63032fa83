package auth

import (
	"context"

	"github.com/pdoodle/pairing/internal/domain"
)

type contextKey struct{}

// WithIdentity attaches a verified identity to the request context.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, identity)
}

// IdentityFrom returns the verified identity the middleware attached,
// or false when the request never passed verification.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(contextKey{}).(domain.Identity)
	return identity, ok
}
