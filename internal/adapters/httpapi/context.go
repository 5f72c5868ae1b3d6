package httpapi

import (
	"context"

	"github.com/burhani-guards/guards-api/internal/domain"
)

type identityKey struct{}

type principal struct {
	token string
	id    domain.Identity
}

// WithIdentity stores the identity bound to the request's bearer token.
func WithIdentity(ctx context.Context, token string, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, principal{token: token, id: id})
}

func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	p, ok := ctx.Value(identityKey{}).(principal)
	return p.id, ok
}

func tokenFromContext(ctx context.Context) string {
	p, _ := ctx.Value(identityKey{}).(principal)
	return p.token
}
