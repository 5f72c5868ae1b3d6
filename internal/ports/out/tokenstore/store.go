package tokenstore

import (
	"context"

	"github.com/burhani-guards/guards-api/internal/domain"
)

// Store binds opaque bearer tokens to the identity snapshot taken at login.
//
// Implementations must be safe for concurrent use. Entries do not expire: a token lives until Revoke
// or process restart.
type Store interface {
	Store(ctx context.Context, token string, id domain.Identity) error
	// Resolve returns ok=false when the token is unknown or revoked.
	Resolve(ctx context.Context, token string) (domain.Identity, bool, error)
	// Revoke removes the token. Revoking an unknown token is not an error.
	Revoke(ctx context.Context, token string) error
}
