package marketplace

import (
	"context"

	"github.com/goliatone/go-router"
)

// IdentityLocalsKey is the request store key the gate keeps the identity under
const IdentityLocalsKey = "identity"

var identityCtxKey = &contextKey{"identity"}

type contextKey struct {
	name string
}

// WithIdentity sets the resolved Identity in the given context
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext finds the identity stored by the access gate
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(identityCtxKey).(Identity)
	return raw, ok && raw != nil
}

// IdentityFromRouter reads the identity from the request store, falling back
// to the request context
func IdentityFromRouter(c router.Context) (Identity, bool) {
	if raw, ok := c.Get(IdentityLocalsKey, nil).(Identity); ok && raw != nil {
		return raw, true
	}
	return IdentityFromContext(c.Context())
}
