package auth

import "context"

type contextKey string

const ctxIdentityKey contextKey = "identity"

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey, ident)
}

// IdentityFromCtx returns the authenticated identity, if any.
func IdentityFromCtx(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(ctxIdentityKey).(Identity)
	return ident, ok
}
