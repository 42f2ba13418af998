package firebase

import (
	"context"

	"virtualitems/internal/domain/entity"
)

type contextKey int

const (
	idTokenKey contextKey = iota
	identityKey
)

// ContextWithIDToken makes the transport forward token instead of its own credentials.
func ContextWithIDToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, idTokenKey, token)
}

func IDTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(idTokenKey).(string)
	return token, ok && token != ""
}

// ContextWithIdentity stores an already verified caller.
func ContextWithIdentity(ctx context.Context, identity *entity.Identity) context.Context {
	ctx = context.WithValue(ctx, identityKey, identity)
	if identity != nil && identity.Token != "" {
		ctx = ContextWithIDToken(ctx, identity.Token)
	}
	return ctx
}

func IdentityFromContext(ctx context.Context) (*entity.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*entity.Identity)
	return identity, ok && identity != nil
}
