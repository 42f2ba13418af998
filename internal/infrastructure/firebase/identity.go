package firebase

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"

	"virtualitems/internal/domain/entity"
	"virtualitems/pkg/errors"
)

// ParseIdentity reads the caller claims from a Firebase ID token without verifying the signature.
// The catalog service verifies the token; the client only uses the claims to fail fast.
func ParseIdentity(idToken string) (*entity.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, fmt.Errorf("failed to parse ID token: %w", err)
	}

	identity := IdentityFromClaims(claims)
	identity.Token = idToken
	return identity, nil
}

// IdentityFromClaims maps Firebase claims: uid from user_id or sub, role from the "role" custom claim,
// admin from the boolean "admin" custom claim.
func IdentityFromClaims(claims jwt.MapClaims) *entity.Identity {
	identity := &entity.Identity{}

	if uid, ok := claims["user_id"].(string); ok && uid != "" {
		identity.UID = uid
	} else if sub, ok := claims["sub"].(string); ok {
		identity.UID = sub
	}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		identity.Role = role
	}
	if admin, ok := claims["admin"].(bool); ok {
		identity.Admin = admin
	}

	return identity
}

// IdentityResolver answers "who is calling" for the use cases. A verified identity in the context wins,
// then a forwarded ID token, then the process token source.
type IdentityResolver struct {
	tokenSource oauth2.TokenSource
	adminUIDs   map[string]struct{}
}

func NewIdentityResolver(tokenSource oauth2.TokenSource, adminUIDs []string) *IdentityResolver {
	admins := make(map[string]struct{}, len(adminUIDs))
	for _, uid := range adminUIDs {
		admins[uid] = struct{}{}
	}
	return &IdentityResolver{
		tokenSource: tokenSource,
		adminUIDs:   admins,
	}
}

func (r *IdentityResolver) Identity(ctx context.Context) (*entity.Identity, error) {
	identity, err := r.resolve(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := r.adminUIDs[identity.UID]; ok {
		identity.Admin = true
	}
	return identity, nil
}

func (r *IdentityResolver) resolve(ctx context.Context) (*entity.Identity, error) {
	if identity, ok := IdentityFromContext(ctx); ok {
		copied := *identity
		return &copied, nil
	}

	if token, ok := IDTokenFromContext(ctx); ok {
		identity, err := ParseIdentity(token)
		if err != nil {
			return nil, errors.Unauthorized("invalid ID token", err)
		}
		return identity, nil
	}

	if r.tokenSource == nil {
		return nil, errors.Unauthorized("authentication required", nil)
	}

	token, err := r.tokenSource.Token()
	if err != nil {
		return nil, errors.Unauthorized("failed to obtain ID token", err)
	}
	identity, err := ParseIdentity(token.AccessToken)
	if err != nil {
		return nil, errors.Unauthorized("invalid ID token", err)
	}
	return identity, nil
}
