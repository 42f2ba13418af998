package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"virtualitems/internal/domain/entity"
	"virtualitems/internal/infrastructure/firebase"
	"virtualitems/pkg/errors"
	"virtualitems/pkg/logger"
	"virtualitems/pkg/response"
)

const SecureTokenJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

// AuthMiddleware verifies Firebase ID tokens and forwards them to the catalog transport,
// so the remote applies the caller's own role.
type AuthMiddleware struct {
	keyFunc   jwt.Keyfunc
	projectID string
}

func NewAuthMiddleware(keyFunc jwt.Keyfunc, projectID string) *AuthMiddleware {
	return &AuthMiddleware{
		keyFunc:   keyFunc,
		projectID: projectID,
	}
}

// NewJWKSKeyfunc fetches the Firebase signing keys and refreshes them in the background until ctx is done.
func NewJWKSKeyfunc(ctx context.Context, jwksURL string) (jwt.Keyfunc, error) {
	if jwksURL == "" {
		jwksURL = SecureTokenJWKSURL
	}

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("Failed to refresh JWKS: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}
	return jwks.Keyfunc, nil
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := tokenFromRequest(c)
		if token == "" {
			return response.Error(c, errors.Unauthorized("Authorization header is required", nil))
		}

		identity, err := m.Verify(token)
		if err != nil {
			return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
		}

		attach(c, identity)
		return next(c)
	}
}

// Optional attaches the caller when a valid token is present and continues anonymously otherwise.
func (m *AuthMiddleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token := tokenFromRequest(c); token != "" {
			if identity, err := m.Verify(token); err == nil {
				attach(c, identity)
			}
		}
		return next(c)
	}
}

// Verify checks signature, issuer and audience of a Firebase ID token.
func (m *AuthMiddleware) Verify(idToken string) (*entity.Identity, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(idToken, claims, m.keyFunc, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	if m.projectID != "" {
		if !claims.VerifyAudience(m.projectID, true) {
			return nil, fmt.Errorf("unexpected audience")
		}
		if !claims.VerifyIssuer("https://securetoken.google.com/"+m.projectID, true) {
			return nil, fmt.Errorf("unexpected issuer")
		}
	}

	identity := firebase.IdentityFromClaims(claims)
	if identity.UID == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	identity.Token = idToken
	return identity, nil
}

func attach(c echo.Context, identity *entity.Identity) {
	c.Set("uid", identity.UID)
	c.Set("identity", identity)
	ctx := firebase.ContextWithIdentity(c.Request().Context(), identity)
	c.SetRequest(c.Request().WithContext(ctx))
}

// tokenFromRequest reads the bearer token, or the "token" query parameter for websocket upgrades.
func tokenFromRequest(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}
	return c.QueryParam("token")
}
