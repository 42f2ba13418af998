package middleware

import (
	"github.com/labstack/echo/v4"

	"virtualitems/internal/usecase"
	"virtualitems/pkg/errors"
	"virtualitems/pkg/response"
)

// AdminMiddleware admits callers allowed to manage the catalog. It runs after Authenticate.
type AdminMiddleware struct {
	identity usecase.IdentityProvider
}

func NewAdminMiddleware(identity usecase.IdentityProvider) *AdminMiddleware {
	return &AdminMiddleware{
		identity: identity,
	}
}

func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := c.Get("uid").(string); !ok {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}

		identity, err := m.identity.Identity(c.Request().Context())
		if err != nil {
			return response.Error(c, err)
		}
		if !identity.CanManageCatalog() {
			return response.Error(c, errors.PermissionDenied("Admin privileges required", nil))
		}

		return next(c)
	}
}
