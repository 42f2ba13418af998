package router

import (
	"github.com/labstack/echo/v4"

	"virtualitems/internal/adapter/api/handler"
	"virtualitems/internal/adapter/api/middleware"
)

func Setup(
	e *echo.Echo,
	h *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	adminMiddleware *middleware.AdminMiddleware,
) {
	SetupHealthRouter(e, h.Health)
	SetupVirtualItemRouter(e, h, authMiddleware)
	SetupAdminRouter(e, h, authMiddleware, adminMiddleware)
	SetupWebSocketRouter(e, h.WebSocket, authMiddleware)
}
