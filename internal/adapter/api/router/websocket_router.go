package router

import (
	"github.com/labstack/echo/v4"

	"virtualitems/internal/adapter/api/handler"
	"virtualitems/internal/adapter/api/middleware"
)

// SetupWebSocketRouter exposes purchase status events; browsers pass the ID token as ?token=.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler, authMiddleware *middleware.AuthMiddleware) {
	e.GET("/ws/purchases", wsHandler.HandlePurchaseEvents, authMiddleware.Authenticate)
}
