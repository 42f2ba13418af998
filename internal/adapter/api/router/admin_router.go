package router

import (
	"github.com/labstack/echo/v4"

	"virtualitems/internal/adapter/api/handler"
	"virtualitems/internal/adapter/api/middleware"
)

func SetupAdminRouter(e *echo.Echo, h *handler.Handlers, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	// Admin routes - require authentication and a catalog manager role
	admin := e.Group("/v1/admin/virtual-items")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.POST("", h.VirtualItem.CreateVirtualItem)
	admin.POST("/import", h.Import.ImportCSV)
	admin.PUT("/:id", h.VirtualItem.UpdateVirtualItem)
	admin.PUT("/:id/name", h.VirtualItem.SetName)
	admin.PUT("/:id/description", h.VirtualItem.SetDescription)
	admin.PUT("/:id/tags", h.VirtualItem.SetTags)
	admin.PUT("/:id/properties", h.VirtualItem.SetProperties)
	admin.PUT("/:id/thumbnail", h.Thumbnail.UploadThumbnail)
}
