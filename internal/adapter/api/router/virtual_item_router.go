package router

import (
	"github.com/labstack/echo/v4"

	"virtualitems/internal/adapter/api/handler"
	"virtualitems/internal/adapter/api/middleware"
)

func SetupVirtualItemRouter(e *echo.Echo, h *handler.Handlers, authMiddleware *middleware.AuthMiddleware) {
	// Browsing is public; a valid token is still forwarded so the catalog sees the caller
	items := e.Group("/v1/virtual-items")
	items.Use(authMiddleware.Optional)

	items.GET("", h.VirtualItem.ListVirtualItems)
	items.GET("/by-ids", h.VirtualItem.GetVirtualItemsByIDs)
	items.GET("/by-tags", h.VirtualItem.GetVirtualItemsByTags)
	items.GET("/:id", h.VirtualItem.GetVirtualItem)
	items.GET("/:id/tags", h.VirtualItem.GetTags)
	items.GET("/:id/properties", h.VirtualItem.GetProperties)
	items.GET("/:id/offers", h.Purchase.GetOffers)
	items.GET("/:id/thumbnail", h.Thumbnail.GetThumbnail)

	// The item owner may replace its thumbnail; the use case checks ownership
	items.PUT("/:id/thumbnail", h.Thumbnail.UploadThumbnail, authMiddleware.Authenticate)
	items.POST("/:id/purchase", h.Purchase.Purchase, authMiddleware.Authenticate)
}
