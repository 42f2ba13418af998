package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	appID       string
	readSource  string
	thumbSource string
}

func NewHealthHandler(appID, readSource, thumbSource string) *HealthHandler {
	return &HealthHandler{
		appID:       appID,
		readSource:  readSource,
		thumbSource: thumbSource,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":          "Server is running",
		"time":            time.Now().Format(time.RFC3339),
		"appId":           h.appID,
		"catalogSource":   h.readSource,
		"thumbnailSource": h.thumbSource,
	})
}
