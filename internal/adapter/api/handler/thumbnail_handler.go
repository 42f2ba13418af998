package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"virtualitems/internal/usecase"
	"virtualitems/pkg/errors"
	"virtualitems/pkg/response"
)

type ThumbnailHandler struct {
	thumbnailUseCase *usecase.ThumbnailUseCase
}

func NewThumbnailHandler(thumbnailUseCase *usecase.ThumbnailUseCase) *ThumbnailHandler {
	return &ThumbnailHandler{
		thumbnailUseCase: thumbnailUseCase,
	}
}

// GetThumbnail serves the image bytes. cache=false forces a remote fetch.
func (h *ThumbnailHandler) GetThumbnail(c echo.Context) error {
	allowCache := true
	if raw := c.QueryParam("cache"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return response.Error(c, errors.Validation("cache must be true or false"))
		}
		allowCache = parsed
	}

	data, found, err := h.thumbnailUseCase.Resolve(c.Request().Context(), c.Param("id"), allowCache)
	if err != nil {
		return response.Error(c, err)
	}
	if !found {
		return response.Error(c, errors.NotFound("Thumbnail", nil))
	}

	return c.Blob(http.StatusOK, usecase.ContentType(data), data)
}

// UploadThumbnail takes the raw image as the request body.
func (h *ThumbnailHandler) UploadThumbnail(c echo.Context) error {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, usecase.MaxThumbnailBytes+1))
	if err != nil {
		return response.Error(c, errors.Validation("failed to read image"))
	}

	if err := h.thumbnailUseCase.Store(c.Request().Context(), c.Param("id"), data); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"id":          c.Param("id"),
		"contentType": usecase.ContentType(data),
		"size":        len(data),
	})
}
