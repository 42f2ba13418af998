package handler

import (
	"io"
	"strconv"

	"github.com/labstack/echo/v4"

	"virtualitems/internal/usecase"
	"virtualitems/pkg/errors"
	"virtualitems/pkg/response"
)

type ImportHandler struct {
	importUseCase *usecase.ImportUseCase
}

func NewImportHandler(importUseCase *usecase.ImportUseCase) *ImportHandler {
	return &ImportHandler{
		importUseCase: importUseCase,
	}
}

// ImportCSV accepts a multipart form with the CSV in "file" and the target in
// app_package_name, virtual_item_name and add_blockchain_stub.
func (h *ImportHandler) ImportCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.Validation("file is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.Validation("failed to open file"))
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, usecase.MaxImportBytes+1))
	if err != nil {
		return response.Error(c, errors.Validation("failed to read file"))
	}
	if len(content) > usecase.MaxImportBytes {
		return response.Error(c, errors.Validation("csv file exceeds 10MB"))
	}

	addStub := false
	if raw := c.FormValue("add_blockchain_stub"); raw != "" {
		addStub, err = strconv.ParseBool(raw)
		if err != nil {
			return response.Error(c, errors.Validation("add_blockchain_stub must be true or false"))
		}
	}

	req, err := h.importUseCase.Import(c.Request().Context(), usecase.ImportInput{
		AppPackageName:    c.FormValue("app_package_name"),
		VirtualItemName:   c.FormValue("virtual_item_name"),
		AddBlockchainStub: addStub,
		FileName:          fileHeader.Filename,
		Content:           string(content),
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"appPackageName":    req.AppPackageName,
		"virtualItemName":   req.VirtualItemName,
		"addBlockchainStub": req.AddBlockchainStub,
	})
}
