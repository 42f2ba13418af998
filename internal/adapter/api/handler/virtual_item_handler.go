package handler

import (
	"github.com/labstack/echo/v4"

	"virtualitems/internal/domain/entity"
	"virtualitems/internal/usecase"
	"virtualitems/pkg/response"
	"virtualitems/pkg/utils"
)

type VirtualItemHandler struct {
	virtualItemUseCase *usecase.VirtualItemUseCase
}

func NewVirtualItemHandler(virtualItemUseCase *usecase.VirtualItemUseCase) *VirtualItemHandler {
	return &VirtualItemHandler{
		virtualItemUseCase: virtualItemUseCase,
	}
}

type virtualItemRequest struct {
	Name        string              `json:"name" validate:"required"`
	Description string              `json:"description"`
	IsStackable bool                `json:"isStackable"`
	Tags        []string            `json:"tags"`
	AppIDs      []string            `json:"appIds" validate:"required,min=1,dive,required"`
	Childs      []string            `json:"childs"`
	Properties  []entity.Properties `json:"properties"`
	Prices      []entity.PriceInfo  `json:"prices"`
}

func (r virtualItemRequest) toEntity() *entity.VirtualItem {
	return &entity.VirtualItem{
		Name:        r.Name,
		Description: r.Description,
		IsStackable: r.IsStackable,
		Tags:        r.Tags,
		AppIDs:      r.AppIDs,
		Childs:      r.Childs,
		Properties:  r.Properties,
		Prices:      r.Prices,
	}
}

type setNameRequest struct {
	Name  string `json:"name" validate:"required"`
	AppID string `json:"appId"`
}

type setDescriptionRequest struct {
	Description string `json:"description"`
	AppID       string `json:"appId"`
}

type setTagsRequest struct {
	Tags  []string `json:"tags" validate:"required"`
	AppID string   `json:"appId"`
}

type setPropertiesRequest struct {
	Properties string `json:"properties" validate:"required"`
	AppID      string `json:"appId"`
}

// ListVirtualItems lists items of the apps in app_ids, or of the current app when none are given.
func (h *VirtualItemHandler) ListVirtualItems(c echo.Context) error {
	items, err := h.virtualItemUseCase.ListForApps(
		c.Request().Context(),
		utils.GetListParam(c, "app_ids"),
		utils.GetLimitParam(c),
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.List(c, items, len(items))
}

func (h *VirtualItemHandler) GetVirtualItemsByIDs(c echo.Context) error {
	items, err := h.virtualItemUseCase.GetByIDs(c.Request().Context(), utils.GetListParam(c, "ids"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.List(c, items, len(items))
}

func (h *VirtualItemHandler) GetVirtualItemsByTags(c echo.Context) error {
	items, err := h.virtualItemUseCase.GetByTags(
		c.Request().Context(),
		utils.GetListParam(c, "tags"),
		c.QueryParam("app_id"),
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.List(c, items, len(items))
}

func (h *VirtualItemHandler) GetVirtualItem(c echo.Context) error {
	detail, err := h.virtualItemUseCase.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, detail)
}

func (h *VirtualItemHandler) GetTags(c echo.Context) error {
	tags, err := h.virtualItemUseCase.GetTags(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{"tags": tags})
}

func (h *VirtualItemHandler) GetProperties(c echo.Context) error {
	props, err := h.virtualItemUseCase.GetProperties(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{"properties": props})
}

func (h *VirtualItemHandler) CreateVirtualItem(c echo.Context) error {
	var req virtualItemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	item, err := h.virtualItemUseCase.Add(c.Request().Context(), req.toEntity())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, item)
}

func (h *VirtualItemHandler) UpdateVirtualItem(c echo.Context) error {
	var req virtualItemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	item, err := h.virtualItemUseCase.Update(c.Request().Context(), c.Param("id"), req.toEntity())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, item)
}

func (h *VirtualItemHandler) SetName(c echo.Context) error {
	var req setNameRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	name, err := h.virtualItemUseCase.SetName(c.Request().Context(), c.Param("id"), req.Name, req.AppID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{"name": name})
}

func (h *VirtualItemHandler) SetDescription(c echo.Context) error {
	var req setDescriptionRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	description, err := h.virtualItemUseCase.SetDescription(c.Request().Context(), c.Param("id"), req.Description, req.AppID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{"description": description})
}

func (h *VirtualItemHandler) SetTags(c echo.Context) error {
	var req setTagsRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	tags, err := h.virtualItemUseCase.SetTags(c.Request().Context(), c.Param("id"), req.Tags, req.AppID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{"tags": tags})
}

func (h *VirtualItemHandler) SetProperties(c echo.Context) error {
	var req setPropertiesRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	props, err := h.virtualItemUseCase.SetProperties(c.Request().Context(), c.Param("id"), req.Properties, req.AppID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{"properties": props})
}
