package handler

import (
	"github.com/labstack/echo/v4"

	"virtualitems/internal/domain/entity"
	"virtualitems/internal/infrastructure/ratelimit"
	"virtualitems/internal/usecase"
	"virtualitems/pkg/errors"
	"virtualitems/pkg/logger"
	"virtualitems/pkg/response"
)

type PurchaseHandler struct {
	purchaseUseCase *usecase.PurchaseUseCase
	limiter         *ratelimit.PurchaseLimiter
}

func NewPurchaseHandler(purchaseUseCase *usecase.PurchaseUseCase, limiter *ratelimit.PurchaseLimiter) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseUseCase: purchaseUseCase,
		limiter:         limiter,
	}
}

type purchaseRequest struct {
	RequestID  string   `json:"requestId"`
	Currencies []string `json:"currencies" validate:"required,min=1,dive,required"`
}

// offerResponse is one purchase control with the currencies a buy button would send.
type offerResponse struct {
	Group      string             `json:"group,omitempty"`
	Offers     []entity.PriceInfo `json:"offers"`
	Currencies []string           `json:"currencies"`
}

func (h *PurchaseHandler) GetOffers(c echo.Context) error {
	groups, err := h.purchaseUseCase.Offers(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	offers := make([]offerResponse, 0, len(groups))
	for _, g := range groups {
		offers = append(offers, offerResponse{Group: g.Group, Offers: g.Offers, Currencies: g.CurrencyNames()})
	}
	return response.List(c, offers, len(offers))
}

// Purchase buys one item. Only well-formed requests count against the caller's rate limit.
// A second request by the same user for the same item while the first is pending is rejected with CONFLICT.
func (h *PurchaseHandler) Purchase(c echo.Context) error {
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}
	itemID := c.Param("id")

	var req purchaseRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.limiter.Allow(userID); err != nil {
		logger.Warn("RATE LIMIT: purchase blocked for user %s", userID)
		return response.Error(c, err)
	}

	release, err := h.limiter.Acquire(userID, itemID)
	if err != nil {
		return response.Error(c, err)
	}
	defer release()

	result, err := h.purchaseUseCase.Handle(c.Request().Context(), entity.PurchaseCommand{
		RequestID:     req.RequestID,
		UserID:        userID,
		ItemID:        itemID,
		CurrencyNames: req.Currencies,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}
