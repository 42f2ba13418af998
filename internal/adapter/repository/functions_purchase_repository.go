package repository

import (
	"context"

	"virtualitems/internal/domain/repository"
	"virtualitems/pkg/errors"
)

type functionsPurchaseRepository struct {
	caller FunctionCaller
}

type buyResponse struct {
	PurchasedItemIDs []string `json:"purchasedItemIds"`
}

func NewFunctionsPurchaseRepository(caller FunctionCaller) repository.PurchaseRepository {
	return &functionsPurchaseRepository{caller: caller}
}

func (r *functionsPurchaseRepository) Buy(ctx context.Context, itemIDs []string, currencyNames []string) ([]string, error) {
	itemIDs = uniqueNonEmpty(itemIDs)
	if len(itemIDs) == 0 {
		return nil, errors.Validation("at least one item id is required")
	}

	params := map[string]interface{}{
		"itemIds":    itemIDs,
		"currencies": currencyNames,
	}

	var out buyResponse
	if err := r.caller.Call(ctx, fn("buyVirtualItems"), params, &out); err != nil {
		return nil, err
	}
	return out.PurchasedItemIDs, nil
}
