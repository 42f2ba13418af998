package repository

import "context"

type PurchaseRepository interface {
	// Buy returns the ids the remote reports as purchased.
	Buy(ctx context.Context, itemIDs []string, currencyNames []string) ([]string, error)
}
