package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"virtualitems/internal/domain/entity"
	"virtualitems/internal/domain/repository"
	"virtualitems/internal/infrastructure/metrics"
	"virtualitems/pkg/errors"
	"virtualitems/pkg/logger"
)

type PurchaseUseCase struct {
	items     repository.VirtualItemReader
	purchases repository.PurchaseRepository
	notifier  PurchaseNotifier
	now       func() time.Time
}

func NewPurchaseUseCase(
	items repository.VirtualItemReader,
	purchases repository.PurchaseRepository,
	notifier PurchaseNotifier,
) *PurchaseUseCase {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &PurchaseUseCase{
		items:     items,
		purchases: purchases,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Offers returns the purchase controls of an item: one per unlabelled price and one per price group.
func (uc *PurchaseUseCase) Offers(ctx context.Context, itemID string) ([]entity.PriceGroup, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, errors.Validation("virtual item id is required")
	}

	items, err := uc.items.GetByIDs(ctx, []string{itemID})
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.ID == itemID {
			return entity.GroupPrices(item.Prices), nil
		}
	}
	return nil, errors.NotFound("Virtual item", nil)
}

// Handle runs one purchase from Pending to a terminal state. The remote failure is returned
// unchanged and its message is carried on the result and the Failed event.
func (uc *PurchaseUseCase) Handle(ctx context.Context, cmd entity.PurchaseCommand) (*entity.PurchaseResult, error) {
	idle := &entity.PurchaseResult{RequestID: cmd.RequestID, ItemID: cmd.ItemID, State: entity.PurchaseIdle}
	if strings.TrimSpace(cmd.ItemID) == "" {
		return idle, errors.Validation("virtual item id is required")
	}
	currencies := make([]string, 0, len(cmd.CurrencyNames))
	for _, name := range cmd.CurrencyNames {
		if name = strings.TrimSpace(name); name != "" {
			currencies = append(currencies, name)
		}
	}
	if len(currencies) == 0 {
		return idle, errors.Validation("at least one currency is required")
	}
	if cmd.RequestID == "" {
		cmd.RequestID = uuid.NewString()
	}

	uc.publish(cmd, entity.PurchasePending, "")
	metrics.PurchasesPending.Inc()
	purchased, err := uc.purchases.Buy(ctx, []string{cmd.ItemID}, currencies)
	metrics.PurchasesPending.Dec()

	if err != nil {
		message := errors.Message(err)
		logger.LogPurchaseError(cmd.RequestID, cmd.ItemID, err)
		uc.publish(cmd, entity.PurchaseFailed, message)
		return &entity.PurchaseResult{
			RequestID: cmd.RequestID,
			ItemID:    cmd.ItemID,
			State:     entity.PurchaseFailed,
			Message:   message,
		}, err
	}

	message := fmt.Sprintf("Purchased %s", cmd.ItemID)
	uc.publish(cmd, entity.PurchaseSucceeded, message)
	logger.Info("Purchase %s of %s succeeded for %s", cmd.RequestID, cmd.ItemID, cmd.UserID)

	return &entity.PurchaseResult{
		RequestID:        cmd.RequestID,
		ItemID:           cmd.ItemID,
		State:            entity.PurchaseSucceeded,
		PurchasedItemIDs: purchased,
		Message:          message,
	}, nil
}

func (uc *PurchaseUseCase) publish(cmd entity.PurchaseCommand, state entity.PurchaseState, message string) {
	if state.IsTerminal() {
		metrics.Purchases.WithLabelValues(string(state)).Inc()
	}
	uc.notifier.Publish(entity.PurchaseEvent{
		RequestID: cmd.RequestID,
		UserID:    cmd.UserID,
		ItemID:    cmd.ItemID,
		State:     state,
		Message:   message,
		Timestamp: uc.now().UTC(),
	})
}
