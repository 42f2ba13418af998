package usecase

import (
	"context"

	"virtualitems/internal/domain/entity"
)

// IdentityProvider reports who is making the current call.
type IdentityProvider interface {
	Identity(ctx context.Context) (*entity.Identity, error)
}

type PurchaseNotifier interface {
	Publish(event entity.PurchaseEvent)
}

// ThumbnailStore is the local tier of thumbnail resolution.
type ThumbnailStore interface {
	Get(id string) ([]byte, bool, error)
	Put(id string, data []byte) error
	Invalidate(id string) error
}

type nopNotifier struct{}

func (nopNotifier) Publish(entity.PurchaseEvent) {}
