package usecase

import (
	"context"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"virtualitems/internal/domain/entity"
	"virtualitems/internal/domain/repository"
	"virtualitems/internal/infrastructure/metrics"
	"virtualitems/pkg/errors"
	"virtualitems/pkg/logger"
)

const MaxThumbnailBytes = 5 << 20

type ThumbnailUseCase struct {
	store    ThumbnailStore
	remote   repository.ThumbnailRepository
	items    repository.VirtualItemReader
	identity IdentityProvider
}

func NewThumbnailUseCase(
	store ThumbnailStore,
	remote repository.ThumbnailRepository,
	items repository.VirtualItemReader,
	identity IdentityProvider,
) *ThumbnailUseCase {
	return &ThumbnailUseCase{
		store:    store,
		remote:   remote,
		items:    items,
		identity: identity,
	}
}

// Resolve returns the thumbnail for id. With allowCache a local entry answers without a remote call;
// otherwise the remote is asked and a hit is written to the local cache before returning.
// found is false when the remote has no thumbnail.
func (uc *ThumbnailUseCase) Resolve(ctx context.Context, id string, allowCache bool) ([]byte, bool, error) {
	if err := validateThumbnailID(id); err != nil {
		return nil, false, err
	}

	if allowCache {
		data, found, err := uc.store.Get(id)
		if err != nil {
			return nil, false, err
		}
		if found {
			return data, true, nil
		}
	}

	data, found, err := uc.remote.Download(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !found {
		metrics.ThumbnailLookups.WithLabelValues(metrics.TierMiss).Inc()
		return nil, false, nil
	}
	metrics.ThumbnailLookups.WithLabelValues(metrics.TierRemote).Inc()

	if err := uc.store.Put(id, data); err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Store uploads a new image and overwrites the local entry so the next Resolve sees it.
func (uc *ThumbnailUseCase) Store(ctx context.Context, id string, data []byte) error {
	if err := validateThumbnailID(id); err != nil {
		return err
	}

	identity, err := uc.identity.Identity(ctx)
	if err != nil {
		return err
	}
	if err := uc.requireOwnerOrManager(ctx, id, identity); err != nil {
		return err
	}

	if len(data) == 0 {
		return errors.Validation("image is required")
	}
	if len(data) > MaxThumbnailBytes {
		return errors.Validation("image exceeds 5MB")
	}
	if !IsImage(data) {
		return errors.Validation("file is not an image")
	}

	if err := uc.remote.Upload(ctx, id, data); err != nil {
		return err
	}

	if err := uc.store.Put(id, data); err != nil {
		logger.Warn("Failed to refresh cached thumbnail for %s: %v", id, err)
		return uc.store.Invalidate(id)
	}

	logger.Info("Thumbnail for %s uploaded by %s", id, identity.UID)
	return nil
}

// requireOwnerOrManager lets admins and creators through without a lookup. Anyone else must be
// the item's creator.
func (uc *ThumbnailUseCase) requireOwnerOrManager(ctx context.Context, id string, identity *entity.Identity) error {
	if identity.CanManageCatalog() {
		return nil
	}

	items, err := uc.items.GetByIDs(ctx, []string{id})
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.ID != id {
			continue
		}
		if item.CreatedBy != "" && item.CreatedBy == identity.UID {
			return nil
		}
		return errors.PermissionDenied("only the item owner or an admin can upload thumbnails", nil)
	}
	return errors.NotFound("Virtual item", nil)
}

func ContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

func IsImage(data []byte) bool {
	return strings.HasPrefix(mimetype.Detect(data).String(), "image/")
}

func validateThumbnailID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.Validation("virtual item id is required")
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return errors.Validation("virtual item id contains invalid characters")
	}
	return nil
}
