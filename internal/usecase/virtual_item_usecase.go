package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"virtualitems/internal/domain/entity"
	"virtualitems/internal/domain/repository"
	"virtualitems/pkg/errors"
	"virtualitems/pkg/logger"
	"virtualitems/pkg/utils"
)

type VirtualItemUseCase struct {
	reader   repository.VirtualItemReader
	writer   repository.VirtualItemWriter
	identity IdentityProvider
	appID    string
}

func NewVirtualItemUseCase(
	reader repository.VirtualItemReader,
	writer repository.VirtualItemWriter,
	identity IdentityProvider,
	appID string,
) *VirtualItemUseCase {
	return &VirtualItemUseCase{
		reader:   reader,
		writer:   writer,
		identity: identity,
		appID:    appID,
	}
}

// VirtualItemDetail is the display form of an item.
type VirtualItemDetail struct {
	*entity.VirtualItem
	CreatedAtText  string              `json:"createdAtText"`
	UpdatedAtText  string              `json:"updatedAtText"`
	StackableLabel string              `json:"stackableLabel"`
	AppProperties  string              `json:"appProperties,omitempty"`
	PriceGroups    []entity.PriceGroup `json:"priceGroups"`
}

func (uc *VirtualItemUseCase) GetByIDs(ctx context.Context, ids []string) ([]*entity.VirtualItem, error) {
	return uc.reader.GetByIDs(ctx, ids)
}

func (uc *VirtualItemUseCase) Get(ctx context.Context, id string) (*entity.VirtualItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.Validation("virtual item id is required")
	}

	items, err := uc.reader.GetByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, errors.NotFound("Virtual item", nil)
}

func (uc *VirtualItemUseCase) Detail(ctx context.Context, id string) (*VirtualItemDetail, error) {
	item, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	props, _ := item.PropertiesFor(uc.appID)
	return &VirtualItemDetail{
		VirtualItem:    item,
		CreatedAtText:  utils.FormatEpochMillis(item.CreatedAt),
		UpdatedAtText:  utils.FormatEpochMillis(item.UpdatedAt),
		StackableLabel: item.StackableLabel(),
		AppProperties:  props,
		PriceGroups:    entity.GroupPrices(item.Prices),
	}, nil
}

func (uc *VirtualItemUseCase) ListForCurrentApp(ctx context.Context) ([]*entity.VirtualItem, error) {
	return uc.reader.GetByAppID(ctx, uc.appID)
}

// ListForApps falls back to the current app when appIDs is empty. limit is clamped to MaxLimit.
func (uc *VirtualItemUseCase) ListForApps(ctx context.Context, appIDs []string, limit int) ([]*entity.VirtualItem, error) {
	if len(appIDs) == 0 {
		if uc.appID == "" {
			return nil, errors.Validation("at least one app id is required")
		}
		appIDs = []string{uc.appID}
	}
	if limit <= 0 {
		limit = utils.DefaultLimit
	}
	if limit > utils.MaxLimit {
		limit = utils.MaxLimit
	}

	return uc.reader.GetByAppIDs(ctx, appIDs, limit)
}

func (uc *VirtualItemUseCase) GetByTags(ctx context.Context, tags []string, appID string) ([]*entity.VirtualItem, error) {
	return uc.reader.GetByTags(ctx, tags, appID)
}

func (uc *VirtualItemUseCase) GetTags(ctx context.Context, id string) ([]string, error) {
	return uc.reader.GetTags(ctx, id)
}

func (uc *VirtualItemUseCase) GetProperties(ctx context.Context, id string) (string, error) {
	return uc.reader.GetProperties(ctx, id)
}

func (uc *VirtualItemUseCase) Add(ctx context.Context, item *entity.VirtualItem) (*entity.VirtualItem, error) {
	identity, err := uc.requireManager(ctx)
	if err != nil {
		return nil, err
	}
	if item == nil || strings.TrimSpace(item.Name) == "" {
		return nil, errors.Validation("virtual item name is required")
	}

	draft := normalizeItem(item)
	if draft.CreatedBy == "" {
		draft.CreatedBy = identity.UID
	}
	draft.UpdatedBy = identity.UID

	created, err := uc.writer.Add(ctx, draft)
	if err != nil {
		return nil, err
	}

	logger.Info("Virtual item %s added by %s", created.ID, identity.UID)
	return created, nil
}

func (uc *VirtualItemUseCase) Update(ctx context.Context, id string, item *entity.VirtualItem) (*entity.VirtualItem, error) {
	identity, err := uc.requireManager(ctx)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.Validation("virtual item is required")
	}

	draft := normalizeItem(item)
	draft.UpdatedBy = identity.UID

	updated, err := uc.writer.Update(ctx, id, draft)
	if err != nil {
		return nil, err
	}

	logger.Info("Virtual item %s updated by %s", id, identity.UID)
	return updated, nil
}

// normalizeItem works on a copy so the caller's item is left untouched.
func normalizeItem(item *entity.VirtualItem) *entity.VirtualItem {
	out := item.Clone()
	out.Name = strings.TrimSpace(out.Name)
	tags := out.Tags[:0]
	for _, tag := range out.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	out.Tags = tags
	return out
}

func (uc *VirtualItemUseCase) SetName(ctx context.Context, id, name, appID string) (string, error) {
	if _, err := uc.requireManager(ctx); err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", errors.Validation("name is required")
	}
	return uc.writer.SetName(ctx, id, name, appID)
}

func (uc *VirtualItemUseCase) SetDescription(ctx context.Context, id, description, appID string) (string, error) {
	if _, err := uc.requireManager(ctx); err != nil {
		return "", err
	}
	return uc.writer.SetDescription(ctx, id, description, appID)
}

func (uc *VirtualItemUseCase) SetTags(ctx context.Context, id string, tags []string, appID string) ([]string, error) {
	if _, err := uc.requireManager(ctx); err != nil {
		return nil, err
	}
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return uc.writer.SetTags(ctx, id, cleaned, appID)
}

// SetProperties accepts any well-formed JSON document; its structure is owned by the app.
func (uc *VirtualItemUseCase) SetProperties(ctx context.Context, id, properties, appID string) (string, error) {
	if _, err := uc.requireManager(ctx); err != nil {
		return "", err
	}
	if !json.Valid([]byte(properties)) {
		return "", errors.Validation("properties must be a JSON document")
	}
	return uc.writer.SetProperties(ctx, id, properties, appID)
}

func (uc *VirtualItemUseCase) requireManager(ctx context.Context) (*entity.Identity, error) {
	identity, err := uc.identity.Identity(ctx)
	if err != nil {
		return nil, err
	}
	if !identity.CanManageCatalog() {
		return nil, errors.PermissionDenied("admin or creator role required", nil)
	}
	return identity, nil
}
