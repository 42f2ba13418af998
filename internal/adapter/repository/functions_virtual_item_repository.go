package repository

import (
	"context"

	"golang.org/x/sync/errgroup"

	"virtualitems/internal/domain/entity"
	"virtualitems/internal/domain/repository"
	"virtualitems/pkg/errors"
)

const DefaultIDBatchSize = 50

type functionsVirtualItemRepository struct {
	caller    FunctionCaller
	appID     string
	batchSize int
}

type virtualItemsResponse struct {
	VirtualItems []*entity.VirtualItem `json:"virtualItems"`
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

type propertiesResponse struct {
	Properties string `json:"properties"`
}

type nameResponse struct {
	Name string `json:"name"`
}

type descriptionResponse struct {
	Description string `json:"description"`
}

func NewFunctionsVirtualItemRepository(caller FunctionCaller, appID string, batchSize int) repository.VirtualItemRepository {
	if batchSize <= 0 {
		batchSize = DefaultIDBatchSize
	}
	return &functionsVirtualItemRepository{
		caller:    caller,
		appID:     appID,
		batchSize: batchSize,
	}
}

// GetByIDs splits ids into batches issued concurrently. Results keep batch order and
// contain only requested ids, each at most once.
func (r *functionsVirtualItemRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.VirtualItem, error) {
	ids = uniqueNonEmpty(ids)
	if len(ids) == 0 {
		return []*entity.VirtualItem{}, nil
	}

	batches := chunk(ids, r.batchSize)
	results := make([][]*entity.VirtualItem, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			var out virtualItemsResponse
			if err := r.caller.Call(gctx, fn("getVirtualItemsByIds"), map[string]interface{}{"ids": batch}, &out); err != nil {
				return err
			}
			results[i] = out.VirtualItems
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	requested := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}

	items := make([]*entity.VirtualItem, 0, len(ids))
	for _, batch := range results {
		for _, item := range batch {
			if item == nil {
				continue
			}
			if _, ok := requested[item.ID]; !ok {
				continue
			}
			delete(requested, item.ID)
			items = append(items, item)
		}
	}

	return items, nil
}

func (r *functionsVirtualItemRepository) GetByAppID(ctx context.Context, appID string) ([]*entity.VirtualItem, error) {
	if appID == "" {
		appID = r.appID
	}

	var out virtualItemsResponse
	if err := r.caller.Call(ctx, fn("getVirtualItems"), map[string]interface{}{"appId": appID}, &out); err != nil {
		return nil, err
	}
	return nonNil(out.VirtualItems), nil
}

func (r *functionsVirtualItemRepository) GetByAppIDs(ctx context.Context, appIDs []string, limit int) ([]*entity.VirtualItem, error) {
	appIDs = uniqueNonEmpty(appIDs)
	if len(appIDs) == 0 {
		return nil, errors.Validation("at least one app id is required")
	}

	params := map[string]interface{}{"appIds": appIDs}
	if limit > 0 {
		params["limit"] = limit
	}

	var out virtualItemsResponse
	if err := r.caller.Call(ctx, fn("getAllVirtualItemsByAppIds"), params, &out); err != nil {
		return nil, err
	}
	return nonNil(out.VirtualItems), nil
}

func (r *functionsVirtualItemRepository) GetByTags(ctx context.Context, tags []string, appID string) ([]*entity.VirtualItem, error) {
	tags = uniqueNonEmpty(tags)
	if len(tags) == 0 {
		return []*entity.VirtualItem{}, nil
	}

	params := map[string]interface{}{"tags": tags}
	if appID != "" {
		params["appId"] = appID
	}

	var out virtualItemsResponse
	if err := r.caller.Call(ctx, fn("getByTags"), params, &out); err != nil {
		return nil, err
	}
	return uniqueItems(out.VirtualItems), nil
}

func (r *functionsVirtualItemRepository) GetTags(ctx context.Context, id string) ([]string, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	var out tagsResponse
	if err := r.caller.Call(ctx, fn("getTags"), map[string]interface{}{"virtualItemId": id}, &out); err != nil {
		return nil, err
	}
	if out.Tags == nil {
		return []string{}, nil
	}
	return out.Tags, nil
}

func (r *functionsVirtualItemRepository) GetProperties(ctx context.Context, id string) (string, error) {
	if err := requireID(id); err != nil {
		return "", err
	}

	var out propertiesResponse
	if err := r.caller.Call(ctx, fn("getProperties"), map[string]interface{}{"virtualItemId": id}, &out); err != nil {
		return "", err
	}
	return out.Properties, nil
}

func (r *functionsVirtualItemRepository) Add(ctx context.Context, item *entity.VirtualItem) (*entity.VirtualItem, error) {
	if item == nil {
		return nil, errors.Validation("virtual item is required")
	}

	var out entity.VirtualItem
	if err := r.caller.Call(ctx, fn("addVirtualItem"), map[string]interface{}{"virtualItem": item}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *functionsVirtualItemRepository) Update(ctx context.Context, id string, item *entity.VirtualItem) (*entity.VirtualItem, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.Validation("virtual item is required")
	}

	var out entity.VirtualItem
	params := map[string]interface{}{"virtualItemId": id, "virtualItem": item}
	if err := r.caller.Call(ctx, fn("updateVirtualItem"), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *functionsVirtualItemRepository) SetName(ctx context.Context, id, name, appID string) (string, error) {
	if err := requireID(id); err != nil {
		return "", err
	}

	var out nameResponse
	if err := r.caller.Call(ctx, fn("setName"), scopedParams(id, appID, "name", name), &out); err != nil {
		return "", err
	}
	return out.Name, nil
}

func (r *functionsVirtualItemRepository) SetDescription(ctx context.Context, id, description, appID string) (string, error) {
	if err := requireID(id); err != nil {
		return "", err
	}

	var out descriptionResponse
	if err := r.caller.Call(ctx, fn("setDescription"), scopedParams(id, appID, "description", description), &out); err != nil {
		return "", err
	}
	return out.Description, nil
}

// SetTags stores tags; with an appID the service stores each tag as "{tag}_{appID}".
func (r *functionsVirtualItemRepository) SetTags(ctx context.Context, id string, tags []string, appID string) ([]string, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}

	var out tagsResponse
	if err := r.caller.Call(ctx, fn("setTags"), scopedParams(id, appID, "tags", tags), &out); err != nil {
		return nil, err
	}
	return out.Tags, nil
}

func (r *functionsVirtualItemRepository) SetProperties(ctx context.Context, id, properties, appID string) (string, error) {
	if err := requireID(id); err != nil {
		return "", err
	}

	var out propertiesResponse
	if err := r.caller.Call(ctx, fn("setProperties"), scopedParams(id, appID, "properties", properties), &out); err != nil {
		return "", err
	}
	return out.Properties, nil
}

func (r *functionsVirtualItemRepository) AddFromCSV(ctx context.Context, req entity.CSVImport) error {
	return r.caller.Call(ctx, fn("addFromCSV"), req, nil)
}

func scopedParams(id, appID, key string, value interface{}) map[string]interface{} {
	params := map[string]interface{}{
		"virtualItemId": id,
		key:             value,
	}
	if appID != "" {
		params["appId"] = appID
	}
	return params
}

func uniqueItems(items []*entity.VirtualItem) []*entity.VirtualItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]*entity.VirtualItem, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}

func nonNil(items []*entity.VirtualItem) []*entity.VirtualItem {
	out := make([]*entity.VirtualItem, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, item)
		}
	}
	return out
}
