package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"virtualitems/internal/domain/entity"
	"virtualitems/internal/domain/repository"
	"virtualitems/pkg/errors"
)

const (
	virtualItemsCollection = "virtual_items"

	// Firestore caps array-contains-any at 30 comparison values.
	maxArrayContainsAny = 30
)

// firestoreVirtualItemRepository reads the catalog straight from Firestore. Writes stay on the
// callable functions, which own validation and permissions.
type firestoreVirtualItemRepository struct {
	client *firestore.Client
	appID  string
}

func NewFirestoreVirtualItemRepository(client *firestore.Client, appID string) repository.VirtualItemReader {
	return &firestoreVirtualItemRepository{
		client: client,
		appID:  appID,
	}
}

func (r *firestoreVirtualItemRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.VirtualItem, error) {
	ids = uniqueNonEmpty(ids)
	if len(ids) == 0 {
		return []*entity.VirtualItem{}, nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, r.client.Collection(virtualItemsCollection).Doc(id))
	}

	snaps, err := r.client.GetAll(ctx, refs)
	if err != nil {
		return nil, errors.Transport("Failed to get virtual items", err)
	}

	items := make([]*entity.VirtualItem, 0, len(snaps))
	for _, snap := range snaps {
		if snap == nil || !snap.Exists() {
			continue
		}
		item, err := decodeVirtualItem(snap)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func (r *firestoreVirtualItemRepository) GetByAppID(ctx context.Context, appID string) ([]*entity.VirtualItem, error) {
	if appID == "" {
		appID = r.appID
	}

	query := r.client.Collection(virtualItemsCollection).Where("appIds", "array-contains", appID)
	items, err := r.collect(query.Documents(ctx), nil)
	if err != nil {
		return nil, err
	}
	return nonNil(items), nil
}

func (r *firestoreVirtualItemRepository) GetByAppIDs(ctx context.Context, appIDs []string, limit int) ([]*entity.VirtualItem, error) {
	appIDs = uniqueNonEmpty(appIDs)
	if len(appIDs) == 0 {
		return nil, errors.Validation("at least one app id is required")
	}

	seen := make(map[string]struct{})
	var items []*entity.VirtualItem

	for _, batch := range chunk(appIDs, maxArrayContainsAny) {
		query := r.client.Collection(virtualItemsCollection).Where("appIds", "array-contains-any", batch)
		if limit > 0 {
			query = query.Limit(limit - len(items))
		}

		found, err := r.collect(query.Documents(ctx), seen)
		if err != nil {
			return nil, err
		}
		items = append(items, found...)

		if limit > 0 && len(items) >= limit {
			break
		}
	}

	return nonNil(items), nil
}

// GetByTags matches any tag; an item matching several tags or several query chunks appears once.
func (r *firestoreVirtualItemRepository) GetByTags(ctx context.Context, tags []string, appID string) ([]*entity.VirtualItem, error) {
	tags = uniqueNonEmpty(tags)
	if len(tags) == 0 {
		return []*entity.VirtualItem{}, nil
	}

	seen := make(map[string]struct{})
	var items []*entity.VirtualItem

	for _, batch := range chunk(tags, maxArrayContainsAny) {
		query := r.client.Collection(virtualItemsCollection).Where("tags", "array-contains-any", batch)
		found, err := r.collect(query.Documents(ctx), seen)
		if err != nil {
			return nil, err
		}
		items = append(items, found...)
	}

	if appID == "" {
		return nonNil(items), nil
	}

	scoped := make([]*entity.VirtualItem, 0, len(items))
	for _, item := range items {
		for _, id := range item.AppIDs {
			if id == appID {
				scoped = append(scoped, item)
				break
			}
		}
	}
	return scoped, nil
}

func (r *firestoreVirtualItemRepository) GetTags(ctx context.Context, id string) ([]string, error) {
	item, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Tags == nil {
		return []string{}, nil
	}
	return item.Tags, nil
}

// GetProperties returns the document scoped to the configured app, or an empty string when none applies.
func (r *firestoreVirtualItemRepository) GetProperties(ctx context.Context, id string) (string, error) {
	item, err := r.get(ctx, id)
	if err != nil {
		return "", err
	}
	props, _ := item.PropertiesFor(r.appID)
	return props, nil
}

func (r *firestoreVirtualItemRepository) get(ctx context.Context, id string) (*entity.VirtualItem, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	doc, err := r.client.Collection(virtualItemsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Virtual item", err)
		}
		return nil, errors.Transport("Failed to get virtual item", err)
	}

	return decodeVirtualItem(doc)
}

func (r *firestoreVirtualItemRepository) collect(iter *firestore.DocumentIterator, seen map[string]struct{}) ([]*entity.VirtualItem, error) {
	defer iter.Stop()

	var items []*entity.VirtualItem
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Transport("Failed to iterate virtual items", err)
		}

		item, err := decodeVirtualItem(doc)
		if err != nil {
			return nil, err
		}
		if seen != nil {
			if _, ok := seen[item.ID]; ok {
				continue
			}
			seen[item.ID] = struct{}{}
		}
		items = append(items, item)
	}

	return items, nil
}

func decodeVirtualItem(doc *firestore.DocumentSnapshot) (*entity.VirtualItem, error) {
	var item entity.VirtualItem
	if err := doc.DataTo(&item); err != nil {
		return nil, errors.Transport("Failed to parse virtual item data", err)
	}
	if item.ID == "" {
		item.ID = doc.Ref.ID
	}
	return &item, nil
}
