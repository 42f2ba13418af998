package repository

import (
	"context"

	"virtualitems/internal/domain/entity"
)

// VirtualItemReader serves catalog queries. Unknown ids are omitted, never reported.
type VirtualItemReader interface {
	GetByIDs(ctx context.Context, ids []string) ([]*entity.VirtualItem, error)
	GetByAppID(ctx context.Context, appID string) ([]*entity.VirtualItem, error)
	GetByAppIDs(ctx context.Context, appIDs []string, limit int) ([]*entity.VirtualItem, error)
	GetByTags(ctx context.Context, tags []string, appID string) ([]*entity.VirtualItem, error)
	GetTags(ctx context.Context, id string) ([]string, error)
	GetProperties(ctx context.Context, id string) (string, error)
}

// VirtualItemWriter mutates catalog records. appID may be empty for unscoped setters.
type VirtualItemWriter interface {
	Add(ctx context.Context, item *entity.VirtualItem) (*entity.VirtualItem, error)
	Update(ctx context.Context, id string, item *entity.VirtualItem) (*entity.VirtualItem, error)
	SetName(ctx context.Context, id, name, appID string) (string, error)
	SetDescription(ctx context.Context, id, description, appID string) (string, error)
	SetTags(ctx context.Context, id string, tags []string, appID string) ([]string, error)
	SetProperties(ctx context.Context, id, properties, appID string) (string, error)
	AddFromCSV(ctx context.Context, req entity.CSVImport) error
}

type VirtualItemRepository interface {
	VirtualItemReader
	VirtualItemWriter
}
