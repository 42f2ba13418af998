package repository

import "context"

// ThumbnailRepository is the remote side of the thumbnail cache.
type ThumbnailRepository interface {
	// Download returns found=false when the item has no thumbnail.
	Download(ctx context.Context, id string) (data []byte, found bool, err error)
	Upload(ctx context.Context, id string, data []byte) error
}
