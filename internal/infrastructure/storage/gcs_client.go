package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/gabriel-vasile/mimetype"
	"google.golang.org/api/option"

	apperrors "virtualitems/pkg/errors"
)

// ThumbnailBucket keeps item thumbnails in a GCS bucket as virtual-items/{id}/thumbnail.
type ThumbnailBucket struct {
	client     *storage.Client
	bucketName string
}

func NewThumbnailBucket(ctx context.Context, bucketName string, opts ...option.ClientOption) (*ThumbnailBucket, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("storage bucket name is required")
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &ThumbnailBucket{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func ObjectName(id string) string {
	return fmt.Sprintf("virtual-items/%s/thumbnail", id)
}

func (b *ThumbnailBucket) Download(ctx context.Context, id string) ([]byte, bool, error) {
	reader, err := b.client.Bucket(b.bucketName).Object(ObjectName(id)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.Transport("failed to open thumbnail object", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, apperrors.Transport("failed to read thumbnail object", err)
	}
	return data, true, nil
}

func (b *ThumbnailBucket) Upload(ctx context.Context, id string, data []byte) error {
	obj := b.client.Bucket(b.bucketName).Object(ObjectName(id))
	wc := obj.NewWriter(ctx)
	wc.ContentType = mimetype.Detect(data).String()
	wc.CacheControl = "public, max-age=86400"

	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return apperrors.Transport("failed to write thumbnail object", err)
	}
	if err := wc.Close(); err != nil {
		return apperrors.Transport("failed to close thumbnail writer", err)
	}
	return nil
}

func (b *ThumbnailBucket) Close() error {
	return b.client.Close()
}
