package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtualitems/pkg/errors"
)

func TestThumbnailUploadThenDownload(t *testing.T) {
	fake := newFakeCatalog()
	repo := NewFunctionsThumbnailRepository(fake.start(t))
	image := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}

	require.NoError(t, repo.Upload(adminContext(), "a", image))

	data, found, err := repo.Download(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, image, data)
}

func TestThumbnailDownloadMissingIsNotFound(t *testing.T) {
	fake := newFakeCatalog()
	repo := NewFunctionsThumbnailRepository(fake.start(t))

	data, found, err := repo.Download(context.Background(), "none")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
}

func TestThumbnailUploadRequiresPermission(t *testing.T) {
	fake := newFakeCatalog()
	repo := NewFunctionsThumbnailRepository(fake.start(t))

	err := repo.Upload(context.Background(), "a", []byte("img"))

	assert.True(t, errors.Is(err, errors.CodePermissionDenied))
}
