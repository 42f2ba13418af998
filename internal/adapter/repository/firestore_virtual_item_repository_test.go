package repository

import (
	"context"
	"fmt"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtualitems/internal/domain/entity"
	"virtualitems/pkg/errors"
)

// These tests run against the Firestore emulator, e.g.
// FIRESTORE_EMULATOR_HOST=localhost:8080 go test ./internal/adapter/repository/...
func newEmulatorClient(t *testing.T) (*firestore.Client, string) {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	client, err := firestore.NewClient(context.Background(), "demo-virtualitems")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	// Every run gets its own id prefix so runs never see each other's documents.
	return client, uuid.NewString()[:8]
}

func seedItems(t *testing.T, client *firestore.Client, items ...*entity.VirtualItem) {
	t.Helper()
	ctx := context.Background()
	for _, item := range items {
		_, err := client.Collection(virtualItemsCollection).Doc(item.ID).Set(ctx, item)
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		for _, item := range items {
			_, _ = client.Collection(virtualItemsCollection).Doc(item.ID).Delete(context.Background())
		}
	})
}

func labels(prefix, kind string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%s-%d", prefix, kind, i)
	}
	return out
}

func TestFirestoreGetByIDsSkipsMissing(t *testing.T) {
	client, run := newEmulatorClient(t)
	seedItems(t, client, &entity.VirtualItem{ID: run + "-sword", Name: "Sword", AppIDs: []string{run}})
	repo := NewFirestoreVirtualItemRepository(client, run)

	items, err := repo.GetByIDs(context.Background(), []string{run + "-sword", run + "-missing", ""})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Sword", items[0].Name)
}

func TestFirestoreGetByTagsDedupesAcrossChunks(t *testing.T) {
	client, run := newEmulatorClient(t)
	tags := labels(run, "tag", maxArrayContainsAny+1)
	seedItems(t, client,
		&entity.VirtualItem{ID: run + "-both", AppIDs: []string{run}, Tags: []string{tags[0], tags[maxArrayContainsAny]}},
		&entity.VirtualItem{ID: run + "-other-app", AppIDs: []string{run + "-elsewhere"}, Tags: []string{tags[1]}},
	)
	repo := NewFirestoreVirtualItemRepository(client, run)

	items, err := repo.GetByTags(context.Background(), tags, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{run + "-both", run + "-other-app"}, itemIDs(items))

	items, err = repo.GetByTags(context.Background(), tags, run)
	require.NoError(t, err)
	assert.Equal(t, []string{run + "-both"}, itemIDs(items))
}

func TestFirestoreGetByAppIDsLimitSpansChunks(t *testing.T) {
	client, run := newEmulatorClient(t)
	apps := labels(run, "app", maxArrayContainsAny+1)
	seedItems(t, client,
		&entity.VirtualItem{ID: run + "-first", AppIDs: []string{apps[0]}},
		&entity.VirtualItem{ID: run + "-second", AppIDs: []string{apps[maxArrayContainsAny]}},
		&entity.VirtualItem{ID: run + "-third", AppIDs: []string{apps[maxArrayContainsAny]}},
	)
	repo := NewFirestoreVirtualItemRepository(client, run)

	items, err := repo.GetByAppIDs(context.Background(), apps, 0)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	items, err = repo.GetByAppIDs(context.Background(), apps, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Contains(t, itemIDs(items), run+"-first")
}

func TestFirestoreGetTagsMissingIsNotFound(t *testing.T) {
	client, run := newEmulatorClient(t)
	repo := NewFirestoreVirtualItemRepository(client, run)

	_, err := repo.GetTags(context.Background(), run+"-missing")

	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestFirestoreGetPropertiesScopedToApp(t *testing.T) {
	client, run := newEmulatorClient(t)
	seedItems(t, client, &entity.VirtualItem{
		ID: run + "-props",
		Properties: []entity.Properties{
			{AppIDs: []string{run + "-other"}, JSON: `{"power":1}`},
			{AppIDs: []string{run}, JSON: `{"power":9}`},
		},
	})
	repo := NewFirestoreVirtualItemRepository(client, run)

	props, err := repo.GetProperties(context.Background(), run+"-props")

	require.NoError(t, err)
	assert.Equal(t, `{"power":9}`, props)
}
