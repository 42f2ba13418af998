package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"virtualitems/internal/domain/entity"
	"virtualitems/pkg/errors"
)

func newVirtualItemUseCase(identity IdentityProvider) (*VirtualItemUseCase, *mockReader, *mockWriter) {
	reader := &mockReader{}
	writer := &mockWriter{}
	return NewVirtualItemUseCase(reader, writer, identity, "game-1"), reader, writer
}

func TestGetReturnsNotFoundWhenOmitted(t *testing.T) {
	uc, reader, _ := newVirtualItemUseCase(playerIdentity)
	reader.On("GetByIDs", mock.Anything, []string{"missing"}).Return([]*entity.VirtualItem{}, nil)

	_, err := uc.Get(context.Background(), "missing")

	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestDetailFormatsForDisplay(t *testing.T) {
	uc, reader, _ := newVirtualItemUseCase(playerIdentity)
	reader.On("GetByIDs", mock.Anything, []string{"a"}).Return([]*entity.VirtualItem{{
		ID:          "a",
		CreatedAt:   1677673845123,
		UpdatedAt:   1677673845123,
		IsStackable: true,
		Properties:  []entity.Properties{{AppIDs: []string{"game-1"}, JSON: `{"power":3}`}},
		Prices: []entity.PriceInfo{
			{Name: "gold"},
			{Name: "gems", Group: "bundle"},
			{Name: "coins", Group: "bundle"},
		},
	}}, nil)

	detail, err := uc.Detail(context.Background(), "a")

	require.NoError(t, err)
	assert.Equal(t, "2023-03-01 12:30:45", detail.CreatedAtText)
	assert.Equal(t, "Item is stackable", detail.StackableLabel)
	assert.Equal(t, `{"power":3}`, detail.AppProperties)
	require.Len(t, detail.PriceGroups, 2)
	assert.Equal(t, []string{"gems", "coins"}, detail.PriceGroups[1].CurrencyNames())
}

func TestListForAppsDefaultsAndClamps(t *testing.T) {
	uc, reader, _ := newVirtualItemUseCase(playerIdentity)
	reader.On("GetByAppIDs", mock.Anything, []string{"game-1"}, 100).Return([]*entity.VirtualItem{}, nil).Once()
	reader.On("GetByAppIDs", mock.Anything, []string{"x", "y"}, 500).Return([]*entity.VirtualItem{}, nil).Once()

	_, err := uc.ListForApps(context.Background(), nil, 0)
	require.NoError(t, err)
	_, err = uc.ListForApps(context.Background(), []string{"x", "y"}, 9000)
	require.NoError(t, err)

	reader.AssertExpectations(t)
}

func TestWritesRequireManagerRole(t *testing.T) {
	uc, _, writer := newVirtualItemUseCase(playerIdentity)
	ctx := context.Background()

	_, err := uc.Add(ctx, &entity.VirtualItem{Name: "Sword"})
	assert.True(t, errors.Is(err, errors.CodePermissionDenied))
	_, err = uc.Update(ctx, "a", &entity.VirtualItem{Name: "Sword"})
	assert.True(t, errors.Is(err, errors.CodePermissionDenied))
	_, err = uc.SetTags(ctx, "a", []string{"x"}, "")
	assert.True(t, errors.Is(err, errors.CodePermissionDenied))

	writer.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	writer.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatorRoleMayAdd(t *testing.T) {
	creator := staticIdentity{identity: &entity.Identity{UID: "c-1", Role: entity.RoleCreator}}
	uc, _, writer := newVirtualItemUseCase(creator)
	item := &entity.VirtualItem{Name: "Sword"}
	writer.On("Add", mock.Anything, mock.MatchedBy(func(v *entity.VirtualItem) bool {
		return v.Name == "Sword" && v.CreatedBy == "c-1"
	})).Return(&entity.VirtualItem{ID: "new", Name: "Sword"}, nil)

	created, err := uc.Add(context.Background(), item)

	require.NoError(t, err)
	assert.Equal(t, "new", created.ID)
}

func TestAddNormalizesCopyOfInput(t *testing.T) {
	uc, _, writer := newVirtualItemUseCase(adminIdentity)
	item := &entity.VirtualItem{Name: "  Sword ", Tags: []string{" weapon", "", "rare "}}
	var sent *entity.VirtualItem
	writer.On("Add", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(*entity.VirtualItem)
	}).Return(&entity.VirtualItem{ID: "new"}, nil)

	_, err := uc.Add(context.Background(), item)

	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.Equal(t, "Sword", sent.Name)
	assert.Equal(t, []string{"weapon", "rare"}, sent.Tags)
	assert.Equal(t, "admin-1", sent.CreatedBy)
	assert.Equal(t, "  Sword ", item.Name)
	assert.Equal(t, []string{" weapon", "", "rare "}, item.Tags)
	assert.Empty(t, item.CreatedBy)
}

func TestUpdateStampsUpdater(t *testing.T) {
	uc, _, writer := newVirtualItemUseCase(adminIdentity)
	writer.On("Update", mock.Anything, "a", mock.MatchedBy(func(v *entity.VirtualItem) bool {
		return v.UpdatedBy == "admin-1" && v.Name == "Shield"
	})).Return(&entity.VirtualItem{ID: "a", Name: "Shield"}, nil)

	updated, err := uc.Update(context.Background(), "a", &entity.VirtualItem{Name: "Shield "})

	require.NoError(t, err)
	assert.Equal(t, "Shield", updated.Name)
}

func TestAddRequiresName(t *testing.T) {
	uc, _, _ := newVirtualItemUseCase(adminIdentity)

	_, err := uc.Add(context.Background(), &entity.VirtualItem{Name: " "})

	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestUpdatePropagatesNotFound(t *testing.T) {
	uc, _, writer := newVirtualItemUseCase(adminIdentity)
	writer.On("Update", mock.Anything, "missing", mock.Anything).Return(nil, errors.NotFound("Virtual item", nil))

	_, err := uc.Update(context.Background(), "missing", &entity.VirtualItem{Name: "x"})

	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestSetTagsDropsBlankTags(t *testing.T) {
	uc, _, writer := newVirtualItemUseCase(adminIdentity)
	writer.On("SetTags", mock.Anything, "a", []string{"x", "y"}, "game-1").Return([]string{"x_game-1", "y_game-1"}, nil)

	tags, err := uc.SetTags(context.Background(), "a", []string{" x ", "", "y"}, "game-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"x_game-1", "y_game-1"}, tags)
}

func TestSetPropertiesRequiresJSON(t *testing.T) {
	uc, _, writer := newVirtualItemUseCase(adminIdentity)
	writer.On("SetProperties", mock.Anything, "a", `{"x":1}`, "").Return(`{"x":1}`, nil)

	_, err := uc.SetProperties(context.Background(), "a", "{not json", "")
	assert.True(t, errors.Is(err, errors.CodeValidation))

	props, err := uc.SetProperties(context.Background(), "a", `{"x":1}`, "")
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, props)
}

func TestIdentityErrorIsReturned(t *testing.T) {
	uc, _, _ := newVirtualItemUseCase(staticIdentity{err: errors.Unauthorized("authentication required", nil)})

	_, err := uc.SetName(context.Background(), "a", "n", "")

	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
}

func TestListForCurrentAppUsesConfiguredApp(t *testing.T) {
	uc, reader, _ := newVirtualItemUseCase(playerIdentity)
	reader.On("GetByAppID", mock.Anything, "game-1").Return([]*entity.VirtualItem{{ID: "a"}}, nil)

	items, err := uc.ListForCurrentApp(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 1)
	reader.AssertExpectations(t)
}
