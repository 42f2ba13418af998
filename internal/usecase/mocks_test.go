package usecase

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"virtualitems/internal/domain/entity"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) GetByIDs(ctx context.Context, ids []string) ([]*entity.VirtualItem, error) {
	args := m.Called(ctx, ids)
	items, _ := args.Get(0).([]*entity.VirtualItem)
	return items, args.Error(1)
}

func (m *mockReader) GetByAppID(ctx context.Context, appID string) ([]*entity.VirtualItem, error) {
	args := m.Called(ctx, appID)
	items, _ := args.Get(0).([]*entity.VirtualItem)
	return items, args.Error(1)
}

func (m *mockReader) GetByAppIDs(ctx context.Context, appIDs []string, limit int) ([]*entity.VirtualItem, error) {
	args := m.Called(ctx, appIDs, limit)
	items, _ := args.Get(0).([]*entity.VirtualItem)
	return items, args.Error(1)
}

func (m *mockReader) GetByTags(ctx context.Context, tags []string, appID string) ([]*entity.VirtualItem, error) {
	args := m.Called(ctx, tags, appID)
	items, _ := args.Get(0).([]*entity.VirtualItem)
	return items, args.Error(1)
}

func (m *mockReader) GetTags(ctx context.Context, id string) ([]string, error) {
	args := m.Called(ctx, id)
	tags, _ := args.Get(0).([]string)
	return tags, args.Error(1)
}

func (m *mockReader) GetProperties(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) Add(ctx context.Context, item *entity.VirtualItem) (*entity.VirtualItem, error) {
	args := m.Called(ctx, item)
	out, _ := args.Get(0).(*entity.VirtualItem)
	return out, args.Error(1)
}

func (m *mockWriter) Update(ctx context.Context, id string, item *entity.VirtualItem) (*entity.VirtualItem, error) {
	args := m.Called(ctx, id, item)
	out, _ := args.Get(0).(*entity.VirtualItem)
	return out, args.Error(1)
}

func (m *mockWriter) SetName(ctx context.Context, id, name, appID string) (string, error) {
	args := m.Called(ctx, id, name, appID)
	return args.String(0), args.Error(1)
}

func (m *mockWriter) SetDescription(ctx context.Context, id, description, appID string) (string, error) {
	args := m.Called(ctx, id, description, appID)
	return args.String(0), args.Error(1)
}

func (m *mockWriter) SetTags(ctx context.Context, id string, tags []string, appID string) ([]string, error) {
	args := m.Called(ctx, id, tags, appID)
	out, _ := args.Get(0).([]string)
	return out, args.Error(1)
}

func (m *mockWriter) SetProperties(ctx context.Context, id, properties, appID string) (string, error) {
	args := m.Called(ctx, id, properties, appID)
	return args.String(0), args.Error(1)
}

func (m *mockWriter) AddFromCSV(ctx context.Context, req entity.CSVImport) error {
	return m.Called(ctx, req).Error(0)
}

type staticIdentity struct {
	identity *entity.Identity
	err      error
}

func (s staticIdentity) Identity(context.Context) (*entity.Identity, error) {
	return s.identity, s.err
}

var (
	adminIdentity  = staticIdentity{identity: &entity.Identity{UID: "admin-1", Admin: true}}
	playerIdentity = staticIdentity{identity: &entity.Identity{UID: "player-1"}}
)

type mockThumbnailRemote struct {
	mock.Mock
}

func (m *mockThumbnailRemote) Download(ctx context.Context, id string) ([]byte, bool, error) {
	args := m.Called(ctx, id)
	data, _ := args.Get(0).([]byte)
	return data, args.Bool(1), args.Error(2)
}

func (m *mockThumbnailRemote) Upload(ctx context.Context, id string, data []byte) error {
	return m.Called(ctx, id, data).Error(0)
}

// memoryStore is an in-memory ThumbnailStore.
type memoryStore struct {
	entries map[string][]byte
	putErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string][]byte)}
}

func (s *memoryStore) Get(id string) ([]byte, bool, error) {
	data, ok := s.entries[id]
	return data, ok, nil
}

func (s *memoryStore) Put(id string, data []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.entries[id] = data
	return nil
}

func (s *memoryStore) Invalidate(id string) error {
	delete(s.entries, id)
	return nil
}

type mockPurchases struct {
	mock.Mock
}

func (m *mockPurchases) Buy(ctx context.Context, itemIDs []string, currencyNames []string) ([]string, error) {
	args := m.Called(ctx, itemIDs, currencyNames)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []entity.PurchaseEvent
}

func (n *recordingNotifier) Publish(event entity.PurchaseEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) states() []entity.PurchaseState {
	n.mu.Lock()
	defer n.mu.Unlock()
	states := make([]entity.PurchaseState, len(n.events))
	for i, e := range n.events {
		states[i] = e.State
	}
	return states
}
