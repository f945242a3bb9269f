package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/thorrester/cardstore/internal/core/domain"
	ports "github.com/thorrester/cardstore/internal/core/ports/output"
)

// MockRecordStore is a mock of RecordStore.
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) Insert(ctx context.Context, table domain.RegistryTable, record *domain.CardRecord) error {
	args := m.Called(ctx, table, record)
	return args.Error(0)
}

func (m *MockRecordStore) Update(ctx context.Context, table domain.RegistryTable, uid string, record *domain.CardRecord) error {
	args := m.Called(ctx, table, uid, record)
	return args.Error(0)
}

func (m *MockRecordStore) Query(ctx context.Context, table domain.RegistryTable, filter domain.CardFilter) ([]*domain.CardRecord, error) {
	args := m.Called(ctx, table, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CardRecord), args.Error(1)
}

func (m *MockRecordStore) Exists(ctx context.Context, table domain.RegistryTable, uid string) (bool, error) {
	args := m.Called(ctx, table, uid)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecordStore) Delete(ctx context.Context, table domain.RegistryTable, uid string) error {
	args := m.Called(ctx, table, uid)
	return args.Error(0)
}

func (m *MockRecordStore) ListTeams(ctx context.Context, table domain.RegistryTable) ([]string, error) {
	args := m.Called(ctx, table)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRecordStore) ListNames(ctx context.Context, table domain.RegistryTable, team string) ([]string, error) {
	args := m.Called(ctx, table, team)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockStorageBackend is a mock of StorageBackend.
type MockStorageBackend struct {
	mock.Mock
}

func (m *MockStorageBackend) Put(ctx context.Context, localPath, remotePath string) error {
	args := m.Called(ctx, localPath, remotePath)
	return args.Error(0)
}

func (m *MockStorageBackend) Get(ctx context.Context, remotePath, localPath string) error {
	args := m.Called(ctx, remotePath, localPath)
	return args.Error(0)
}

func (m *MockStorageBackend) Exists(ctx context.Context, remotePath string) (bool, error) {
	args := m.Called(ctx, remotePath)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorageBackend) List(ctx context.Context, remoteDir string) ([]string, error) {
	args := m.Called(ctx, remoteDir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockModelConverter is a mock of ModelConverter.
type MockModelConverter struct {
	mock.Mock
}

func (m *MockModelConverter) Convert(ctx context.Context, model *domain.TrainedModel, sample *domain.Table) (*ports.ConvertedModel, error) {
	args := m.Called(ctx, model, sample)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ConvertedModel), args.Error(1)
}
