package iocache

import (
	"context"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetCacheStorage implements the CacheManager interface.
func (m *MockCacheManager) GetCacheStorage() contract.CacheStorage {
	ret := m.Called()
	storage, _ := ret.Get(0).(contract.CacheStorage)
	return storage
}

// MockCacheStorage is a mock implementation of CacheStorage for testing.
type MockCacheStorage struct {
	mock.Mock
}

var _ contract.CacheStorage = &MockCacheStorage{} // Compile-time check

// Open implements the CacheStorage interface.
func (m *MockCacheStorage) Open(ctx context.Context, name string) (contract.Cache, error) {
	args := m.Called(ctx, name)
	c, _ := args.Get(0).(contract.Cache)
	return c, args.Error(1)
}

// Lookup implements the CacheStorage interface.
func (m *MockCacheStorage) Lookup(ctx context.Context, name string) (contract.Cache, error) {
	args := m.Called(ctx, name)
	c, _ := args.Get(0).(contract.Cache)
	return c, args.Error(1)
}

// Has implements the CacheStorage interface.
func (m *MockCacheStorage) Has(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// Keys implements the CacheStorage interface.
func (m *MockCacheStorage) Keys(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

// Delete implements the CacheStorage interface.
func (m *MockCacheStorage) Delete(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// Match implements the CacheStorage interface.
func (m *MockCacheStorage) Match(ctx context.Context, key string) (*schema.Response, error) {
	args := m.Called(ctx, key)
	resp, _ := args.Get(0).(*schema.Response)
	return resp, args.Error(1)
}

// Entries implements the CacheStorage interface.
func (m *MockCacheStorage) Entries(ctx context.Context) ([]schema.CacheEntryRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]schema.CacheEntryRecord)
	return records, args.Error(1)
}

// GetStatus implements the CacheStorage interface.
func (m *MockCacheStorage) GetStatus(ctx context.Context) (schema.CacheStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the CacheStorage interface.
func (m *MockCacheStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}
