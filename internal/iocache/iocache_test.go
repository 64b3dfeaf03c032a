package iocache

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/huangsam/swagent/internal/iocache/storagetest"
	"github.com/huangsam/swagent/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestInitStoresNone(t *testing.T) {
	initOnce, closeOnce = sync.Once{}, sync.Once{}
	t.Cleanup(func() {
		initOnce, closeOnce = sync.Once{}, sync.Once{}
		Manager = &CacheStoreManager{}
	})

	require.NoError(t, InitStores(schema.NoneBackend, ""))
	storage := Manager.GetCacheStorage()
	require.NotNil(t, storage)
	assert.IsType(t, &MemoryStorage{}, storage)

	// Later calls reuse the first storage.
	require.NoError(t, InitStores(schema.SQLiteBackend, "ignored"))
	assert.Same(t, storage, Manager.GetCacheStorage())

	CloseStores()
}

func TestNewCacheStorage(t *testing.T) {
	storage, err := NewCacheStorage(schema.NoneBackend, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, storage)

	storage, err = NewCacheStorage(schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLStorage{}, storage)
	require.NoError(t, storage.Close())
}

func TestPrintCacheStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none", Connected: false})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	PrintCacheStatus(&buf, schema.CacheStatus{
		Backend:        "sqlite",
		Connected:      true,
		Partitions:     []string{"starlink-pwa-v1.0"},
		TotalEntries:   0,
		TotalBodyBytes: 0,
	})
	assert.Contains(t, buf.String(), "Partitions: starlink-pwa-v1.0")
	assert.NotContains(t, buf.String(), "Last Entry")
}

func TestExecuteCacheExport(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	outputFile := filepath.Join(t.TempDir(), "entries.parquet")

	storage := NewMemoryStorage()
	assert.Error(t, ExecuteCacheExport(ctx, &buf, storage, ""))
	assert.Error(t, ExecuteCacheExport(ctx, &buf, nil, outputFile))
	assert.Error(t, ExecuteCacheExport(ctx, &buf, storage, outputFile), "nothing to export")

	c, err := storage.Open(ctx, schema.DefaultCacheVersion)
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, "http://localhost:8000/", storagetest.NewResponse("http://localhost:8000/", "shell")))

	require.NoError(t, ExecuteCacheExport(ctx, &buf, storage, outputFile))
	assert.Contains(t, buf.String(), "Exported 1 cache entries")
}

func TestExecuteCacheExportStatusError(t *testing.T) {
	storage := &MockCacheStorage{}
	storage.On("GetStatus", mock.Anything).Return(schema.CacheStatus{}, errors.New("boom"))

	err := ExecuteCacheExport(context.Background(), &bytes.Buffer{}, storage, "out.parquet")
	assert.ErrorContains(t, err, "boom")
	storage.AssertExpectations(t)
}
