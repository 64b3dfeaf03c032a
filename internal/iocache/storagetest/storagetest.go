// Package storagetest provides generic test cases for cache storage implementations.
package storagetest

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Provider returns a fresh, empty storage. The suite closes it.
type Provider func(t *testing.T) contract.CacheStorage

// NewResponse returns a cacheable response with the given body.
func NewResponse(url, body string) *schema.Response {
	return &schema.Response{
		URL:        url,
		Status:     http.StatusOK,
		StatusText: "OK",
		Type:       schema.BasicResponse,
		Header:     http.Header{"Content-Type": []string{"text/html"}},
		Body:       []byte(body),
	}
}

// RunAll runs every storage test case against provider.
func RunAll(t *testing.T, provider Provider) {
	TestPartitions(t, provider)
	TestPutMatch(t, provider)
	TestPutAll(t, provider)
	TestStorageMatch(t, provider)
	TestStatus(t, provider)
	TestDeletedPartition(t, provider)
	TestConcurrentPut(t, provider)
}

func open(t *testing.T, provider Provider) contract.CacheStorage {
	t.Helper()
	storage := provider(t)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

// TestPartitions tests partition creation, listing and deletion.
func TestPartitions(t *testing.T, provider Provider) {
	t.Run("Partitions", func(t *testing.T) {
		ctx := context.Background()
		storage := open(t, provider)

		keys, err := storage.Keys(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)

		_, err = storage.Open(ctx, "a-v1")
		require.NoError(t, err)
		_, err = storage.Open(ctx, "b-v2")
		require.NoError(t, err)
		// Reopening must not duplicate or reorder.
		_, err = storage.Open(ctx, "a-v1")
		require.NoError(t, err)

		keys, err = storage.Keys(ctx)
		require.NoError(t, err)
		if diff := cmp.Diff([]string{"a-v1", "b-v2"}, keys); diff != "" {
			t.Errorf("partition keys mismatch (-want +got):\n%s", diff)
		}

		has, err := storage.Has(ctx, "b-v2")
		require.NoError(t, err)
		assert.True(t, has)

		deleted, err := storage.Delete(ctx, "a-v1")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = storage.Delete(ctx, "a-v1")
		require.NoError(t, err)
		assert.False(t, deleted, "second delete reports absence")

		has, err = storage.Has(ctx, "a-v1")
		require.NoError(t, err)
		assert.False(t, has)
	})
}

// TestPutMatch tests single writes, lookups, and copy semantics.
func TestPutMatch(t *testing.T, provider Provider) {
	t.Run("PutMatch", func(t *testing.T) {
		ctx := context.Background()
		storage := open(t, provider)
		c, err := storage.Open(ctx, "v1")
		require.NoError(t, err)
		assert.Equal(t, "v1", c.Name())

		_, err = c.Match(ctx, "http://localhost:8000/missing")
		assert.ErrorIs(t, err, contract.ErrNotFound)

		resp := NewResponse("http://localhost:8000/", "shell")
		require.NoError(t, c.Put(ctx, "http://localhost:8000/", resp))
		resp.Body[0] = 'X' // must not leak into the stored copy

		got, err := c.Match(ctx, "http://localhost:8000/")
		require.NoError(t, err)
		assert.Equal(t, "shell", string(got.Body))
		assert.Equal(t, http.StatusOK, got.Status)
		assert.Equal(t, schema.BasicResponse, got.Type)
		assert.Equal(t, "text/html", got.Header.Get("Content-Type"))

		got.Body[0] = 'Y'
		again, err := c.Match(ctx, "http://localhost:8000/")
		require.NoError(t, err)
		assert.Equal(t, "shell", string(again.Body), "returned copies must be independent")

		// Last write wins.
		require.NoError(t, c.Put(ctx, "http://localhost:8000/", NewResponse("http://localhost:8000/", "shell-2")))
		got, err = c.Match(ctx, "http://localhost:8000/")
		require.NoError(t, err)
		assert.Equal(t, "shell-2", string(got.Body))

		keys, err := c.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"http://localhost:8000/"}, keys)
	})
}

// TestPutAll tests batch writes.
func TestPutAll(t *testing.T, provider Provider) {
	t.Run("PutAll", func(t *testing.T) {
		ctx := context.Background()
		storage := open(t, provider)
		c, err := storage.Open(ctx, "v1")
		require.NoError(t, err)

		var entries []contract.CacheEntry
		for _, path := range []string{"/", "/offline/", "/manifest.json"} {
			url := "http://localhost:8000" + path
			entries = append(entries, contract.CacheEntry{Key: url, Response: NewResponse(url, path)})
		}
		require.NoError(t, c.PutAll(ctx, entries))

		keys, err := c.Keys(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			"http://localhost:8000/",
			"http://localhost:8000/offline/",
			"http://localhost:8000/manifest.json",
		}, keys)

		got, err := c.Match(ctx, "http://localhost:8000/offline/")
		require.NoError(t, err)
		assert.Equal(t, "/offline/", string(got.Body))
	})
}

// TestStorageMatch tests lookups across partitions and partition deletion.
func TestStorageMatch(t *testing.T, provider Provider) {
	t.Run("StorageMatch", func(t *testing.T) {
		ctx := context.Background()
		storage := open(t, provider)
		key := "http://localhost:8000/offline/"

		_, err := storage.Match(ctx, key)
		assert.ErrorIs(t, err, contract.ErrNotFound)

		older, err := storage.Open(ctx, "a-old")
		require.NoError(t, err)
		newer, err := storage.Open(ctx, "b-new")
		require.NoError(t, err)

		require.NoError(t, newer.Put(ctx, key, NewResponse(key, "new")))
		got, err := storage.Match(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "new", string(got.Body))

		require.NoError(t, older.Put(ctx, key, NewResponse(key, "old")))
		got, err = storage.Match(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "old", string(got.Body), "oldest partition wins")

		_, err = storage.Delete(ctx, "a-old")
		require.NoError(t, err)
		got, err = storage.Match(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "new", string(got.Body))

		// Reopening a deleted partition starts empty.
		reopened, err := storage.Open(ctx, "a-old")
		require.NoError(t, err)
		_, err = reopened.Match(ctx, key)
		assert.ErrorIs(t, err, contract.ErrNotFound)
	})
}

// TestStatus tests entry listing and aggregate statistics.
func TestStatus(t *testing.T, provider Provider) {
	t.Run("Status", func(t *testing.T) {
		ctx := context.Background()
		storage := open(t, provider)

		status, err := storage.GetStatus(ctx)
		require.NoError(t, err)
		assert.True(t, status.Connected)
		assert.Zero(t, status.TotalEntries)

		c, err := storage.Open(ctx, "v1")
		require.NoError(t, err)
		require.NoError(t, c.Put(ctx, "http://localhost:8000/a", NewResponse("http://localhost:8000/a", "1234")))
		require.NoError(t, c.Put(ctx, "http://localhost:8000/b", NewResponse("http://localhost:8000/b", "56")))

		records, err := storage.Entries(ctx)
		require.NoError(t, err)
		require.Len(t, records, 2)
		for _, r := range records {
			assert.Equal(t, "v1", r.Partition)
			assert.Equal(t, http.StatusOK, r.Status)
			assert.False(t, r.StoredAt.IsZero())
		}

		status, err = storage.GetStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"v1"}, status.Partitions)
		assert.Equal(t, 2, status.TotalEntries)
		assert.Equal(t, int64(6), status.TotalBodyBytes)
		assert.False(t, status.LastEntryTime.Before(status.OldestEntryTime))
	})
}

// TestDeletedPartition tests that a handle to a deleted partition cannot write it back.
func TestDeletedPartition(t *testing.T, provider Provider) {
	t.Run("DeletedPartition", func(t *testing.T) {
		ctx := context.Background()
		storage := open(t, provider)
		key := "http://localhost:8000/static/app.css"

		old, err := storage.Open(ctx, "starlink-pwa-v0.9")
		require.NoError(t, err)
		require.NoError(t, old.Put(ctx, key, NewResponse(key, "old")))
		current, err := storage.Open(ctx, "starlink-pwa-v1.0")
		require.NoError(t, err)
		require.NoError(t, current.Put(ctx, key, NewResponse(key, "new")))

		_, err = storage.Delete(ctx, "starlink-pwa-v0.9")
		require.NoError(t, err)

		err = old.Put(ctx, key, NewResponse(key, "late"))
		assert.ErrorIs(t, err, contract.ErrNotFound)
		err = old.PutAll(ctx, []contract.CacheEntry{{Key: key, Response: NewResponse(key, "late")}})
		assert.ErrorIs(t, err, contract.ErrNotFound)
		_, err = old.Match(ctx, key)
		assert.ErrorIs(t, err, contract.ErrNotFound)

		_, err = storage.Lookup(ctx, "starlink-pwa-v0.9")
		assert.ErrorIs(t, err, contract.ErrNotFound)
		found, err := storage.Lookup(ctx, "starlink-pwa-v1.0")
		require.NoError(t, err)
		assert.Equal(t, "starlink-pwa-v1.0", found.Name())

		keys, err := storage.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"starlink-pwa-v1.0"}, keys, "Lookup never creates partitions")

		records, err := storage.Entries(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "starlink-pwa-v1.0", records[0].Partition)

		status, err := storage.GetStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, status.TotalEntries)
		assert.Equal(t, int64(len("new")), status.TotalBodyBytes)

		got, err := storage.Match(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "new", string(got.Body))

		// Reopening the name starts empty.
		reopened, err := storage.Open(ctx, "starlink-pwa-v0.9")
		require.NoError(t, err)
		reopenedKeys, err := reopened.Keys(ctx)
		require.NoError(t, err)
		assert.Empty(t, reopenedKeys)
	})
}

// TestConcurrentPut tests that concurrent writers do not lose entries.
func TestConcurrentPut(t *testing.T, provider Provider) {
	t.Run("ConcurrentPut", func(t *testing.T) {
		ctx := context.Background()
		storage := open(t, provider)
		c, err := storage.Open(ctx, "v1")
		require.NoError(t, err)

		const n = 16
		var eg errgroup.Group
		for i := range n {
			eg.Go(func() error {
				url := fmt.Sprintf("http://localhost:8000/asset/%d", i)
				return c.Put(ctx, url, NewResponse(url, url))
			})
		}
		require.NoError(t, eg.Wait())

		keys, err := c.Keys(ctx)
		require.NoError(t, err)
		assert.Len(t, keys, n)
	})
}
