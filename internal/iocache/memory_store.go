package iocache

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
)

type memoryEntry struct {
	resp     *schema.Response
	storedAt time.Time
}

// memoryCache is one in-memory partition.
type memoryCache struct {
	name    string
	mu      sync.RWMutex
	order   []string // insertion order of keys
	entries map[string]memoryEntry
	deleted bool
	now     func() time.Time
}

var _ contract.Cache = &memoryCache{} // Compile-time check

// Name returns the partition name.
func (c *memoryCache) Name() string { return c.name }

// Match returns a copy of the stored response.
func (c *memoryCache) Match(_ context.Context, key string) (*schema.Response, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, contract.ErrNotFound
	}
	return e.resp.Clone(), nil
}

// Put stores a copy of resp.
func (c *memoryCache) Put(_ context.Context, key string, resp *schema.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleted {
		return fmt.Errorf("partition %s: %w", c.name, contract.ErrNotFound)
	}
	c.putLocked(key, resp)
	return nil
}

// PutAll stores all entries under one lock so readers never observe a partial batch.
func (c *memoryCache) PutAll(_ context.Context, entries []contract.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleted {
		return fmt.Errorf("partition %s: %w", c.name, contract.ErrNotFound)
	}
	for _, e := range entries {
		c.putLocked(e.Key, e.Response)
	}
	return nil
}

func (c *memoryCache) putLocked(key string, resp *schema.Response) {
	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = memoryEntry{resp: resp.Clone(), storedAt: c.now()}
}

// Keys lists the stored request keys in insertion order.
func (c *memoryCache) Keys(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order), nil
}

// MemoryStorage keeps partitions in process memory. Nothing survives a restart.
type MemoryStorage struct {
	mu         sync.RWMutex
	order      []string
	partitions map[string]*memoryCache
	now        func() time.Time
}

var _ contract.CacheStorage = &MemoryStorage{} // Compile-time check

// NewMemoryStorage returns an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		partitions: make(map[string]*memoryCache),
		now:        time.Now,
	}
}

// Open returns the named partition, creating it if absent.
func (s *MemoryStorage) Open(_ context.Context, name string) (contract.Cache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.partitions[name]; ok {
		return c, nil
	}
	c := &memoryCache{name: name, entries: make(map[string]memoryEntry), now: s.now}
	s.partitions[name] = c
	s.order = append(s.order, name)
	return c, nil
}

// Lookup returns the named partition without creating it.
func (s *MemoryStorage) Lookup(_ context.Context, name string) (contract.Cache, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.partitions[name]
	if !ok {
		return nil, contract.ErrNotFound
	}
	return c, nil
}

// Has reports whether the named partition exists.
func (s *MemoryStorage) Has(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.partitions[name]
	return ok, nil
}

// Keys lists partition names in creation order.
func (s *MemoryStorage) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order), nil
}

// Delete removes the named partition.
func (s *MemoryStorage) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.partitions[name]
	if !ok {
		return false, nil
	}
	c.mu.Lock()
	c.deleted = true
	c.order = nil
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	delete(s.partitions, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
	return true, nil
}

// Match looks key up in every partition, oldest first.
func (s *MemoryStorage) Match(ctx context.Context, key string) (*schema.Response, error) {
	s.mu.RLock()
	caches := make([]*memoryCache, 0, len(s.order))
	for _, name := range s.order {
		caches = append(caches, s.partitions[name])
	}
	s.mu.RUnlock()

	for _, c := range caches {
		resp, err := c.Match(ctx, key)
		if err == nil {
			return resp, nil
		}
	}
	return nil, contract.ErrNotFound
}

// Entries describes every stored response.
func (s *MemoryStorage) Entries(_ context.Context) ([]schema.CacheEntryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []schema.CacheEntryRecord
	for _, name := range s.order {
		c := s.partitions[name]
		c.mu.RLock()
		for _, key := range c.order {
			e := c.entries[key]
			records = append(records, schema.CacheEntryRecord{
				Partition: name,
				Key:       key,
				Status:    e.resp.Status,
				Type:      e.resp.Type,
				BodyBytes: int64(len(e.resp.Body)),
				StoredAt:  e.storedAt,
			})
		}
		c.mu.RUnlock()
	}
	return records, nil
}

// GetStatus returns status information about the storage.
func (s *MemoryStorage) GetStatus(ctx context.Context) (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.NoneBackend), Connected: true}
	status.Partitions, _ = s.Keys(ctx)
	records, _ := s.Entries(ctx)
	fillEntryStats(&status, records)
	return status, nil
}

// Close is a no-op.
func (s *MemoryStorage) Close() error { return nil }

// fillEntryStats aggregates entry records into status totals.
func fillEntryStats(status *schema.CacheStatus, records []schema.CacheEntryRecord) {
	status.TotalEntries = len(records)
	for _, r := range records {
		status.TotalBodyBytes += r.BodyBytes
		if status.LastEntryTime.IsZero() || r.StoredAt.After(status.LastEntryTime) {
			status.LastEntryTime = r.StoredAt
		}
		if status.OldestEntryTime.IsZero() || r.StoredAt.Before(status.OldestEntryTime) {
			status.OldestEntryTime = r.StoredAt
		}
	}
}
