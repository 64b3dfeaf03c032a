// Package contract provides interfaces and shared utilities for swagent's internal architecture.
package contract

import (
	"context"
	"errors"

	"github.com/huangsam/swagent/schema"
)

// ErrNotFound is returned by cache lookups that have no stored response.
var ErrNotFound = errors.New("not found")

// Fetcher performs live network fetches.
// A returned error means the network failed; any HTTP status is a successful fetch.
type Fetcher interface {
	Fetch(ctx context.Context, req *schema.Request) (*schema.Response, error)
}

// CacheEntry pairs a request key with the response stored for it.
type CacheEntry struct {
	Key      string
	Response *schema.Response
}

// Cache is one named partition of request/response pairs.
// Implementations must be safe for concurrent use; the last write wins on a key collision.
type Cache interface {
	// Name returns the partition name.
	Name() string

	// Match returns a copy of the response stored for key, or ErrNotFound.
	Match(ctx context.Context, key string) (*schema.Response, error)

	// Put stores a copy of resp under key. Once the partition is deleted
	// it returns ErrNotFound instead of resurrecting it.
	Put(ctx context.Context, key string, resp *schema.Response) error

	// PutAll stores every entry or none of them, with the same deleted-partition rule as Put.
	PutAll(ctx context.Context, entries []CacheEntry) error

	// Keys lists the stored request keys.
	Keys(ctx context.Context) ([]string, error)
}

// CacheStorage manages the set of named partitions.
// Implementations must be safe for concurrent use.
type CacheStorage interface {
	// Open returns the named partition, creating it if absent.
	Open(ctx context.Context, name string) (Cache, error)

	// Lookup returns the named partition if it exists, or ErrNotFound. It never creates one.
	Lookup(ctx context.Context, name string) (Cache, error)

	// Has reports whether the named partition exists.
	Has(ctx context.Context, name string) (bool, error)

	// Keys lists partition names in creation order.
	Keys(ctx context.Context) ([]string, error)

	// Delete removes the named partition and its entries. It reports whether it existed.
	Delete(ctx context.Context, name string) (bool, error)

	// Match looks key up in every partition, oldest first, or returns ErrNotFound.
	Match(ctx context.Context, key string) (*schema.Response, error)

	// Entries describes every stored response.
	Entries(ctx context.Context) ([]schema.CacheEntryRecord, error)

	// GetStatus reports storage statistics.
	GetStatus(ctx context.Context) (schema.CacheStatus, error)

	// Close releases the storage.
	Close() error
}

// CacheManager defines the interface for reaching the configured cache storage.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetCacheStorage() CacheStorage
}

// Notifier displays and closes system notifications.
type Notifier interface {
	Show(ctx context.Context, n schema.Notification) error
	Close(ctx context.Context, tag string) error
}

// Clients controls the application windows served by the worker.
type Clients interface {
	// Claim makes the given worker version the controller of every open client.
	Claim(ctx context.Context, version string) error

	// OpenWindow opens or focuses a window at url.
	OpenWindow(ctx context.Context, url string) error
}

// PushManager subscribes to a push delivery service.
type PushManager interface {
	Subscribe(ctx context.Context, opts schema.SubscribeOptions) (*schema.PushSubscription, error)
}

// PaymentSyncer reconciles payment operations queued while offline.
type PaymentSyncer interface {
	SyncPendingPayments(ctx context.Context) error
}
