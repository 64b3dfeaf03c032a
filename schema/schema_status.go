package schema

import "time"

// CacheStatus represents the status of the cache storage.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	Partitions      []string  `json:"partitions"`
	TotalEntries    int       `json:"total_entries"`
	TotalBodyBytes  int64     `json:"total_body_bytes"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
}

// CacheEntryRecord describes one stored response without its body.
type CacheEntryRecord struct {
	Partition string       `json:"partition"`
	Key       string       `json:"key"`
	Status    int          `json:"status"`
	Type      ResponseType `json:"type"`
	BodyBytes int64        `json:"body_bytes"`
	StoredAt  time.Time    `json:"stored_at"`
}
