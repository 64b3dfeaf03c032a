// Package parquet exports stored cache entries to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
	"github.com/parquet-go/parquet-go"
)

// CacheEntry represents one stored response in a cache partition.
type CacheEntry struct {
	// Partition is the cache partition name, which carries the worker version
	Partition string `parquet:"partition,snappy,dict"`

	// RequestKey is the request URL the response is stored under
	RequestKey string `parquet:"request_key,snappy"`

	// Status is the HTTP status of the stored response
	Status int32 `parquet:"status,snappy"`

	// StatusLabel is the status class (OK, Redirect, Client, Server)
	StatusLabel string `parquet:"status_label,snappy,dict"`

	// ResponseType is basic, cors, opaque or error
	ResponseType string `parquet:"response_type,snappy,dict"`

	// BodyBytes is the stored body size
	BodyBytes int64 `parquet:"body_bytes,snappy"`

	// StoredAt is when the response was written (nanosecond precision)
	StoredAt time.Time `parquet:"stored_at,snappy"`
}

// ConvertCacheEntryRecords converts schema.CacheEntryRecord to CacheEntry for Parquet export.
func ConvertCacheEntryRecords(records []schema.CacheEntryRecord) []CacheEntry {
	result := make([]CacheEntry, len(records))
	for i, record := range records {
		result[i] = CacheEntry{
			Partition:    record.Partition,
			RequestKey:   record.Key,
			Status:       int32(record.Status),
			StatusLabel:  contract.GetPlainLabel(record.Status),
			ResponseType: string(record.Type),
			BodyBytes:    record.BodyBytes,
			StoredAt:     record.StoredAt,
		}
	}
	return result
}

// WriteCacheEntries writes the rows to w in Parquet format.
func WriteCacheEntries(w io.Writer, data []CacheEntry) error {
	// The schema is derived from the CacheEntry struct tags
	writer := parquet.NewGenericWriter[CacheEntry](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteCacheEntriesParquet writes a slice of CacheEntry structs to a Parquet file.
func WriteCacheEntriesParquet(data []CacheEntry, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return WriteCacheEntries(file, data)
}

// ReadCacheEntriesParquet reads every row back from a Parquet file.
func ReadCacheEntriesParquet(path string) ([]CacheEntry, error) {
	rows, err := parquet.ReadFile[CacheEntry](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}
	return rows, nil
}
