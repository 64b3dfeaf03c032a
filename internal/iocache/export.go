package iocache

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/internal/parquet"
)

// ExecuteCacheExport writes every stored cache entry to outputFile in Parquet format.
func ExecuteCacheExport(ctx context.Context, w io.Writer, storage contract.CacheStorage, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if storage == nil {
		return errors.New("cache storage is not initialized")
	}

	status, err := storage.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get cache status: %w", err)
	}
	if status.TotalEntries == 0 {
		return errors.New("no cache entries found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting entries from %s backend...\n", status.Backend)

	records, err := storage.Entries(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve cache entries: %w", err)
	}

	rows := parquet.ConvertCacheEntryRecords(records)
	if err := parquet.WriteCacheEntriesParquet(rows, outputFile); err != nil {
		return fmt.Errorf("failed to write cache entries: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d cache entries to: %s\n", len(rows), outputFile)
	return nil
}
