package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/internal/parquet"
	"github.com/huangsam/swagent/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteCacheEntries outputs stored entries, dispatching based on the output format configured.
func WriteCacheEntries(records []schema.CacheEntryRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEntriesJSON(w, records)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEntriesCSV(w, records)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errors.New("--output-file is required for parquet output")
		}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteCacheEntries(w, parquet.ConvertCacheEntryRecords(records))
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEntriesTable(w, records, cfg)
		}, "Wrote table")
	}
}

// writeEntriesTable generates and writes the human-readable table.
func writeEntriesTable(w io.Writer, records []schema.CacheEntryRecord, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Partition", "Request", "Status", "Type", "Bytes", "Stored"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	var totalBytes int64
	for _, r := range records {
		label := contract.GetPlainLabel(r.Status)
		if cfg.UseColors {
			label = contract.GetColorLabel(r.Status)
		} else {
			label = strconv.Itoa(r.Status) + " " + label
		}
		data = append(data, []string{
			r.Partition,
			contract.TruncatePath(r.Key, GetMaxTablePathWidth(cfg)),
			label,
			string(r.Type),
			strconv.FormatInt(r.BodyBytes, 10),
			formatTime(r.StoredAt),
		})
		totalBytes += r.BodyBytes
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d entries (%d body bytes). Cache backend: %s\n", len(records), totalBytes, cfg.CacheBackend)
	return err
}

// writeEntriesCSV writes one CSV row per entry.
func writeEntriesCSV(w io.Writer, records []schema.CacheEntryRecord) error {
	header := []string{"partition", "request", "status", "label", "type", "body_bytes", "stored_at"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range records {
			rec := []string{
				r.Partition,
				r.Key,
				strconv.Itoa(r.Status),
				contract.GetPlainLabel(r.Status),
				string(r.Type),
				strconv.FormatInt(r.BodyBytes, 10),
				formatTime(r.StoredAt),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeEntriesJSON writes the entries as a JSON array.
func writeEntriesJSON(w io.Writer, records []schema.CacheEntryRecord) error {
	type jsonEntry struct {
		Label string `json:"label"`
		schema.CacheEntryRecord
	}
	output := make([]jsonEntry, len(records))
	for i, r := range records {
		output[i] = jsonEntry{Label: contract.GetPlainLabel(r.Status), CacheEntryRecord: r}
	}
	return writeJSON(w, output)
}
