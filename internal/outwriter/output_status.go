package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"

	"github.com/olekukonko/tablewriter"
)

// WriteCacheStatus outputs storage statistics, dispatching based on the output format configured.
func WriteCacheStatus(status schema.CacheStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"field", "value"}, func(cw *csv.Writer) error {
				return cw.WriteAll(statusRows(status))
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			table := tablewriter.NewWriter(w)
			table.Header([]string{"Field", "Value"})
			if err := table.Bulk(statusRows(status)); err != nil {
				return err
			}
			return table.Render()
		}, "Wrote table")
	}
}

// statusRows flattens status into field/value pairs.
func statusRows(status schema.CacheStatus) [][]string {
	return [][]string{
		{"backend", status.Backend},
		{"connected", strconv.FormatBool(status.Connected)},
		{"partitions", strings.Join(status.Partitions, " ")},
		{"total_entries", strconv.Itoa(status.TotalEntries)},
		{"total_body_bytes", strconv.FormatInt(status.TotalBodyBytes, 10)},
		{"last_entry", formatTime(status.LastEntryTime)},
		{"oldest_entry", formatTime(status.OldestEntryTime)},
	}
}
