// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteEntries prints stored cache entries using the configured output format.
func (ow *OutWriter) WriteEntries(records []schema.CacheEntryRecord, cfg *contract.Config) error {
	return WriteCacheEntries(records, cfg)
}

// WriteStatus prints storage statistics using the configured output format.
func (ow *OutWriter) WriteStatus(status schema.CacheStatus, cfg *contract.Config) error {
	return WriteCacheStatus(status, cfg)
}

// WriteFetch prints how one request was answered.
func (ow *OutWriter) WriteFetch(report FetchReport, cfg *contract.Config) error {
	return WriteFetchReport(report, cfg)
}

// WriteNotification prints a notification as it would be displayed.
func (ow *OutWriter) WriteNotification(n schema.Notification, cfg *contract.Config) error {
	return WriteNotificationResult(n, cfg)
}

// GetMaxTablePathWidth calculates the maximum width for URLs in table output
// based on terminal width and table configuration.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Partition + Status + Type + Size + Stored with borders/padding
	baseWidth := 75

	available := termWidth - baseWidth
	if available < 20 {
		return 20
	}
	if available > 90 {
		return 90
	}
	return available
}
