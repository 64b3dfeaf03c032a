package contract

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Response status label constants.
const (
	SuccessValue     = "OK"       // 2xx
	RedirectValue    = "Redirect" // 3xx
	ClientErrorValue = "Client"   // 4xx
	ServerErrorValue = "Server"   // 5xx
)

// Color variables for console output.
var (
	SuccessColor     = color.New(color.FgGreen)               // SuccessColor marks responses served as-is.
	RedirectColor    = color.New(color.FgCyan)                // RedirectColor is informational.
	ClientErrorColor = color.New(color.FgYellow)              // ClientErrorColor is standard caution.
	ServerErrorColor = color.New(color.FgRed, color.Bold)     // ServerErrorColor is standard danger.
	WarnColor        = color.New(color.FgMagenta, color.Bold) // WarnColor prefixes warnings.
)

// GetPlainLabel returns a plain text label for an HTTP status. This is the core
// logic used for CSV, JSON, and table printing.
func GetPlainLabel(status int) string {
	switch {
	case status >= 500:
		return ServerErrorValue
	case status >= 400:
		return ClientErrorValue
	case status >= 300:
		return RedirectValue
	default:
		return SuccessValue
	}
}

// GetColorLabel returns a colored status label for console output (table).
func GetColorLabel(status int) string {
	text := strconv.Itoa(status) + " " + GetPlainLabel(status)

	switch {
	case status >= 500:
		return ServerErrorColor.Sprint(text)
	case status >= 400:
		return ClientErrorColor.Sprint(text)
	case status >= 300:
		return RedirectColor.Sprint(text)
	default:
		return SuccessColor.Sprint(text)
	}
}

// NewLogger returns the logger used by long-running components.
func NewLogger() *log.Logger {
	return log.New(os.Stderr, "[swagent] ", log.LstdFlags)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s: %v\n", WarnColor.Sprint("Warn"), msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".swagent_cache.db"
	}
	return filepath.Join(homeDir, ".swagent_cache.db")
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// TruncatePath truncates a URL or path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
