//go:build basic

// Package integration contains integration tests for swagent.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/swagent/internal/outwriter"
	"github.com/huangsam/swagent/internal/parquet"
	"github.com/huangsam/swagent/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteEnv(t *testing.T, origin string) ([]string, string) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	return []string{
		"SWAGENT_ORIGIN=" + origin,
		"SWAGENT_CACHE_BACKEND=sqlite",
		"SWAGENT_CACHE_DB_CONNECT=" + dbPath,
		"SWAGENT_COLOR=no",
	}, dbPath
}

func TestVersion(t *testing.T) {
	out, err := runSwagent(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "swagent CLI")
	assert.Contains(t, out, schema.DefaultCacheVersion)
}

func TestActivateThenServeOffline(t *testing.T) {
	origin := newOrigin(t)
	env, dbPath := sqliteEnv(t, origin.URL)

	_, err := runSwagent(t, env, "activate")
	require.NoError(t, err)

	out, err := runSwagent(t, env, "cache", "status", "--output", "json")
	require.NoError(t, err)
	var status schema.CacheStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, "sqlite", status.Backend)
	assert.Equal(t, []string{schema.DefaultCacheVersion}, status.Partitions)
	assert.Equal(t, len(schema.DefaultAppShell), status.TotalEntries)

	out, err = runSwagent(t, env, "fetch", "/dashboard/", "--request-mode", "navigate", "--offline", "--output", "json")
	require.NoError(t, err)
	var report outwriter.FetchReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, schema.NavigationStrategy, report.Strategy)
	assert.Equal(t, 200, report.Status)
	assert.Equal(t, len("content of /offline/"), report.BodyBytes)

	out, err = runSwagent(t, env, "fetch", "/mpesa/stk_push/", "--offline", "--output", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, schema.PaymentStrategy, report.Strategy)
	assert.Equal(t, 503, report.Status)
	assert.Equal(t, "application/json", report.ContentType)

	_, err = runSwagent(t, env, "fetch", "/static/app.js", "--offline")
	assert.Error(t, err, "an uncached asset without network fails")

	exportPath := filepath.Join(t.TempDir(), "cache.parquet")
	_, err = runSwagent(t, env, "cache", "export", "--output-file", exportPath)
	require.NoError(t, err)
	rows, err := parquet.ReadCacheEntriesParquet(exportPath)
	require.NoError(t, err)
	assert.Len(t, rows, len(schema.DefaultAppShell))

	_, err = runSwagent(t, env, "cache", "clear")
	require.NoError(t, err)
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
}

func TestNewVersionReplacesOldPartition(t *testing.T) {
	origin := newOrigin(t)
	env, _ := sqliteEnv(t, origin.URL)

	_, err := runSwagent(t, env, "install")
	require.NoError(t, err)
	_, err = runSwagent(t, env, "install", "--cache-version", "starlink-pwa-v1.1")
	require.NoError(t, err)

	out, err := runSwagent(t, env, "cache", "status", "--output", "json")
	require.NoError(t, err)
	var status schema.CacheStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, []string{schema.DefaultCacheVersion, "starlink-pwa-v1.1"}, status.Partitions)

	_, err = runSwagent(t, env, "activate", "--cache-version", "starlink-pwa-v1.1")
	require.NoError(t, err)
	out, err = runSwagent(t, env, "cache", "list", "--output", "csv")
	require.NoError(t, err)
	assert.NotContains(t, out, schema.DefaultCacheVersion+",")
	assert.Contains(t, out, "starlink-pwa-v1.1,")
}

func TestPushRendersNotification(t *testing.T) {
	env, _ := sqliteEnv(t, "http://localhost:8000")

	out, err := runSwagent(t, env, "push", `{"title":"Payment received","data":{"url":"/billing/"}}`, "--output", "json")
	require.NoError(t, err)
	var n schema.Notification
	require.NoError(t, json.Unmarshal([]byte(out), &n))
	assert.Equal(t, "Payment received", n.Title)
	assert.Equal(t, schema.DefaultNotificationBody, n.Body)
	assert.Equal(t, "/billing/", n.Data.URL)

	out, err = runSwagent(t, env, "push", "Your bundle expires tomorrow", "--output", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &n))
	assert.Equal(t, schema.DefaultNotificationTitle, n.Title)
	assert.Equal(t, "Your bundle expires tomorrow", n.Body)
}

func TestMigrateRoundTrip(t *testing.T) {
	env, _ := sqliteEnv(t, "http://localhost:8000")

	out, err := runSwagent(t, env, "cache", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "to 2")

	out, err = runSwagent(t, env, "cache", "migrate", "--target-version", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "from version 2 to 0")
}
