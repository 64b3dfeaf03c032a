package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/internal/iocache"
	"github.com/huangsam/swagent/internal/outwriter"
	"github.com/huangsam/swagent/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache maintenance.
// It does NOT open the storage, so clear and migrate work on a fresh or broken database.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get cache-related config values
	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
//
// Note: clear and migrate use minimal initialization (cacheSetup) instead of
// the full sharedSetup, which would open the storage and apply migrations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the offline cache",
	Long: `Inspect and manage the cache partitions that hold the app shell and
responses stored on the way through the worker.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  status  - Show partitions, entry counts and connection info
  list    - List stored responses
  export  - Export stored responses to Parquet
  clear   - Remove all cached data
  migrate - Run database schema migrations

Examples:
  # Check cache status
  swagent cache status

  # List stored responses as CSV
  swagent cache list --output csv`,
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the offline cache.

Displays:
- Backend type and connection status
- Cache partitions, oldest first
- Total number of stored responses and body bytes
- Last and oldest entry timestamps

Examples:
  # Check cache status
  swagent cache status

  # As JSON for scripts
  swagent cache status --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		storage, err := cacheStorage()
		if err != nil {
			contract.LogFatal("Cannot open cache", err)
		}
		writeStorageStatus(storage)
	},
}

// cacheListCmd lists stored responses.
var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored responses",
	Long: `List every stored response with its partition, status, type and size.

Examples:
  # Table output
  swagent cache list

  # Only the current partition, as JSON
  swagent cache list --partition starlink-pwa-v1.0 --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		storage, err := cacheStorage()
		if err != nil {
			contract.LogFatal("Cannot open cache", err)
		}
		records, err := storage.Entries(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to list cache entries", err)
		}
		if partition := viper.GetString("partition"); partition != "" {
			filtered := records[:0]
			for _, r := range records {
				if r.Partition == partition {
					filtered = append(filtered, r)
				}
			}
			records = filtered
		}
		if err := outwriter.NewOutWriter().WriteEntries(records, cfg); err != nil {
			contract.LogFatal("Failed to write cache entries", err)
		}
	},
}

// cacheExportCmd exports stored responses to Parquet.
var cacheExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored responses to Parquet for analytics",
	Long: `Export a description of every stored response to a Parquet file.

Bodies are not exported, only their sizes.

Requires: --output-file parameter

Examples:
  swagent cache export --output-file cache.parquet
  duckdb -c "SELECT partition, count(*) FROM read_parquet('cache.parquet') GROUP BY 1"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		storage, err := cacheStorage()
		if err != nil {
			contract.LogFatal("Cannot open cache", err)
		}
		if err := iocache.ExecuteCacheExport(rootCtx, os.Stdout, storage, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export cache", err)
		}
	},
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached data",
	Long: `Delete every cache partition from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache tables and the migration ledger

Examples:
  # Clear SQLite cache (default)
  swagent cache clear

  # Clear MySQL cache (set connection string via env variable)
  SWAGENT_CACHE_BACKEND=mysql SWAGENT_CACHE_DB_CONNECT="..." swagent cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		dbFilePath := contract.GetCacheDBFilePath()
		if cfg.CacheBackend == schema.SQLiteBackend && cfg.CacheDBConnect != "" {
			dbFilePath = cfg.CacheDBConnect
		}
		if err := iocache.ClearCache(cfg.CacheBackend, dbFilePath, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheMigrateCmd runs database migrations for the cache store.
var cacheMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the cache store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  swagent cache migrate

  # Rollback to initial state
  swagent cache migrate --target-version 0`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		result, err := iocache.MigrateCache(cfg.CacheBackend, cfg.CacheDBConnect, targetVersion)
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		if !result.Changed {
			fmt.Printf("Cache schema already at version %d.\n", result.To)
			return
		}
		fmt.Printf("Migrated cache schema from version %d to %d.\n", result.From, result.To)
	},
}
