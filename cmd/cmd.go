// Package cmd defines the command-line interface for swagent.
package cmd

import (
	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheExportCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("origin", contract.DefaultOrigin, "Origin of the web application")
	rootCmd.PersistentFlags().String("cache-version", schema.DefaultCacheVersion, "Name of the current cache partition")
	rootCmd.PersistentFlags().String("fetch-timeout", "", "Timeout for network fetches, e.g. 10s (empty = none)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListen, "Address the proxy listens on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of fetchCmd to Viper
	fetchCmd.Flags().String("method", "GET", "HTTP method of the request")
	fetchCmd.Flags().String("request-mode", "", "Request mode: navigate or same-origin or no-cors or cors")
	fetchCmd.Flags().String("dest", "", "Request destination: document or image or script or style")
	fetchCmd.Flags().Bool("offline", false, "Fail every network fetch")
	if err := viper.BindPFlags(fetchCmd.Flags()); err != nil {
		contract.LogFatal("Error binding fetch flags", err)
	}

	// Bind all flags of pushCmd to Viper
	pushCmd.Flags().String("click", "", "Click the shown notification with this action (view or dismiss)")
	if err := viper.BindPFlags(pushCmd.Flags()); err != nil {
		contract.LogFatal("Error binding push flags", err)
	}

	// Bind all flags of cacheListCmd to Viper
	cacheListCmd.Flags().String("partition", "", "Only list entries of this partition")
	if err := viper.BindPFlags(cacheListCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cache list flags", err)
	}

	// Bind all flags of cacheMigrateCmd to Viper
	cacheMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(cacheMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cache migrate flags", err)
	}
}
