package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/swagent/core"
	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/internal/netfetch"
	"github.com/huangsam/swagent/internal/outwriter"
	"github.com/spf13/cobra"
)

// installCmd caches the app shell without activating.
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Fetch and cache the app shell for the current cache version",
	Long: `Fetch every app shell asset from the origin and store them in the
partition named by --cache-version.

The install is all-or-nothing: if any asset fails to load nothing is stored.
Older partitions are kept; run "swagent activate" to remove them.

Examples:
  # Pre-cache a new release
  swagent install --cache-version starlink-pwa-v1.1`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		storage, err := cacheStorage()
		if err != nil {
			contract.LogFatal("Cannot open cache", err)
		}
		w := newWorker(storage, netfetch.NewFetcher(cfg, nil), contract.NewLogger(), os.Stderr)
		if _, err := w.Dispatch(rootCtx, core.InstallEvt()); err != nil {
			contract.LogFatal("Install failed", err)
		}
		writeStorageStatus(storage)
	},
}

// activateCmd installs and activates the current version.
var activateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Install the current cache version and delete every other partition",
	Long: `Install the app shell for --cache-version and activate it.

Activation deletes every cache partition whose name differs from the current
version. A failed install leaves all partitions untouched.

Examples:
  # Roll out a new release and drop the old caches
  swagent activate --cache-version starlink-pwa-v1.1`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		storage, err := cacheStorage()
		if err != nil {
			contract.LogFatal("Cannot open cache", err)
		}
		w := newWorker(storage, netfetch.NewFetcher(cfg, nil), contract.NewLogger(), os.Stderr)
		if err := core.NewRegistration().Update(rootCtx, w); err != nil {
			contract.LogFatal("Activation failed", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "Activated %s\n", w.Version())
		writeStorageStatus(storage)
	},
}

func writeStorageStatus(storage contract.CacheStorage) {
	status, err := storage.GetStatus(rootCtx)
	if err != nil {
		contract.LogFatal("Failed to get cache status", err)
	}
	if err := outwriter.NewOutWriter().WriteStatus(status, cfg); err != nil {
		contract.LogFatal("Failed to write cache status", err)
	}
}
