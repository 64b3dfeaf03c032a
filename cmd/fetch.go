package cmd

import (
	"net/http"
	"os"
	"strings"

	"github.com/huangsam/swagent/core"
	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/internal/netfetch"
	"github.com/huangsam/swagent/internal/outwriter"
	"github.com/huangsam/swagent/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// fetchCmd runs one request through the fetch policy.
var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Show how the worker answers one request",
	Long: `Classify a request and answer it the way the worker would, using the
configured cache storage.

Relative URLs resolve against --origin. With --offline every network fetch
fails, which shows exactly what a user without connectivity would get.

Examples:
  # Is the dashboard usable offline?
  swagent fetch /dashboard/ --request-mode navigate --offline

  # Which icon is served for a broken image?
  swagent fetch /static/missing.png --dest image --offline

  # Machine-readable report
  swagent fetch /manifest.json --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		storage, err := cacheStorage()
		if err != nil {
			contract.LogFatal("Cannot open cache", err)
		}

		var fetcher contract.Fetcher = netfetch.NewFetcher(cfg, nil)
		if viper.GetBool("offline") {
			fetcher = netfetch.Offline{}
		}

		req := schema.NewRequest(cfg.ResolveURL(args[0]))
		req.Method = strings.ToUpper(viper.GetString("method"))
		if req.Method == "" {
			req.Method = http.MethodGet
		}
		req.Mode = schema.RequestMode(viper.GetString("request-mode"))
		req.Destination = schema.Destination(viper.GetString("dest"))

		w := newWorker(storage, fetcher, contract.NewLogger(), os.Stderr)
		out, fetchErr := w.Dispatch(rootCtx, core.FetchEvt(req))
		w.Wait()

		report := outwriter.NewFetchReport(req, out.Strategy, out.Response, fetchErr)
		if err := outwriter.NewOutWriter().WriteFetch(report, cfg); err != nil {
			contract.LogFatal("Failed to write fetch report", err)
		}
		if fetchErr != nil {
			os.Exit(1)
		}
	},
}
