package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huangsam/swagent/core"
	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/internal/iocache"
	"github.com/huangsam/swagent/internal/netfetch"
	"github.com/huangsam/swagent/internal/proxy"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds graceful shutdown of the proxy.
const shutdownTimeout = 5 * time.Second

// serveCmd runs the offline-first proxy.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web app through the offline-first worker",
	Long: `Install the current worker version, then serve the origin through it.

On startup the app shell is fetched and cached as one unit. If that fails
every request passes through to the origin unmodified. Once the worker is
active:
- Navigations go to the network and fall back to the offline page
- Payment endpoints always go to the network, with a 503 JSON error when offline
- Everything else is served cache-first and cached on the way in

Events can be delivered to the worker under /_swagent/:
  POST /_swagent/push                    - push message body
  POST /_swagent/notificationclick       - ?tag=&action=&url=
  POST /_swagent/pushsubscriptionchange  - renew the push subscription
  POST /_swagent/sync                    - ?tag=sync-payments
  GET  /_swagent/worker                  - active version and state

Examples:
  # Serve a local Django app on the default port
  swagent serve --origin http://localhost:8000

  # Persist the cache in PostgreSQL
  SWAGENT_CACHE_BACKEND=postgresql SWAGENT_CACHE_DB_CONNECT="host=db dbname=swagent" swagent serve`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runServe(rootCtx)
	},
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := cacheStorage()
	if err != nil {
		return err
	}
	logger := contract.NewLogger()

	reg := core.NewRegistration()
	w := newWorker(storage, netfetch.NewFetcher(cfg, nil), logger, os.Stderr)
	if err := reg.Update(ctx, w); err != nil {
		contract.LogWarn("Install failed, passing every request through", err)
	}
	if status, err := storage.GetStatus(ctx); err == nil {
		iocache.PrintCacheStatus(os.Stderr, status)
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           proxy.NewServeMux(cfg, reg, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logger,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Printf("serving %s on http://%s", cfg.Origin, cfg.Listen)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Printf("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	if active := reg.Active(); active != nil {
		active.Wait()
	}
	return err
}
