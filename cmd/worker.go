package cmd

import (
	"io"
	"log"

	"github.com/huangsam/swagent/core"
	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/internal/host"
)

// newWorker assembles a worker for cfg with the in-process host collaborators.
// Notifications are printed to notifyOut.
func newWorker(storage contract.CacheStorage, fetcher contract.Fetcher, logger *log.Logger, notifyOut io.Writer) *core.Worker {
	opts := []core.WorkerOption{
		core.WithLogger(logger),
		core.WithNotifier(host.NewConsoleNotifier(notifyOut, cfg.UseColors)),
		core.WithClients(host.NewClientRegistry(logger)),
		core.WithPaymentSyncer(host.NewLoggingPaymentSyncer(logger)),
	}
	if cfg.PushService != "" {
		opts = append(opts, core.WithPushManager(host.NewHTTPPushManager(cfg.PushService, nil)))
	}
	return core.NewWorker(cfg, storage, fetcher, opts...)
}
