package core

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// handlerFunc handles one kind of event.
type handlerFunc func(ctx context.Context, ev Event) (Outcome, error)

// Worker is one versioned instance of the offline agent.
type Worker struct {
	cfg       *contract.Config
	storage   contract.CacheStorage
	fetcher   contract.Fetcher
	notifier  contract.Notifier
	clients   contract.Clients
	push      contract.PushManager
	payments  contract.PaymentSyncer
	logger    *log.Logger
	now       func() time.Time
	lifecycle *Lifecycle
	handlers  map[schema.EventKind]handlerFunc

	skipWaiting atomic.Bool
	fills       conc.WaitGroup // deferred cache writes
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *log.Logger) WorkerOption {
	return func(w *Worker) { w.logger = logger }
}

// WithNotifier sets the notification display.
func WithNotifier(n contract.Notifier) WorkerOption {
	return func(w *Worker) { w.notifier = n }
}

// WithClients sets the client window controller.
func WithClients(c contract.Clients) WorkerOption {
	return func(w *Worker) { w.clients = c }
}

// WithPushManager sets the push subscription service.
func WithPushManager(p contract.PushManager) WorkerOption {
	return func(w *Worker) { w.push = p }
}

// WithPaymentSyncer sets the routine run for the payment sync tag.
func WithPaymentSyncer(p contract.PaymentSyncer) WorkerOption {
	return func(w *Worker) { w.payments = p }
}

// WithClock overrides the time source used for notification timestamps.
func WithClock(now func() time.Time) WorkerOption {
	return func(w *Worker) { w.now = now }
}

// NewWorker returns a worker in the installing state. cfg is copied.
func NewWorker(cfg *contract.Config, storage contract.CacheStorage, fetcher contract.Fetcher, opts ...WorkerOption) *Worker {
	w := &Worker{
		cfg:       cfg.Clone(),
		storage:   storage,
		fetcher:   fetcher,
		logger:    log.New(io.Discard, "", 0),
		now:       time.Now,
		lifecycle: NewLifecycle(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.handlers = map[schema.EventKind]handlerFunc{
		schema.InstallEvent:                w.handleInstall,
		schema.ActivateEvent:               w.handleActivate,
		schema.FetchEvent:                  w.handleFetch,
		schema.PushEvent:                   w.handlePush,
		schema.NotificationClickEvent:      w.handleNotificationClick,
		schema.PushSubscriptionChangeEvent: w.handleSubscriptionChange,
		schema.SyncEvent:                   w.handleSync,
	}
	return w
}

// Version returns the cache partition this worker owns.
func (w *Worker) Version() string { return w.cfg.CacheVersion }

// State returns the lifecycle state.
func (w *Worker) State() schema.LifecycleState { return w.lifecycle.State() }

// SkipWaiting reports whether the worker asked to activate without waiting.
func (w *Worker) SkipWaiting() bool { return w.skipWaiting.Load() }

// Dispatch runs the handler registered for ev.Kind.
// A failing or panicking handler only affects this event.
func (w *Worker) Dispatch(ctx context.Context, ev Event) (Outcome, error) {
	h, ok := w.handlers[ev.Kind]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q", ErrNoHandler, ev.Kind)
	}

	var (
		out Outcome
		err error
		pc  panics.Catcher
	)
	pc.Try(func() { out, err = h(ctx, ev) })
	if r := pc.Recovered(); r != nil {
		err = fmt.Errorf("%s handler panicked: %w", ev.Kind, r.AsError())
	}
	if err != nil {
		w.logger.Printf("%s failed: %v", ev.Kind, err)
	}
	return out, err
}

// Wait blocks until deferred work started by earlier events has finished.
func (w *Worker) Wait() {
	if r := w.fills.WaitAndRecover(); r != nil {
		w.logger.Printf("deferred work panicked: %v", r.Value)
	}
}

// goDeferred runs f after the event returns. Wait covers it.
func (w *Worker) goDeferred(f func()) {
	w.fills.Go(f)
}
