package core

import (
	"context"
	"fmt"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
	"golang.org/x/sync/errgroup"
)

// handleInstall caches the app shell into the worker's partition.
// Either every asset is stored or none is, and the worker stays installing on failure.
func (w *Worker) handleInstall(ctx context.Context, _ Event) (Outcome, error) {
	if state := w.State(); state != schema.Installing {
		return Outcome{}, fmt.Errorf("%w: install in state %s", ErrIllegalTransition, state)
	}
	w.logger.Printf("installing %s", w.Version())

	cache, err := w.storage.Open(ctx, w.Version())
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: open %s: %w", ErrInstallFailed, w.Version(), err)
	}

	entries, err := w.fetchAppShell(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}
	if err := cache.PutAll(ctx, entries); err != nil {
		return Outcome{}, fmt.Errorf("%w: store app shell: %w", ErrInstallFailed, err)
	}

	if err := w.lifecycle.Transition(schema.Installed); err != nil {
		return Outcome{}, err
	}
	w.skipWaiting.Store(true)
	w.logger.Printf("install completed: %d assets cached", len(entries))
	return Outcome{}, nil
}

// fetchAppShell fetches every asset concurrently. Any network error or non-2xx status fails the batch.
func (w *Worker) fetchAppShell(ctx context.Context) ([]contract.CacheEntry, error) {
	entries := make([]contract.CacheEntry, len(w.cfg.Assets))
	eg, ctx := errgroup.WithContext(ctx)
	for i, asset := range w.cfg.Assets {
		eg.Go(func() error {
			req := schema.NewRequest(w.cfg.ResolveURL(asset))
			resp, err := w.fetcher.Fetch(ctx, req)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", asset, err)
			}
			if !resp.OK() {
				return fmt.Errorf("fetch %s: unexpected status %d", asset, resp.Status)
			}
			entries[i] = contract.CacheEntry{Key: req.Key(), Response: resp}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// handleActivate deletes every partition but the worker's own, then claims open clients.
func (w *Worker) handleActivate(ctx context.Context, _ Event) (Outcome, error) {
	if err := w.lifecycle.Transition(schema.Activating); err != nil {
		return Outcome{}, err
	}
	w.logger.Printf("activating %s", w.Version())

	names, err := w.storage.Keys(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("list partitions: %w", err)
	}
	for _, name := range names {
		if name == w.Version() {
			continue
		}
		w.logger.Printf("deleting old cache: %s", name)
		if _, err := w.storage.Delete(ctx, name); err != nil {
			return Outcome{}, fmt.Errorf("delete partition %s: %w", name, err)
		}
	}

	if w.clients != nil {
		if err := w.clients.Claim(ctx, w.Version()); err != nil {
			return Outcome{}, fmt.Errorf("claim clients: %w", err)
		}
	}
	if err := w.lifecycle.Transition(schema.Activated); err != nil {
		return Outcome{}, err
	}
	w.logger.Printf("activation completed")
	return Outcome{}, nil
}
