package core

import (
	"context"
	"sync"

	"github.com/huangsam/swagent/schema"
)

// Registration holds the active worker and installs its replacements.
type Registration struct {
	mu     sync.RWMutex
	active *Worker
}

// NewRegistration returns a registration without an active worker.
func NewRegistration() *Registration {
	return &Registration{}
}

// Active returns the active worker, or nil.
func (r *Registration) Active() *Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Update installs w. If install fails w is discarded and the previous worker keeps serving.
// If w asks to skip waiting it is activated and becomes the active worker.
func (r *Registration) Update(ctx context.Context, w *Worker) error {
	if _, err := w.Dispatch(ctx, InstallEvt()); err != nil {
		return err
	}
	if !w.SkipWaiting() {
		return nil
	}
	if _, err := w.Dispatch(ctx, ActivateEvt()); err != nil {
		return err
	}

	r.mu.Lock()
	prev := r.active
	r.active = w
	r.mu.Unlock()
	if prev != nil {
		prev.Wait()
	}
	return nil
}

// HandleFetch routes req to the active worker. Without one every request passes through.
func (r *Registration) HandleFetch(ctx context.Context, req *schema.Request) (Outcome, error) {
	w := r.Active()
	if w == nil {
		return Outcome{Strategy: schema.PassthroughStrategy}, nil
	}
	return w.Dispatch(ctx, FetchEvt(req))
}

// Dispatch routes any event to the active worker. Without one the event is dropped.
func (r *Registration) Dispatch(ctx context.Context, ev Event) (Outcome, error) {
	w := r.Active()
	if w == nil {
		return Outcome{}, nil
	}
	return w.Dispatch(ctx, ev)
}
