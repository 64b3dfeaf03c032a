package core

import (
	"context"
	"fmt"

	"github.com/huangsam/swagent/schema"
)

// handleSync runs the payment syncer for the payment tag and ignores every other tag.
func (w *Worker) handleSync(ctx context.Context, ev Event) (Outcome, error) {
	w.logger.Printf("background sync: %s", ev.Tag)
	if ev.Tag != schema.PaymentSyncTag || w.payments == nil {
		return Outcome{}, nil
	}
	if err := w.payments.SyncPendingPayments(ctx); err != nil {
		return Outcome{}, fmt.Errorf("sync payments: %w", err)
	}
	return Outcome{}, nil
}
