package host

import (
	"context"
	"log"
	"sync/atomic"

	"github.com/huangsam/swagent/internal/contract"
)

// LoggingPaymentSyncer records sync requests. Payment reconciliation happens server side.
type LoggingPaymentSyncer struct {
	logger *log.Logger
	runs   atomic.Int64
}

var _ contract.PaymentSyncer = &LoggingPaymentSyncer{} // Compile-time check

// NewLoggingPaymentSyncer returns a syncer logging to logger.
func NewLoggingPaymentSyncer(logger *log.Logger) *LoggingPaymentSyncer {
	return &LoggingPaymentSyncer{logger: logger}
}

// SyncPendingPayments logs the request and succeeds.
func (p *LoggingPaymentSyncer) SyncPendingPayments(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n := p.runs.Add(1)
	p.logger.Printf("payment sync #%d: nothing queued", n)
	return nil
}

// Runs returns how many times a sync was requested.
func (p *LoggingPaymentSyncer) Runs() int64 {
	return p.runs.Load()
}
