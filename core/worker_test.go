package core

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/internal/iocache"
	"github.com/huangsam/swagent/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDispatchUnknownEvent(t *testing.T) {
	w := newTestWorker(t, iocache.NewMemoryStorage(), newFakeNetwork())
	_, err := w.Dispatch(context.Background(), Event{Kind: "periodicsync"})
	assert.ErrorIs(t, err, ErrNoHandler)
}

func TestDispatchRecoversPanics(t *testing.T) {
	var logs bytes.Buffer
	fetcher := &contract.MockFetcher{}
	fetcher.On("Fetch", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("boom")
	})
	w := newTestWorker(t, iocache.NewMemoryStorage(), fetcher, WithLogger(log.New(&logs, "", 0)))

	var err error
	require.NotPanics(t, func() {
		_, err = w.Dispatch(context.Background(), FetchEvt(schema.NewRequest(origin+"/static/app.js")))
	})
	assert.ErrorContains(t, err, "fetch handler panicked")
	assert.Contains(t, logs.String(), "fetch failed")

	// The worker keeps serving other events.
	_, err = w.Dispatch(context.Background(), SyncEvt("other"))
	assert.NoError(t, err)
}

func TestWorkerCopiesConfig(t *testing.T) {
	cfg := contract.DefaultConfig()
	w := NewWorker(cfg, iocache.NewMemoryStorage(), newFakeNetwork())
	cfg.CacheVersion = "changed"
	assert.Equal(t, schema.DefaultCacheVersion, w.Version())
	assert.Equal(t, schema.Installing, w.State())
}
