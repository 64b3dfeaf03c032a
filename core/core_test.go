package core

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/internal/iocache"
	"github.com/huangsam/swagent/schema"
	"github.com/stretchr/testify/require"
)

const origin = "http://localhost:8000"

var errNetwork = errors.New("network unreachable")

// fakeNetwork serves canned pages and can be switched offline.
type fakeNetwork struct {
	mu      sync.Mutex
	offline bool
	failing map[string]bool
	pages   map[string]*schema.Response
	calls   []string
}

func newFakeNetwork() *fakeNetwork {
	n := &fakeNetwork{failing: map[string]bool{}, pages: map[string]*schema.Response{}}
	for _, path := range schema.DefaultAppShell {
		n.serve(path, "content of "+path)
	}
	return n
}

func (n *fakeNetwork) serve(path, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	url := origin + path
	n.pages[url] = &schema.Response{
		URL:        url,
		Status:     http.StatusOK,
		StatusText: "OK",
		Type:       schema.BasicResponse,
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
		Body:       []byte(body),
	}
}

func (n *fakeNetwork) setOffline(offline bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.offline = offline
}

func (n *fakeNetwork) fail(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failing[origin+path] = true
}

func (n *fakeNetwork) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func (n *fakeNetwork) Fetch(_ context.Context, req *schema.Request) (*schema.Response, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, req.URL)
	if n.offline || n.failing[req.URL] {
		return nil, errNetwork
	}
	if resp, ok := n.pages[req.URL]; ok {
		return resp.Clone(), nil
	}
	return &schema.Response{URL: req.URL, Status: http.StatusNotFound, StatusText: "Not Found", Type: schema.BasicResponse}, nil
}

var _ contract.Fetcher = &fakeNetwork{}

func fixedClock() time.Time {
	return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
}

func newTestWorker(t *testing.T, storage contract.CacheStorage, net contract.Fetcher, opts ...WorkerOption) *Worker {
	t.Helper()
	cfg := contract.DefaultConfig()
	opts = append([]WorkerOption{WithClock(fixedClock)}, opts...)
	return NewWorker(cfg, storage, net, opts...)
}

// installedWorker returns an activated worker with the app shell cached.
func installedWorker(t *testing.T) (*Worker, *fakeNetwork, *iocache.MemoryStorage) {
	t.Helper()
	net := newFakeNetwork()
	storage := iocache.NewMemoryStorage()
	w := newTestWorker(t, storage, net)
	_, err := w.Dispatch(context.Background(), InstallEvt())
	require.NoError(t, err)
	_, err = w.Dispatch(context.Background(), ActivateEvt())
	require.NoError(t, err)
	return w, net, storage
}

func navigate(url string) *schema.Request {
	req := schema.NewRequest(url)
	req.Mode = schema.NavigateMode
	req.Destination = schema.DocumentDestination
	return req
}
