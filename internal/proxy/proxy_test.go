package proxy

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/huangsam/swagent/core"
	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/internal/iocache"
	"github.com/huangsam/swagent/internal/netfetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testOrigin answers every path with "content of <path>" until it goes down.
type testOrigin struct {
	*httptest.Server
	down atomic.Bool
}

func newTestOrigin(t *testing.T) *testOrigin {
	o := &testOrigin{}
	o.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if o.down.Load() {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				_ = conn.Close()
			}
			return
		}
		if r.Method == http.MethodPost {
			body, _ := io.ReadAll(r.Body)
			_, _ = io.WriteString(w, "posted "+string(body))
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "content of "+r.URL.Path)
	}))
	t.Cleanup(o.Close)
	return o
}

func newTestProxy(t *testing.T, o *testOrigin, withWorker bool) *httptest.Server {
	cfg := contract.DefaultConfig()
	origin, err := url.Parse(o.URL)
	require.NoError(t, err)
	cfg.Origin = origin

	logger := log.New(io.Discard, "", 0)
	reg := core.NewRegistration()
	if withWorker {
		w := core.NewWorker(cfg, iocache.NewMemoryStorage(), netfetch.NewFetcher(cfg, nil), core.WithLogger(logger))
		require.NoError(t, reg.Update(context.Background(), w))
		t.Cleanup(w.Wait)
	}

	srv := httptest.NewServer(NewHandler(cfg, reg, logger))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string, header map[string]string) (int, string, http.Header) {
	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body), resp.Header
}

func TestPassthroughWithoutWorker(t *testing.T) {
	o := newTestOrigin(t)
	srv := newTestProxy(t, o, false)

	status, body, _ := get(t, srv, "/hello", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "content of /hello", body)
}

func TestServesAppShellWhileOriginIsDown(t *testing.T) {
	o := newTestOrigin(t)
	srv := newTestProxy(t, o, true)
	o.down.Store(true)

	status, body, header := get(t, srv, "/manifest.json", map[string]string{"Sec-Fetch-Mode": "no-cors"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "content of /manifest.json", body)
	assert.Equal(t, "text/plain", header.Get("Content-Type"))
}

func TestNavigationFallsBackToOfflinePage(t *testing.T) {
	o := newTestOrigin(t)
	srv := newTestProxy(t, o, true)

	status, body, _ := get(t, srv, "/dashboard/", map[string]string{"Sec-Fetch-Mode": "navigate", "Sec-Fetch-Dest": "document"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "content of /dashboard/", body)

	o.down.Store(true)
	status, body, _ = get(t, srv, "/dashboard/", map[string]string{"Accept": "text/html,application/xhtml+xml"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "content of /offline/", body)
}

func TestPaymentFailureIsJSON503(t *testing.T) {
	o := newTestOrigin(t)
	srv := newTestProxy(t, o, true)
	o.down.Store(true)

	status, body, header := get(t, srv, "/mpesa/stk_push/", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "application/json", header.Get("Content-Type"))
	assert.Contains(t, body, "Network error. Please check your connection.")
}

func TestImageFallbackAndBadGateway(t *testing.T) {
	o := newTestOrigin(t)
	srv := newTestProxy(t, o, true)
	o.down.Store(true)

	status, body, _ := get(t, srv, "/static/photo.png", map[string]string{"Sec-Fetch-Dest": "image"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "content of /static/icons/icon-192x192.png", body)

	status, _, _ = get(t, srv, "/static/app.js", map[string]string{"Sec-Fetch-Dest": "script"})
	assert.Equal(t, http.StatusBadGateway, status)
}

func TestPostIsForwardedWithBody(t *testing.T) {
	o := newTestOrigin(t)
	srv := newTestProxy(t, o, true)

	resp, err := srv.Client().Post(srv.URL+"/api/push-subscription/", "application/json", strings.NewReader(`{"a":1}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `posted {"a":1}`, string(body))
}
