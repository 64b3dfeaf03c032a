package proxy

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/huangsam/swagent/core"
	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/internal/host"
	"github.com/huangsam/swagent/internal/iocache"
	"github.com/huangsam/swagent/internal/netfetch"
	"github.com/huangsam/swagent/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type controlFixture struct {
	srv      *httptest.Server
	notifier *host.ConsoleNotifier
	clients  *host.ClientRegistry
	payments *host.LoggingPaymentSyncer
}

func newControlFixture(t *testing.T, withWorker bool) *controlFixture {
	o := newTestOrigin(t)
	pushSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"endpoint":"https://push.example.com/new","keys":{"p256dh":"p","auth":"a"}}`)
	}))
	t.Cleanup(pushSrv.Close)

	cfg := contract.DefaultConfig()
	origin, err := url.Parse(o.URL)
	require.NoError(t, err)
	cfg.Origin = origin

	logger := log.New(io.Discard, "", 0)
	f := &controlFixture{
		notifier: host.NewConsoleNotifier(io.Discard, false),
		clients:  host.NewClientRegistry(logger),
		payments: host.NewLoggingPaymentSyncer(logger),
	}

	reg := core.NewRegistration()
	if withWorker {
		w := core.NewWorker(cfg, iocache.NewMemoryStorage(), netfetch.NewFetcher(cfg, nil),
			core.WithLogger(logger),
			core.WithNotifier(f.notifier),
			core.WithClients(f.clients),
			core.WithPaymentSyncer(f.payments),
			core.WithPushManager(host.NewHTTPPushManager(pushSrv.URL, nil)),
		)
		require.NoError(t, reg.Update(context.Background(), w))
		t.Cleanup(w.Wait)
	}

	f.srv = httptest.NewServer(NewServeMux(cfg, reg, logger))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *controlFixture) post(t *testing.T, path, body string) (int, string) {
	resp, err := f.srv.Client().Post(f.srv.URL+path, "text/plain", strings.NewReader(body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestControlWithoutWorker(t *testing.T) {
	f := newControlFixture(t, false)

	status, body := f.post(t, ControlPrefix+"push", "hello")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, "no active worker")

	resp, err := f.srv.Client().Get(f.srv.URL + ControlPrefix + "worker")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestControlWorkerInfo(t *testing.T) {
	f := newControlFixture(t, true)

	resp, err := f.srv.Client().Get(f.srv.URL + ControlPrefix + "worker")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var info workerInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, workerInfo{Version: schema.DefaultCacheVersion, State: schema.Activated}, info)
}

func TestControlPushAndClick(t *testing.T) {
	f := newControlFixture(t, true)

	status, body := f.post(t, ControlPrefix+"push", `{"title":"Bill","data":{"url":"/billing/"}}`)
	require.Equal(t, http.StatusOK, status)
	var n schema.Notification
	require.NoError(t, json.Unmarshal([]byte(body), &n))
	assert.Equal(t, "Bill", n.Title)
	assert.Equal(t, schema.DefaultNotificationBody, n.Body)
	require.Len(t, f.notifier.Visible(), 1)

	q := url.Values{"tag": {n.Tag}, "action": {schema.ViewAction}, "url": {n.Data.URL}}
	status, _ = f.post(t, ControlPrefix+"notificationclick?"+q.Encode(), "")
	assert.Equal(t, http.StatusNoContent, status)
	assert.Empty(t, f.notifier.Visible())
	assert.Equal(t, []string{"/billing/"}, f.clients.Opened())

	status, body = f.post(t, ControlPrefix+"push", "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal([]byte(body), &n))
	assert.Equal(t, schema.DefaultNotificationBody, n.Body)
}

func TestControlSyncAndSubscription(t *testing.T) {
	f := newControlFixture(t, true)

	status, _ := f.post(t, ControlPrefix+"sync?tag="+schema.PaymentSyncTag, "")
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = f.post(t, ControlPrefix+"sync?tag=other", "")
	assert.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, int64(1), f.payments.Runs())

	status, body := f.post(t, ControlPrefix+"pushsubscriptionchange", "")
	require.Equal(t, http.StatusOK, status)
	var sub schema.PushSubscription
	require.NoError(t, json.Unmarshal([]byte(body), &sub))
	assert.Equal(t, "https://push.example.com/new", sub.Endpoint)
}

func TestControlClickDefaultsToRoot(t *testing.T) {
	f := newControlFixture(t, true)
	status, body := f.post(t, ControlPrefix+"notificationclick?tag=x", "")
	assert.Equal(t, http.StatusNoContent, status, body)
	assert.Equal(t, []string{schema.DefaultNotificationURL}, f.clients.Opened())
}
