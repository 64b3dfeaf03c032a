package host

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/huangsam/swagent/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestClientRegistry(t *testing.T) {
	ctx := context.Background()
	c := NewClientRegistry(discardLogger())
	assert.Empty(t, c.Controller())

	require.NoError(t, c.Claim(ctx, "starlink-pwa-v1.0"))
	require.NoError(t, c.Claim(ctx, "starlink-pwa-v1.1"))
	assert.Equal(t, "starlink-pwa-v1.1", c.Controller())

	require.NoError(t, c.OpenWindow(ctx, "/"))
	require.NoError(t, c.OpenWindow(ctx, "/billing/"))
	assert.Equal(t, []string{"/", "/billing/"}, c.Opened())
}

func TestConsoleNotifier(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	n := NewConsoleNotifier(&buf, false)

	first := schema.Notification{Tag: "a", Title: "Starlink Kenya", Body: "New update available", Actions: schema.DefaultActions}
	require.NoError(t, n.Show(ctx, first))
	assert.Equal(t, "Starlink Kenya: New update available [View] [Dismiss]\n", buf.String())

	replaced := first
	replaced.Body = "Payment received"
	require.NoError(t, n.Show(ctx, replaced))
	require.NoError(t, n.Show(ctx, schema.Notification{Tag: "b", Title: "Other"}))
	require.Len(t, n.Visible(), 2)
	assert.Equal(t, "Payment received", n.Visible()[0].Body)

	require.NoError(t, n.Close(ctx, "a"))
	require.NoError(t, n.Close(ctx, "missing"))
	require.Len(t, n.Visible(), 1)
	assert.Equal(t, "b", n.Visible()[0].Tag)
}

func TestHTTPPushManagerSubscribe(t *testing.T) {
	var got schema.SubscribeOptions
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"endpoint":"https://push.example.com/abc","expirationTime":null,"keys":{"p256dh":"p","auth":"a"}}`)
	}))
	defer srv.Close()

	p := NewHTTPPushManager(srv.URL, nil)
	opts := schema.SubscribeOptions{UserVisibleOnly: true, ApplicationServerKey: []byte{1, 2, 3}}
	sub, err := p.Subscribe(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, opts, got)
	assert.Equal(t, "https://push.example.com/abc", sub.Endpoint)
	assert.Nil(t, sub.ExpirationTime)
	assert.Equal(t, schema.SubscriptionKeys{P256dh: "p", Auth: "a"}, sub.Keys)
}

func TestHTTPPushManagerErrors(t *testing.T) {
	_, err := NewHTTPPushManager("", nil).Subscribe(context.Background(), schema.SubscribeOptions{})
	assert.ErrorIs(t, err, ErrNoPushService)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()
	_, err = NewHTTPPushManager(srv.URL, nil).Subscribe(context.Background(), schema.SubscribeOptions{})
	assert.ErrorContains(t, err, "403")

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer empty.Close()
	_, err = NewHTTPPushManager(empty.URL, nil).Subscribe(context.Background(), schema.SubscribeOptions{})
	assert.Error(t, err)
}

func TestLoggingPaymentSyncer(t *testing.T) {
	var buf bytes.Buffer
	p := NewLoggingPaymentSyncer(log.New(&buf, "", 0))

	require.NoError(t, p.SyncPendingPayments(context.Background()))
	require.NoError(t, p.SyncPendingPayments(context.Background()))
	assert.Equal(t, int64(2), p.Runs())
	assert.Contains(t, buf.String(), "payment sync #2")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.SyncPendingPayments(ctx), context.Canceled)
	assert.Equal(t, int64(2), p.Runs())
}
