package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
)

// ErrNoPushService is returned when no push service endpoint is configured.
var ErrNoPushService = errors.New("no push service configured")

// HTTPPushManager subscribes by posting the subscribe options to a push service.
type HTTPPushManager struct {
	endpoint string
	client   *http.Client
}

var _ contract.PushManager = &HTTPPushManager{} // Compile-time check

// NewHTTPPushManager returns a push manager for endpoint. A nil client selects http.DefaultClient.
func NewHTTPPushManager(endpoint string, client *http.Client) *HTTPPushManager {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPPushManager{endpoint: endpoint, client: client}
}

// Subscribe asks the push service for a new subscription.
func (p *HTTPPushManager) Subscribe(ctx context.Context, opts schema.SubscribeOptions) (*schema.PushSubscription, error) {
	if p.endpoint == "" {
		return nil, ErrNoPushService
	}
	body, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("encode subscribe options: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("push service returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var sub schema.PushSubscription
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return nil, fmt.Errorf("decode subscription: %w", err)
	}
	if sub.Endpoint == "" {
		return nil, errors.New("push service returned a subscription without endpoint")
	}
	return &sub, nil
}
