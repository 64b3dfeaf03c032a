package core

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/huangsam/swagent/schema"
)

// DecodeVAPIDKey decodes a URL-safe base64 application server key, with or without padding.
func DecodeVAPIDKey(key string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(key, "="))
	if err != nil {
		return nil, fmt.Errorf("decode VAPID key: %w", err)
	}
	return raw, nil
}

// handleSubscriptionChange re-subscribes and forwards the new subscription to the server.
// Errors are not recovered.
func (w *Worker) handleSubscriptionChange(ctx context.Context, _ Event) (Outcome, error) {
	w.logger.Printf("push subscription changed")
	if w.push == nil {
		return Outcome{}, fmt.Errorf("subscribe: %w", ErrMissingCollaborator)
	}

	key, err := DecodeVAPIDKey(w.cfg.VAPIDKey)
	if err != nil {
		return Outcome{}, err
	}
	sub, err := w.push.Subscribe(ctx, schema.SubscribeOptions{UserVisibleOnly: true, ApplicationServerKey: key})
	if err != nil {
		return Outcome{}, fmt.Errorf("subscribe: %w", err)
	}

	body, err := json.Marshal(sub)
	if err != nil {
		return Outcome{Subscription: sub}, fmt.Errorf("encode subscription: %w", err)
	}
	req := &schema.Request{
		URL:    w.cfg.ResolveURL(w.cfg.SubscriptionEndpoint),
		Method: http.MethodPost,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   body,
	}
	if _, err := w.fetcher.Fetch(ctx, req); err != nil {
		return Outcome{Subscription: sub}, fmt.Errorf("send subscription: %w", err)
	}
	return Outcome{Subscription: sub}, nil
}
