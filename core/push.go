package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/swagent/schema"
)

// DefaultPayload returns the notification shown when a push carries no usable fields.
func DefaultPayload(now time.Time) schema.NotificationPayload {
	return schema.NotificationPayload{
		Title:   schema.DefaultNotificationTitle,
		Body:    schema.DefaultNotificationBody,
		Icon:    schema.DefaultNotificationIcon,
		Badge:   schema.DefaultNotificationBadge,
		Vibrate: slices.Clone(schema.DefaultVibratePattern),
		Data: schema.NotificationData{
			URL:       schema.DefaultNotificationURL,
			Timestamp: now.UnixMilli(),
		},
	}
}

// MergePayload applies a push message body to the defaults.
// A JSON object overrides the defaults field by field, JSON null keeps them,
// and a JSON string becomes the body unquoted. Anything else is used verbatim
// as the body; an empty text keeps the default body.
func MergePayload(data []byte, now time.Time) schema.NotificationPayload {
	payload := DefaultPayload(now)
	if data == nil {
		return payload
	}

	trimmed := bytes.TrimSpace(data)
	if string(trimmed) == "null" {
		return payload
	}
	var override schema.NotificationOverride
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&override); err == nil && isJSONObject(data) && !dec.More() {
		return override.Apply(payload)
	}
	text := string(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			text = s
		}
	}
	if text != "" {
		payload.Body = text
	}
	return payload
}

// isJSONObject reports whether data holds a JSON object rather than null, an array or a scalar.
func isJSONObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// BuildNotification turns a payload into a displayable notification with a fresh tag.
func BuildNotification(p schema.NotificationPayload) schema.Notification {
	return schema.Notification{
		Tag:     uuid.NewString(),
		Title:   p.Title,
		Body:    p.Body,
		Icon:    p.Icon,
		Badge:   p.Badge,
		Vibrate: p.Vibrate,
		Data:    p.Data,
		Actions: slices.Clone(schema.DefaultActions),
	}
}

// handlePush shows a notification for a push message.
func (w *Worker) handlePush(ctx context.Context, ev Event) (Outcome, error) {
	n := BuildNotification(MergePayload(ev.Data, w.now()))
	if w.notifier == nil {
		return Outcome{Notification: &n}, fmt.Errorf("show notification: %w", ErrMissingCollaborator)
	}
	if err := w.notifier.Show(ctx, n); err != nil {
		return Outcome{Notification: &n}, fmt.Errorf("show notification: %w", err)
	}
	return Outcome{Notification: &n}, nil
}

// handleNotificationClick closes the notification and opens its target for view or a plain tap.
func (w *Worker) handleNotificationClick(ctx context.Context, ev Event) (Outcome, error) {
	w.logger.Printf("notification click: %q", ev.Action)
	if ev.Notification == nil {
		return Outcome{}, fmt.Errorf("notification click without a notification")
	}
	if w.notifier != nil {
		if err := w.notifier.Close(ctx, ev.Notification.Tag); err != nil {
			return Outcome{}, fmt.Errorf("close notification: %w", err)
		}
	}

	if ev.Action != schema.ViewAction && ev.Action != "" {
		return Outcome{}, nil
	}
	target := ev.Notification.Data.URL
	if target == "" {
		target = schema.DefaultNotificationURL
	}
	if w.clients == nil {
		return Outcome{}, fmt.Errorf("open window: %w", ErrMissingCollaborator)
	}
	if err := w.clients.OpenWindow(ctx, target); err != nil {
		return Outcome{}, fmt.Errorf("open window %s: %w", target, err)
	}
	return Outcome{}, nil
}
