// Package core has the worker logic: lifecycle, fetch policy, push handling and registration.
package core

import (
	"errors"

	"github.com/huangsam/swagent/schema"
)

// Sentinel errors returned by the worker.
var (
	// ErrInstallFailed wraps any failure while caching the app shell.
	ErrInstallFailed = errors.New("install failed")

	// ErrIllegalTransition is returned when a lifecycle transition is not allowed.
	ErrIllegalTransition = errors.New("illegal lifecycle transition")

	// ErrNoHandler is returned for events the worker does not handle.
	ErrNoHandler = errors.New("no handler for event")

	// ErrMissingCollaborator is returned when an event needs a host collaborator that was not configured.
	ErrMissingCollaborator = errors.New("host collaborator not configured")
)

// Event is one lifecycle, network or messaging event delivered to a worker.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind schema.EventKind

	Request *schema.Request // fetch

	Data []byte // push; nil when the message has no body

	Notification *schema.Notification // notificationclick
	Action       string               // notificationclick; "" for a plain tap

	Tag string // sync
}

// InstallEvt returns an install event.
func InstallEvt() Event { return Event{Kind: schema.InstallEvent} }

// ActivateEvt returns an activate event.
func ActivateEvt() Event { return Event{Kind: schema.ActivateEvent} }

// FetchEvt returns a fetch event for req.
func FetchEvt(req *schema.Request) Event { return Event{Kind: schema.FetchEvent, Request: req} }

// PushEvt returns a push event. A nil data means the message carried no body.
func PushEvt(data []byte) Event { return Event{Kind: schema.PushEvent, Data: data} }

// ClickEvt returns a notificationclick event.
func ClickEvt(n schema.Notification, action string) Event {
	return Event{Kind: schema.NotificationClickEvent, Notification: &n, Action: action}
}

// SubscriptionChangeEvt returns a pushsubscriptionchange event.
func SubscriptionChangeEvt() Event { return Event{Kind: schema.PushSubscriptionChangeEvent} }

// SyncEvt returns a sync event for tag.
func SyncEvt(tag string) Event { return Event{Kind: schema.SyncEvent, Tag: tag} }

// Outcome is what handling an event produced.
type Outcome struct {
	// Strategy is set for fetch events.
	Strategy schema.Strategy

	// Response answers a fetch event. Nil means pass-through: the host performs its default network behaviour.
	Response *schema.Response

	// Notification is the notification shown for a push event.
	Notification *schema.Notification

	// Subscription is the renewed push subscription.
	Subscription *schema.PushSubscription
}

// Handled reports whether a fetch event was answered by the worker.
func (o Outcome) Handled() bool {
	return o.Response != nil
}
