package schema

// NotificationData is the payload attached to a displayed notification.
type NotificationData struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}

// NotificationPayload is the content of a push message after merging with defaults.
type NotificationPayload struct {
	Title   string           `json:"title"`
	Body    string           `json:"body"`
	Icon    string           `json:"icon"`
	Badge   string           `json:"badge"`
	Vibrate []int            `json:"vibrate"`
	Data    NotificationData `json:"data"`
}

// NotificationOverride is a partial payload decoded from a push message.
// Nil fields keep the default value.
type NotificationOverride struct {
	Title   *string           `json:"title"`
	Body    *string           `json:"body"`
	Icon    *string           `json:"icon"`
	Badge   *string           `json:"badge"`
	Vibrate []int             `json:"vibrate"`
	Data    *NotificationData `json:"data"`
}

// Apply overrides p field by field. Data is replaced as a whole.
func (o NotificationOverride) Apply(p NotificationPayload) NotificationPayload {
	if o.Title != nil {
		p.Title = *o.Title
	}
	if o.Body != nil {
		p.Body = *o.Body
	}
	if o.Icon != nil {
		p.Icon = *o.Icon
	}
	if o.Badge != nil {
		p.Badge = *o.Badge
	}
	if o.Vibrate != nil {
		p.Vibrate = o.Vibrate
	}
	if o.Data != nil {
		p.Data = *o.Data
	}
	return p
}

// NotificationAction is a button shown on a notification.
type NotificationAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// Notification is what the worker asks the host to display.
type Notification struct {
	Tag     string               `json:"tag"`
	Title   string               `json:"title"`
	Body    string               `json:"body"`
	Icon    string               `json:"icon"`
	Badge   string               `json:"badge"`
	Vibrate []int                `json:"vibrate"`
	Data    NotificationData     `json:"data"`
	Actions []NotificationAction `json:"actions"`
}

// DefaultActions are the actions offered on every notification.
var DefaultActions = []NotificationAction{
	{Action: ViewAction, Title: "View"},
	{Action: DismissAction, Title: "Dismiss"},
}

// SubscribeOptions are passed to the push service when subscribing.
type SubscribeOptions struct {
	UserVisibleOnly      bool   `json:"userVisibleOnly"`
	ApplicationServerKey []byte `json:"applicationServerKey"`
}

// SubscriptionKeys are the client keys of a push subscription.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// PushSubscription identifies one client endpoint at a push delivery service.
type PushSubscription struct {
	Endpoint       string           `json:"endpoint"`
	ExpirationTime *int64           `json:"expirationTime"`
	Keys           SubscriptionKeys `json:"keys"`
}
