package schema

// Custom string types for type safety.
type (
	// EventKind names a lifecycle, network or messaging event handled by the worker.
	EventKind string

	// LifecycleState represents the state of a worker instance.
	LifecycleState string

	// Strategy represents how an intercepted request is answered.
	Strategy string

	// RequestMode mirrors the fetch mode of a request.
	RequestMode string

	// Destination mirrors the destination hint of a request.
	Destination string

	// ResponseType classifies where a response came from.
	ResponseType string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for cache partitions.
	DatabaseBackend string
)

// All events the worker dispatches.
const (
	InstallEvent                EventKind = "install"
	ActivateEvent               EventKind = "activate"
	FetchEvent                  EventKind = "fetch"
	PushEvent                   EventKind = "push"
	NotificationClickEvent      EventKind = "notificationclick"
	PushSubscriptionChangeEvent EventKind = "pushsubscriptionchange"
	SyncEvent                   EventKind = "sync"
)

// Lifecycle states of a worker instance.
const (
	Installing LifecycleState = "installing"
	Installed  LifecycleState = "installed" // waiting
	Activating LifecycleState = "activating"
	Activated  LifecycleState = "activated"
)

// Fetch handling strategies, in decision order.
const (
	PassthroughStrategy Strategy = "passthrough"
	PaymentStrategy     Strategy = "payment"
	NavigationStrategy  Strategy = "navigation"
	CacheFirstStrategy  Strategy = "cache-first"
)

// Request modes that matter to the policy.
const (
	NavigateMode   RequestMode = "navigate"
	SameOriginMode RequestMode = "same-origin"
	NoCORSMode     RequestMode = "no-cors"
	CORSMode       RequestMode = "cors"
)

// Request destinations that matter to the policy.
const (
	NoDestination       Destination = ""
	DocumentDestination Destination = "document"
	ImageDestination    Destination = "image"
	ScriptDestination   Destination = "script"
	StyleDestination    Destination = "style"
)

// Response types.
const (
	BasicResponse  ResponseType = "basic"
	CORSResponse   ResponseType = "cors"
	OpaqueResponse ResponseType = "opaque"
	ErrorResponse  ResponseType = "error"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // in-memory, not persisted
)

// Defaults for the Starlink application shell.
const (
	DefaultCacheVersion         = "starlink-pwa-v1.0"
	DefaultOfflineURL           = "/offline/"
	DefaultFallbackImage        = "/static/icons/icon-192x192.png"
	DefaultSubscriptionEndpoint = "/api/push-subscription/"
	DefaultVAPIDKey             = "YOUR_PUBLIC_VAPID_KEY_HERE"
	PaymentSyncTag              = "sync-payments"
)

// Notification defaults and actions.
const (
	DefaultNotificationTitle = "Starlink Kenya"
	DefaultNotificationBody  = "New update available"
	DefaultNotificationIcon  = "/static/icons/icon-192x192.png"
	DefaultNotificationBadge = "/static/icons/icon-72x72.png"
	DefaultNotificationURL   = "/"

	ViewAction    = "view"
	DismissAction = "dismiss"
)

// PaymentErrorMessage is the message of the synthesized payment failure body.
const PaymentErrorMessage = "Network error. Please check your connection."

// DefaultAppShell is the ordered list of assets needed to render the app offline.
var DefaultAppShell = []string{
	"/",
	DefaultOfflineURL,
	"/manifest.json",
	"/static/icons/icon-72x72.png",
	"/static/icons/icon-96x96.png",
	"/static/icons/icon-128x128.png",
	"/static/icons/icon-192x192.png",
	"/static/icons/icon-512x512.png",
}

// DefaultPaymentEndpoints are URL fragments of endpoints that must never be served from cache.
var DefaultPaymentEndpoints = []string{
	"/mpesa/stk_push/",
	"/mpesa/callback/",
}

// DefaultVibratePattern is the vibration pattern of a default notification.
var DefaultVibratePattern = []int{200, 100, 200}

// IgnoredSchemes are URL prefixes of requests that are never intercepted.
var IgnoredSchemes = []string{
	"chrome-extension://",
	"moz-extension://",
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid cache backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
