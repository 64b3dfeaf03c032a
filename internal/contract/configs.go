package contract

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/swagent/schema"
)

// Default values for configuration.
const (
	DefaultOrigin = "http://localhost:8000"
	DefaultListen = "127.0.0.1:8080"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for the agent.
// This struct remains the "final, validated" config.
type Config struct {
	Origin *url.URL // Upstream web application; relative asset paths resolve against it
	Listen string   // Address the proxy listens on

	CacheVersion         string   // Name of the current cache partition
	OfflineURL           string   // Page served when a navigation fails
	Assets               []string // App shell cached at install
	FallbackImage        string   // Served for failed image requests
	PaymentEndpoints     []string // URL fragments that bypass the cache
	SubscriptionEndpoint string   // Receives renewed push subscriptions
	VAPIDKey             string   // URL-safe base64 application server key
	PushService          string   // Subscribe endpoint of the push delivery service

	FetchTimeout time.Duration // 0 = no timeout

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Origin         string `mapstructure:"origin"`
	CacheVersion   string `mapstructure:"cache-version"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	FetchTimeout   string `mapstructure:"fetch-timeout"`

	// --- Fields from serveCmd.Flags() ---
	Listen string `mapstructure:"listen"`

	// --- Fields from the config file only ---
	OfflineURL           string   `mapstructure:"offline-url"`
	Assets               []string `mapstructure:"assets"`
	FallbackImage        string   `mapstructure:"fallback-image"`
	PaymentEndpoints     []string `mapstructure:"payment-endpoints"`
	SubscriptionEndpoint string   `mapstructure:"subscription-endpoint"`
	VAPIDKey             string   `mapstructure:"vapid-key"`
	PushService          string   `mapstructure:"push-service"`
}

// DefaultConfig returns a validated config with the Starlink defaults and an in-memory backend.
func DefaultConfig() *Config {
	origin, _ := url.Parse(DefaultOrigin)
	return &Config{
		Origin:               origin,
		Listen:               DefaultListen,
		CacheVersion:         schema.DefaultCacheVersion,
		OfflineURL:           schema.DefaultOfflineURL,
		Assets:               slices.Clone(schema.DefaultAppShell),
		FallbackImage:        schema.DefaultFallbackImage,
		PaymentEndpoints:     slices.Clone(schema.DefaultPaymentEndpoints),
		SubscriptionEndpoint: schema.DefaultSubscriptionEndpoint,
		VAPIDKey:             schema.DefaultVAPIDKey,
		CacheBackend:         schema.NoneBackend,
		Output:               schema.TextOut,
	}
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Origin != nil {
		origin := *c.Origin
		clone.Origin = &origin
	}
	clone.Assets = slices.Clone(c.Assets)
	clone.PaymentEndpoints = slices.Clone(c.PaymentEndpoints)
	return &clone
}

// ResolveURL resolves a path such as "/offline/" against the origin.
// Absolute URLs are returned unchanged.
func (c *Config) ResolveURL(ref string) string {
	u, err := url.Parse(ref)
	if err != nil || c.Origin == nil {
		return ref
	}
	return c.Origin.ResolveReference(u).String()
}

// SameOrigin reports whether rawURL shares scheme and host with the origin.
func (c *Config) SameOrigin(rawURL string) bool {
	if c.Origin == nil {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, c.Origin.Scheme) && strings.EqualFold(u.Host, c.Origin.Host)
}

// ProcessAndValidate performs all complex parsing, validation, and data transfer.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return processAppShell(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the cache backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	return ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect)
}

// validateSimpleInputs processes and validates the origin, listener and output fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Listen = input.Listen
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Origin Validation ---
	originStr := input.Origin
	if originStr == "" {
		originStr = DefaultOrigin
	}
	origin, err := url.Parse(originStr)
	if err != nil {
		return fmt.Errorf("invalid origin %q: %w", originStr, err)
	}
	if origin.Scheme != "http" && origin.Scheme != "https" {
		return fmt.Errorf("origin must be an http or https URL (received %q)", originStr)
	}
	if origin.Host == "" {
		return fmt.Errorf("origin must include a host (received %q)", originStr)
	}
	cfg.Origin = origin

	// --- 2. Output Validation ---
	output := input.Output
	if output == "" {
		output = string(schema.TextOut)
	}
	cfg.Output = schema.OutputMode(strings.ToLower(output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}

	// --- 3. Fetch Timeout ---
	cfg.FetchTimeout = 0
	if input.FetchTimeout != "" {
		d, err := time.ParseDuration(input.FetchTimeout)
		if err != nil {
			return fmt.Errorf("invalid fetch-timeout %q: %w", input.FetchTimeout, err)
		}
		if d < 0 {
			return fmt.Errorf("fetch-timeout cannot be negative (received %s)", d)
		}
		cfg.FetchTimeout = d
	}

	return nil
}

// processAppShell fills the cache and routing settings, falling back to the Starlink defaults.
func processAppShell(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheVersion = strings.TrimSpace(input.CacheVersion)
	if cfg.CacheVersion == "" {
		cfg.CacheVersion = schema.DefaultCacheVersion
	}

	cfg.OfflineURL = orDefault(input.OfflineURL, schema.DefaultOfflineURL)
	cfg.FallbackImage = orDefault(input.FallbackImage, schema.DefaultFallbackImage)
	cfg.SubscriptionEndpoint = orDefault(input.SubscriptionEndpoint, schema.DefaultSubscriptionEndpoint)
	cfg.VAPIDKey = orDefault(input.VAPIDKey, schema.DefaultVAPIDKey)
	cfg.PushService = strings.TrimSpace(input.PushService)

	cfg.Assets = trimNonEmpty(input.Assets)
	if len(cfg.Assets) == 0 {
		cfg.Assets = slices.Clone(schema.DefaultAppShell)
	}
	if !slices.Contains(cfg.Assets, cfg.OfflineURL) {
		return fmt.Errorf("offline page %q must be part of the cached assets", cfg.OfflineURL)
	}

	cfg.PaymentEndpoints = trimNonEmpty(input.PaymentEndpoints)
	if len(cfg.PaymentEndpoints) == 0 {
		cfg.PaymentEndpoints = slices.Clone(schema.DefaultPaymentEndpoints)
	}

	if cfg.PushService != "" {
		if _, err := url.ParseRequestURI(cfg.PushService); err != nil {
			return fmt.Errorf("invalid push-service %q: %w", cfg.PushService, err)
		}
	}
	return nil
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

func trimNonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
