package contract

import (
	"testing"
	"time"

	"github.com/huangsam/swagent/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		input       *ConfigRawInput
		expectError bool
	}{
		{
			name: "valid minimal config",
			input: &ConfigRawInput{
				CacheBackend: string(schema.NoneBackend),
				Color:        "yes",
			},
			expectError: false,
		},
		{
			name: "invalid origin scheme",
			input: &ConfigRawInput{
				Origin:       "ftp://example.com",
				CacheBackend: string(schema.NoneBackend),
				Color:        "yes",
			},
			expectError: true,
		},
		{
			name: "origin without host",
			input: &ConfigRawInput{
				Origin:       "http://",
				CacheBackend: string(schema.NoneBackend),
				Color:        "yes",
			},
			expectError: true,
		},
		{
			name: "invalid output",
			input: &ConfigRawInput{
				Output:       "xml",
				CacheBackend: string(schema.NoneBackend),
				Color:        "yes",
			},
			expectError: true,
		},
		{
			name: "invalid color",
			input: &ConfigRawInput{
				CacheBackend: string(schema.NoneBackend),
				Color:        "sometimes",
			},
			expectError: true,
		},
		{
			name: "invalid backend",
			input: &ConfigRawInput{
				CacheBackend: "redis",
				Color:        "yes",
			},
			expectError: true,
		},
		{
			name: "mysql without connection string",
			input: &ConfigRawInput{
				CacheBackend: string(schema.MySQLBackend),
				Color:        "yes",
			},
			expectError: true,
		},
		{
			name: "negative fetch timeout",
			input: &ConfigRawInput{
				CacheBackend: string(schema.NoneBackend),
				Color:        "yes",
				FetchTimeout: "-1s",
			},
			expectError: true,
		},
		{
			name: "offline page missing from assets",
			input: &ConfigRawInput{
				CacheBackend: string(schema.NoneBackend),
				Color:        "yes",
				Assets:       []string{"/", "/manifest.json"},
			},
			expectError: true,
		},
		{
			name: "invalid push service",
			input: &ConfigRawInput{
				CacheBackend: string(schema.NoneBackend),
				Color:        "yes",
				PushService:  "not a url",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := ProcessAndValidate(cfg, tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	err := ProcessAndValidate(cfg, &ConfigRawInput{CacheBackend: "SQLite", Color: "no", FetchTimeout: "5s"})
	require.NoError(t, err)

	assert.Equal(t, DefaultOrigin, cfg.Origin.String())
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, schema.DefaultCacheVersion, cfg.CacheVersion)
	assert.Equal(t, schema.DefaultOfflineURL, cfg.OfflineURL)
	assert.Equal(t, schema.DefaultAppShell, cfg.Assets)
	assert.Equal(t, schema.DefaultPaymentEndpoints, cfg.PaymentEndpoints)
	assert.Equal(t, schema.DefaultVAPIDKey, cfg.VAPIDKey)
	assert.Equal(t, schema.SQLiteBackend, cfg.CacheBackend)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.False(t, cfg.UseColors)
}

func TestProcessAndValidateAssetOverride(t *testing.T) {
	cfg := &Config{}
	err := ProcessAndValidate(cfg, &ConfigRawInput{
		CacheBackend: "none",
		Color:        "yes",
		Assets:       []string{" / ", "/offline/", "", "/offline/", "/app.css"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/offline/", "/app.css"}, cfg.Assets, "assets are trimmed and deduplicated in order")
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "root:pw@tcp(localhost:3306)/swagent"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "root:pw@localhost/swagent"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=swagent"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost"))
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:8000/offline/", cfg.ResolveURL("/offline/"))
	assert.Equal(t, "https://cdn.example.com/a.js", cfg.ResolveURL("https://cdn.example.com/a.js"))

	assert.True(t, cfg.SameOrigin("http://LOCALHOST:8000/static/app.js"))
	assert.False(t, cfg.SameOrigin("https://localhost:8000/static/app.js"))
	assert.False(t, cfg.SameOrigin("http://cdn.example.com/app.js"))

	clone := cfg.Clone()
	clone.Assets[0] = "/changed"
	clone.Origin.Host = "other:1"
	assert.Equal(t, "/", cfg.Assets[0], "clone must not share the asset slice")
	assert.Equal(t, "localhost:8000", cfg.Origin.Host, "clone must not share the origin")
}
