package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/internal/iocache"
	mcp_internal "github.com/huangsam/swagent/internal/mcp"
	"github.com/huangsam/swagent/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, mgr contract.CacheManager, name string, args map[string]any) *mcp.CallToolResult {
	s := mcp_internal.NewMCPServer(contract.DefaultConfig(), mgr)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func seededManager(t *testing.T) contract.CacheManager {
	ctx := context.Background()
	storage := iocache.NewMemoryStorage()
	for _, name := range []string{"starlink-pwa-v0.9", schema.DefaultCacheVersion} {
		cache, err := storage.Open(ctx, name)
		require.NoError(t, err)
		require.NoError(t, cache.Put(ctx, "http://localhost:8000/", &schema.Response{Status: 200, Type: schema.BasicResponse, Body: []byte("home")}))
	}
	cache, err := storage.Open(ctx, schema.DefaultCacheVersion)
	require.NoError(t, err)
	require.NoError(t, cache.Put(ctx, "http://localhost:8000/offline/", &schema.Response{Status: 200, Type: schema.BasicResponse, Body: []byte("offline")}))

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetCacheStorage").Return(storage)
	return mgr
}

func TestGetCacheStatus(t *testing.T) {
	res := callTool(t, seededManager(t), "get_cache_status", nil)
	require.False(t, res.IsError)

	var status schema.CacheStatus
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &status))
	assert.Equal(t, "none", status.Backend)
	assert.Equal(t, 3, status.TotalEntries)
	assert.Equal(t, []string{"starlink-pwa-v0.9", schema.DefaultCacheVersion}, status.Partitions)
}

func TestGetCacheStatusErrors(t *testing.T) {
	res := callTool(t, nil, "get_cache_status", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "not initialized")

	storage := &iocache.MockCacheStorage{}
	storage.On("GetStatus", mock.Anything).Return(schema.CacheStatus{}, errors.New("db down"))
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetCacheStorage").Return(storage)

	res = callTool(t, mgr, "get_cache_status", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "db down")
}

func TestListCacheEntries(t *testing.T) {
	mgr := seededManager(t)

	res := callTool(t, mgr, "list_cache_entries", map[string]any{"partition": schema.DefaultCacheVersion})
	require.False(t, res.IsError)
	var records []schema.CacheEntryRecord
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "http://localhost:8000/", records[0].Key)
	assert.Equal(t, int64(7), records[1].BodyBytes)

	res = callTool(t, mgr, "list_cache_entries", map[string]any{"limit": 1.0})
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "starlink-pwa-v0.9", records[0].Partition)

	res = callTool(t, mgr, "list_cache_entries", map[string]any{"limit": -1.0})
	assert.True(t, res.IsError)
}

func TestClassifyRequest(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want schema.Strategy
	}{
		{"navigation", map[string]any{"url": "/dashboard/", "mode": "navigate"}, schema.NavigationStrategy},
		{"payment", map[string]any{"url": "/mpesa/stk_push/", "mode": "navigate"}, schema.PaymentStrategy},
		{"asset", map[string]any{"url": "/static/app.js", "destination": "script"}, schema.CacheFirstStrategy},
		{"post", map[string]any{"url": "/api/push-subscription/", "method": "post"}, schema.PassthroughStrategy},
		{"extension", map[string]any{"url": "chrome-extension://abc/x.js"}, schema.PassthroughStrategy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, nil, "classify_request", tt.args)
			require.False(t, res.IsError)
			var got struct {
				URL      string          `json:"url"`
				Strategy schema.Strategy `json:"strategy"`
			}
			require.NoError(t, json.Unmarshal([]byte(resultText(res)), &got))
			assert.Equal(t, tt.want, got.Strategy)
		})
	}

	res := callTool(t, nil, "classify_request", map[string]any{"url": " "})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "--url is required")
}

func TestRenderPushPayload(t *testing.T) {
	res := callTool(t, nil, "render_push_payload", map[string]any{"payload": `{"title":"Bill","body":"KES 6,500 due"}`})
	require.False(t, res.IsError)
	var n schema.Notification
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &n))
	assert.Equal(t, "Bill", n.Title)
	assert.Equal(t, "KES 6,500 due", n.Body)
	assert.Equal(t, schema.DefaultNotificationIcon, n.Icon)
	assert.NotEmpty(t, n.Tag)
	assert.WithinDuration(t, time.Now(), time.UnixMilli(n.Data.Timestamp), time.Minute)

	res = callTool(t, nil, "render_push_payload", nil)
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &n))
	assert.Equal(t, schema.DefaultNotificationBody, n.Body)
}
