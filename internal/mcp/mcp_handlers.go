package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/swagent/core"
	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func (h *toolHandler) storage() (contract.CacheStorage, error) {
	if h.mgr == nil {
		return nil, fmt.Errorf("cache storage is not initialized")
	}
	storage := h.mgr.GetCacheStorage()
	if storage == nil {
		return nil, fmt.Errorf("cache storage is not initialized")
	}
	return storage, nil
}

func (h *toolHandler) handleGetCacheStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	storage, err := h.storage()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := storage.GetStatus(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListCacheEntries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	storage, err := h.storage()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	partition := request.GetString("partition", "")
	limit := request.GetInt("limit", 0)
	if limit < 0 {
		return mcp.NewToolResultError("--limit cannot be negative"), nil
	}

	records, err := storage.Entries(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}

	filtered := make([]schema.CacheEntryRecord, 0, len(records))
	for _, r := range records {
		if partition != "" && r.Partition != partition {
			continue
		}
		filtered = append(filtered, r)
		if limit > 0 && len(filtered) == limit {
			break
		}
	}

	jsonData, _ := json.MarshalIndent(filtered, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// classification is the result of classify_request.
type classification struct {
	URL      string          `json:"url"`
	Key      string          `json:"key"`
	Strategy schema.Strategy `json:"strategy"`
}

func (h *toolHandler) handleClassifyRequest(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL := strings.TrimSpace(request.GetString("url", ""))
	if rawURL == "" {
		return mcp.NewToolResultError("--url is required"), nil
	}

	req := schema.NewRequest(h.baseCfg.ResolveURL(rawURL))
	if m := request.GetString("method", ""); m != "" {
		req.Method = strings.ToUpper(m)
	}
	req.Mode = schema.RequestMode(request.GetString("mode", ""))
	req.Destination = schema.Destination(request.GetString("destination", ""))

	jsonData, _ := json.MarshalIndent(classification{
		URL:      req.URL,
		Key:      req.Key(),
		Strategy: core.Classify(h.baseCfg, req),
	}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRenderPushPayload(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload := request.GetString("payload", "")
	var data []byte
	if payload != "" {
		data = []byte(payload)
	}
	n := core.BuildNotification(core.MergePayload(data, time.Now()))

	jsonData, _ := json.MarshalIndent(n, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
