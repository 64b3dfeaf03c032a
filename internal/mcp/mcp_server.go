// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the swagent MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"swagent Offline Cache Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_cache_status ---
	s.AddTool(mcp.NewTool("get_cache_status",
		mcp.WithDescription("Report the cache backend, its partitions and entry totals."),
	), h.handleGetCacheStatus)

	// --- 2. Tool: list_cache_entries ---
	s.AddTool(mcp.NewTool("list_cache_entries",
		mcp.WithDescription("List stored responses, oldest partition first."),
		mcp.WithString("partition", mcp.Description("Only list entries of this cache partition.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of entries returned.")),
	), h.handleListCacheEntries)

	// --- 3. Tool: classify_request ---
	s.AddTool(mcp.NewTool("classify_request",
		mcp.WithDescription("Show which strategy the worker applies to a request."),
		mcp.WithString("url", mcp.Description("Request URL, absolute or relative to the origin."), mcp.Required()),
		mcp.WithString("method", mcp.Description("HTTP method. Defaults to GET.")),
		mcp.WithString("mode", mcp.Description("Request mode."), mcp.Enum("navigate", "same-origin", "no-cors", "cors")),
		mcp.WithString("destination", mcp.Description("Request destination (document, image, script, style).")),
	), h.handleClassifyRequest)

	// --- 4. Tool: render_push_payload ---
	s.AddTool(mcp.NewTool("render_push_payload",
		mcp.WithDescription("Render a push message payload as the notification the worker would show."),
		mcp.WithString("payload", mcp.Description("Push message data: a JSON object or plain text. Empty shows the default notification.")),
	), h.handleRenderPushPayload)

	return s
}

// StartMCPServer starts the swagent MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
