// Package netfetch performs live network fetches for the worker.
package netfetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
)

// Fetcher fetches requests over HTTP.
type Fetcher struct {
	cfg    *contract.Config
	client *http.Client
}

var _ contract.Fetcher = &Fetcher{} // Compile-time check

// NewFetcher returns a fetcher using cfg for origin checks and timeouts.
// A nil client selects a new client with cfg.FetchTimeout.
func NewFetcher(cfg *contract.Config, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: cfg.FetchTimeout}
	}
	return &Fetcher{cfg: cfg, client: client}
}

// Fetch sends req and snapshots the response.
// Any HTTP status is a successful fetch; only transport failures are errors.
func (f *Fetcher) Fetch(ctx context.Context, req *schema.Request) (*schema.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", req.URL, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	httpResp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", req.URL, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", req.URL, err)
	}

	respType := schema.CORSResponse
	if f.cfg.SameOrigin(req.URL) {
		respType = schema.BasicResponse
	}
	return &schema.Response{
		URL:        httpResp.Request.URL.String(),
		Status:     httpResp.StatusCode,
		StatusText: http.StatusText(httpResp.StatusCode),
		Type:       respType,
		Header:     httpResp.Header.Clone(),
		Body:       data,
	}, nil
}
