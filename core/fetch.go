package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
)

// paymentErrorBody is the body of the synthesized payment failure.
type paymentErrorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Classify returns the strategy for req. The first matching rule wins.
func (w *Worker) Classify(req *schema.Request) schema.Strategy {
	return Classify(w.cfg, req)
}

// Classify returns the strategy cfg assigns to req.
func Classify(cfg *contract.Config, req *schema.Request) schema.Strategy {
	if req == nil || req.Method != http.MethodGet {
		return schema.PassthroughStrategy
	}
	for _, prefix := range schema.IgnoredSchemes {
		if strings.HasPrefix(req.URL, prefix) {
			return schema.PassthroughStrategy
		}
	}
	for _, endpoint := range cfg.PaymentEndpoints {
		if strings.Contains(req.URL, endpoint) {
			return schema.PaymentStrategy
		}
	}
	if req.IsNavigation() {
		return schema.NavigationStrategy
	}
	return schema.CacheFirstStrategy
}

// handleFetch answers an intercepted request according to its strategy.
func (w *Worker) handleFetch(ctx context.Context, ev Event) (Outcome, error) {
	strategy := w.Classify(ev.Request)
	out := Outcome{Strategy: strategy}

	var err error
	switch strategy {
	case schema.PaymentStrategy:
		out.Response, err = w.fetchPayment(ctx, ev.Request)
	case schema.NavigationStrategy:
		out.Response, err = w.fetchNavigation(ctx, ev.Request)
	case schema.CacheFirstStrategy:
		out.Response, err = w.fetchCacheFirst(ctx, ev.Request)
	}
	return out, err
}

// fetchPayment always goes to the network. A network failure becomes a 503 JSON response.
func (w *Worker) fetchPayment(ctx context.Context, req *schema.Request) (*schema.Response, error) {
	resp, err := w.fetcher.Fetch(ctx, req)
	if err == nil {
		return resp, nil
	}
	w.logger.Printf("payment API fetch failed: %v", err)
	return PaymentErrorResponse(req.URL), nil
}

// PaymentErrorResponse is the response served when a payment endpoint is unreachable.
func PaymentErrorResponse(url string) *schema.Response {
	body, _ := json.Marshal(paymentErrorBody{Status: "error", Message: schema.PaymentErrorMessage})
	return &schema.Response{
		URL:        url,
		Status:     http.StatusServiceUnavailable,
		StatusText: http.StatusText(http.StatusServiceUnavailable),
		Type:       schema.BasicResponse,
		Header: http.Header{
			"Content-Type":   []string{"application/json"},
			"Content-Length": []string{strconv.Itoa(len(body))},
		},
		Body: body,
	}
}

// fetchNavigation goes to the network and falls back to the offline page.
func (w *Worker) fetchNavigation(ctx context.Context, req *schema.Request) (*schema.Response, error) {
	resp, err := w.fetcher.Fetch(ctx, req)
	if err == nil {
		return resp, nil
	}
	offline, matchErr := w.storage.Match(ctx, schema.RequestKey(w.cfg.ResolveURL(w.cfg.OfflineURL)))
	if matchErr != nil {
		return nil, fmt.Errorf("navigation to %s failed and no offline page: %w", req.URL, errors.Join(err, matchErr))
	}
	return offline, nil
}

// fetchCacheFirst serves from the current partition, filling it from the network on a miss.
// A retired worker whose partition was deleted fetches live and stores nothing.
func (w *Worker) fetchCacheFirst(ctx context.Context, req *schema.Request) (*schema.Response, error) {
	key := req.Key()
	cache, err := w.storage.Lookup(ctx, w.Version())
	if errors.Is(err, contract.ErrNotFound) {
		cache = nil
	} else if err != nil {
		cache = nil
		w.logger.Printf("open %s: %v", w.Version(), err)
	} else if cached, err := cache.Match(ctx, key); err == nil {
		return cached, nil
	} else if !errors.Is(err, contract.ErrNotFound) {
		w.logger.Printf("cache lookup %s: %v", key, err)
	}

	resp, err := w.fetcher.Fetch(ctx, req)
	if err != nil {
		w.logger.Printf("fetch failed for %s: %v", req.URL, err)
		if req.Destination == schema.ImageDestination {
			if fallback, matchErr := w.storage.Match(ctx, schema.RequestKey(w.cfg.ResolveURL(w.cfg.FallbackImage))); matchErr == nil {
				return fallback, nil
			}
		}
		return nil, err
	}

	if cache != nil && resp.Cacheable() {
		w.fill(ctx, cache, key, resp.Clone())
	}
	return resp, nil
}

// fill stores resp in the background. Failures are logged only.
func (w *Worker) fill(ctx context.Context, cache contract.Cache, key string, resp *schema.Response) {
	ctx = context.WithoutCancel(ctx)
	w.goDeferred(func() {
		err := cache.Put(ctx, key, resp)
		switch {
		case errors.Is(err, contract.ErrNotFound):
			w.logger.Printf("cache fill %s: partition %s is gone", key, cache.Name())
		case err != nil:
			w.logger.Printf("cache fill %s: %v", key, err)
		}
	})
}
