// Package proxy serves the offline-first worker over HTTP in front of the origin.
package proxy

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"strconv"
	"strings"

	"github.com/huangsam/swagent/core"
	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
)

// maxBodyBytes bounds request bodies buffered for the worker.
const maxBodyBytes = 10 << 20

// Hop-by-hop headers are never forwarded.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Handler routes every request through the active worker of a registration.
type Handler struct {
	cfg    *contract.Config
	reg    *core.Registration
	rp     *httputil.ReverseProxy
	logger *log.Logger
}

// NewHandler returns a handler for reg that forwards pass-through requests to cfg.Origin.
func NewHandler(cfg *contract.Config, reg *core.Registration, logger *log.Logger) *Handler {
	origin := cfg.Origin
	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(origin)
			pr.Out.Host = origin.Host
		},
		ErrorLog: logger,
	}
	return &Handler{cfg: cfg, reg: reg, rp: rp, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := h.buildRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := h.reg.HandleFetch(r.Context(), req)
	if err != nil {
		h.logger.Printf("%s %s: %v", req.Method, req.URL, err)
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	if !out.Handled() {
		h.rp.ServeHTTP(w, r)
		return
	}
	writeResponse(w, r, out.Response)
}

// buildRequest converts r into a worker request addressed to the origin.
// Request bodies are buffered so r can still be forwarded after classification.
func (h *Handler) buildRequest(r *http.Request) (*schema.Request, error) {
	header := r.Header.Clone()
	for _, k := range hopHeaders {
		header.Del(k)
	}

	req := &schema.Request{
		URL:         h.cfg.ResolveURL(r.URL.RequestURI()),
		Method:      r.Method,
		Mode:        requestMode(r),
		Destination: schema.Destination(strings.ToLower(r.Header.Get("Sec-Fetch-Dest"))),
		Header:      header,
	}

	if r.Body != nil && r.Body != http.NoBody {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		if len(body) > maxBodyBytes {
			return nil, fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
		}
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		req.Body = body
	}
	return req, nil
}

// requestMode reads Sec-Fetch-Mode. Clients that omit it navigate when they ask for HTML with GET.
func requestMode(r *http.Request) schema.RequestMode {
	if mode := r.Header.Get("Sec-Fetch-Mode"); mode != "" {
		return schema.RequestMode(strings.ToLower(mode))
	}
	if r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html") {
		return schema.NavigateMode
	}
	return schema.NoCORSMode
}

func writeResponse(w http.ResponseWriter, r *http.Request, resp *schema.Response) {
	dst := w.Header()
	for k, vs := range resp.Header {
		dst[k] = append([]string(nil), vs...)
	}
	for _, k := range hopHeaders {
		dst.Del(k)
	}
	dst.Set("Content-Length", strconv.Itoa(len(resp.Body)))

	w.WriteHeader(resp.Status)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(resp.Body)
}
