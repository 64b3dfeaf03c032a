// Package schema holds the value types and constants shared by swagent packages.
package schema

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"
)

// Request is an intercepted network request plus the intent metadata used for routing.
type Request struct {
	URL         string      // Absolute request URL
	Method      string      // HTTP method, upper case
	Mode        RequestMode // "navigate" for top-level document loads
	Destination Destination // "image", "document", ...
	Header      http.Header
	Body        []byte
}

// NewRequest returns a GET request for the given URL with no intent metadata.
func NewRequest(rawURL string) *Request {
	return &Request{URL: rawURL, Method: http.MethodGet, Header: http.Header{}}
}

// Key returns the request identity used by cache partitions: the URL without its fragment.
func (r *Request) Key() string {
	return RequestKey(r.URL)
}

// IsNavigation reports whether the request loads a top-level document.
func (r *Request) IsNavigation() bool {
	return r.Mode == NavigateMode
}

// RequestKey normalizes a URL into a cache key.
func RequestKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		if i := strings.IndexByte(rawURL, '#'); i >= 0 {
			return rawURL[:i]
		}
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// Response is a snapshot of a network response.
type Response struct {
	URL        string
	Status     int
	StatusText string
	Type       ResponseType
	Header     http.Header
	Body       []byte
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status <= 299
}

// Cacheable reports whether a network response may fill the cache:
// a 200 from the application's own origin.
func (r *Response) Cacheable() bool {
	return r.Status == http.StatusOK && r.Type == BasicResponse
}

// Clone returns a deep copy so the snapshot and the copy never share buffers.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Header = r.Header.Clone()
	if r.Body != nil {
		clone.Body = bytes.Clone(r.Body)
	}
	return &clone
}
