// Package upstream: outbound HTTP plumbing.
//
// This file provides a caching http.RoundTripper so that repeated identical
// upstream queries within the TTL window do not re-hit the network. The cache
// is keyed by full request URL (path + query) and stores complete response
// snapshots; it is transparent to the clients built on top of it.
package upstream

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultCacheTTL is how long a memoized upstream response stays fresh.
const DefaultCacheTTL = time.Hour

// NewResponseCache returns the in-memory store used by CachingTransport.
// Expired entries are purged at twice the TTL.
func NewResponseCache(ttl time.Duration) *gocache.Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return gocache.New(ttl, 2*ttl)
}

// CachingTransport memoizes successful GET responses in a shared TTL cache.
// Non-GET requests and non-2xx responses pass through uncached. Safe for
// concurrent use; go-cache handles its own locking.
type CachingTransport struct {
	// Base performs the real network round trip. Defaults to
	// http.DefaultTransport when nil.
	Base http.RoundTripper
	// Cache holds response snapshots keyed by full URL.
	Cache *gocache.Cache
}

// cachedResponse is the stored snapshot of one upstream response.
type cachedResponse struct {
	status int
	header http.Header
	body   []byte
}

// response materializes a fresh *http.Response from the snapshot. Each call
// gets its own body reader, so concurrent cache hits do not interfere.
func (cr cachedResponse) response(req *http.Request) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", cr.status, http.StatusText(cr.status)),
		StatusCode:    cr.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        cr.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(cr.body)),
		ContentLength: int64(len(cr.body)),
		Request:       req,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *CachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Cache == nil || req.Method != http.MethodGet {
		return base.RoundTrip(req)
	}

	key := req.URL.String()
	if v, ok := t.Cache.Get(key); ok {
		if cr, ok := v.(cachedResponse); ok {
			return cr.response(req), nil
		}
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	cr := cachedResponse{
		status: resp.StatusCode,
		header: resp.Header.Clone(),
		body:   body,
	}
	t.Cache.Set(key, cr, gocache.DefaultExpiration)
	return cr.response(req), nil
}

// NewClient builds an outbound HTTP client with the given per-request
// timeout over the (possibly caching) transport.
func NewClient(timeout time.Duration, rt http.RoundTripper) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: rt,
	}
}
