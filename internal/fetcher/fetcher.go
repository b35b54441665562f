package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// ErrNotHTML is returned when a response's content type is not HTML.
// Such responses are not cached and produce no body.
var ErrNotHTML = errors.New("response is not HTML")

// StatusError reports a non-success HTTP status. Callers treat it like
// any other transport failure: log, skip the URL, continue the crawl.
type StatusError struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status code received.
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

// CacheWriteError reports a failed cache write. Unlike transport
// failures it is fatal to the run: if the cache directory cannot be
// written, the output inventory likely cannot be either.
type CacheWriteError struct {
	// URL is the URL whose body could not be cached.
	URL string

	// Err is the underlying filesystem error.
	Err error
}

// Error implements the error interface.
func (e *CacheWriteError) Error() string {
	return fmt.Sprintf("cache write for %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *CacheWriteError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves HTML pages with a fixed timeout, a browser-like
// User-Agent, and a read-through disk cache.
type Fetcher struct {
	// client is the HTTP client used for all requests.
	client *http.Client

	// cache is the disk cache consulted before any network access.
	cache *Cache

	// userAgent is the User-Agent header value.
	userAgent string

	// maxBodySize limits how many response bytes are read.
	maxBodySize int64

	// logger records cache hits and other per-fetch diagnostics.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithHTTPClient replaces the underlying HTTP client. Mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithLogger sets the logger for per-fetch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher backed by the given cache.
func New(cache *Cache, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: 5 * time.Second},
		cache:       cache,
		userAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		maxBodySize: 5 * 1024 * 1024,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the decoded HTML body for a canonical URL. The disk
// cache is consulted first; a hit returns immediately without touching
// the network. A successful network fetch is written to the cache
// exactly once before returning.
//
// Transport failures, non-success statuses, and non-HTML responses are
// all returned as errors; callers log and abandon the URL. A failed
// cache write is a CacheWriteError, which callers treat as fatal.
func (f *Fetcher) Fetch(ctx context.Context, canonicalURL string) (string, error) {
	if body, ok := f.cache.Get(canonicalURL); ok {
		f.logger.Debug("cache hit", "url", canonicalURL)
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, canonicalURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", canonicalURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &StatusError{URL: canonicalURL, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType) {
		return "", ErrNotHTML
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read body of %s: %w", canonicalURL, err)
	}

	body := decodeBody(raw, contentType)

	if err := f.cache.Put(canonicalURL, body); err != nil {
		return "", &CacheWriteError{URL: canonicalURL, Err: err}
	}

	return body, nil
}

// isHTML reports whether a Content-Type header denotes an HTML page.
func isHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}

// decodeBody converts raw response bytes to UTF-8 text. The declared
// charset parameter wins when present and known; otherwise the encoding
// is sniffed statistically from the content. Undecodable input falls
// back to a raw byte conversion rather than failing the fetch.
func decodeBody(raw []byte, contentType string) string {
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if label := params["charset"]; label != "" {
			if enc, err := htmlindex.Get(label); err == nil {
				if decoded, _, err := transform.Bytes(enc.NewDecoder(), raw); err == nil {
					return string(decoded)
				}
			}
		}
	}

	enc, _, _ := charset.DetermineEncoding(raw, contentType)
	if decoded, _, err := transform.Bytes(enc.NewDecoder(), raw); err == nil {
		return string(decoded)
	}

	return string(raw)
}
