package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotAbsolute is returned when a URL lacks a scheme or host and
// therefore cannot be canonicalized into a comparison key.
var ErrNotAbsolute = errors.New("url is not absolute")

// Index-document suffixes stripped during canonicalization. Serving
// "/dir/" and "/dir/index.html" is the same resource on ordinary sites.
const (
	indexHTMLSuffix = "/index.html"
	indexHTMSuffix  = "/index.htm"
)

// Canonicalize reduces a URL to its stable comparison key:
// scheme + host + path with the query and fragment dropped, any
// /index.html or /index.htm suffix removed, and a trailing slash
// guaranteed.
//
// The function is pure and idempotent: Canonicalize(Canonicalize(x))
// equals Canonicalize(x). Two URLs differing only in index suffix,
// trailing slash, query, or fragment canonicalize to the same string.
func Canonicalize(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", ErrNotAbsolute
	}

	path := u.EscapedPath()
	switch {
	case strings.HasSuffix(path, indexHTMLSuffix):
		path = strings.TrimSuffix(path, "index.html")
	case strings.HasSuffix(path, indexHTMSuffix):
		path = strings.TrimSuffix(path, "index.htm")
	}

	// PDF paths keep their extension: appending a slash would break the
	// suffix classification and record URLs that the server never serves.
	if !strings.HasSuffix(path, "/") && !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		path += "/"
	}

	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + path, nil
}

// IsPDF reports whether the URL's path names a PDF document.
// The check is case-insensitive and ignores query and fragment, so it
// works on both raw and canonical URLs.
func IsPDF(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(strings.TrimSuffix(u.Path, "/"))
	return strings.HasSuffix(path, ".pdf")
}
