// Package fetcher retrieves HTML pages over HTTP with a disk cache.
//
// The cache is keyed by a content hash of the canonical URL and never
// expires: it exists to make re-runs cheap, not to guarantee freshness.
// Only HTML responses are cached; everything else is reported as
// ErrNotHTML and left to other components (PDFs have their own path).
package fetcher
