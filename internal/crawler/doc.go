// Package crawler implements the crawl engine: URL canonicalization,
// HTML metadata and link extraction, and the breadth-first spider that
// walks a bounded section of a single website.
//
// The spider is single-threaded by design. Every fetch blocks the
// traversal loop, so the visited set, the known-URL set, and the record
// list are only ever touched from one goroutine and need no locking. If
// concurrent fetches are ever added, those three structures must move
// behind a mutex or a single owning goroutine fed via channels, and
// checkpoint writes must snapshot the record list first.
package crawler
