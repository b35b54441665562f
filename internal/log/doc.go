// Package log provides the structured logging setup for sitescout.
//
// Crawl logging naturally drags large values along: page bodies, long
// query-laden URLs, multi-line descriptions. TrimHandler keeps log
// lines readable by truncating oversized attribute values before they
// reach the underlying slog handler.
package log
