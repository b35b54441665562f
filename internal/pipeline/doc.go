// Package pipeline orchestrates the steps of a crawl run.
//
// A run is a fixed sequence: load the known-URL set, crawl, persist the
// inventory, and optionally record the run in the history database.
// Each step mutates a shared CrawlReport; the pipeline owns ordering,
// logging, and error policy. BatchProcessor layers concurrent multi-site
// execution on top without touching single-run semantics.
package pipeline
