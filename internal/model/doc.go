// Package model defines the core data structures shared across sitescout.
// It contains the discovery record emitted by the crawler and the crawl
// report that accumulates the outcome of a single run.
package model
