// Package main provides the entry point for the sitescout CLI.
//
// Sitescout builds an incremental sitemap inventory of a bounded website
// section: it crawls breadth-first, records HTML pages and PDF documents
// to a CSV file, and on later runs reports only what is new.
//
// Usage:
//
//	sitescout crawl [site...]
//	sitescout compare <site>
//
// See --help for all available options.
package main

// main is the entry point for sitescout.
func main() {
	Execute()
}
