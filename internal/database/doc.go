// Package database stores crawl run history in SQLite.
//
// The history is optional for crawling itself: a run's inventory lives
// in its CSV file. The database exists so that past runs can be listed
// and compared without keeping every CSV around.
package database
