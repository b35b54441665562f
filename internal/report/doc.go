// Package report renders crawl run summaries in multiple formats.
//
// The CSV inventory is the product of a run; these writers are the
// human- and tool-facing view of what the run did. Simple text goes to
// the terminal, Markdown to documentation, JSON to other tools.
package report
