package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sitescout/sitescout/internal/model"
)

// SimpleWriter outputs human-readable text summaries.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the per-discovery listing.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with the full discovery listing.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the crawl summary in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	line := strings.Repeat("=", 60)
	sb.WriteString(line + "\n")
	sb.WriteString(fmt.Sprintf("Crawl Report: %s\n", report.Site))
	sb.WriteString(line + "\n")
	sb.WriteString(fmt.Sprintf("Started:         %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:         %s\n", report.Elapsed.Round(10*time.Millisecond)))
	sb.WriteString(fmt.Sprintf("URLs visited:    %d\n", report.VisitedCount))
	sb.WriteString(fmt.Sprintf("New pages:       %d\n", report.PageCount()))
	sb.WriteString(fmt.Sprintf("New PDFs:        %d\n", report.PDFCount()))
	sb.WriteString(fmt.Sprintf("Max depth:       %s\n", model.FormatDepth(report.MaxDepth())))
	sb.WriteString(fmt.Sprintf("Known skipped:   %d\n", knownSkipped(report)))
	if report.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("Error:           %s\n", report.ErrorMessage))
	}
	sb.WriteString(line + "\n")

	if w.verbose && len(report.Records) > 0 {
		sb.WriteString("\nDiscoveries:\n")
		for _, r := range report.Records {
			sb.WriteString(fmt.Sprintf("  [%s] depth %s  %s\n",
				r.Type, model.FormatDepth(r.Depth), r.URL))
			sb.WriteString(fmt.Sprintf("        %s\n", r.Title))
		}
	}

	return w.output.Write([]byte(sb.String()))
}

// knownSkipped derives how many of the known URLs predate this run.
// The known set grows during the crawl, so subtract this run's records.
func knownSkipped(report *model.CrawlReport) int {
	n := len(report.Known) - len(report.Records)
	if n < 0 {
		return 0
	}
	return n
}
