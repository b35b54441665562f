package report

import (
	"io"

	"github.com/sitescout/sitescout/internal/model"
)

// Writer renders a crawl run summary to some destination. The three
// implementations cover terminal text, Markdown, and JSON; the crawl
// command picks one from its flags.
type Writer interface {
	// Write renders the report, returning the bytes written.
	Write(report *model.CrawlReport) (int, error)
}

// MultiWriter fans one report out to several Writers, e.g. terminal
// and file at once. It is a separate type rather than io.MultiWriter
// because Writer takes reports, not bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to every given Writer.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the report through each writer in order, stopping at
// the first failure. The returned count sums all bytes written.
func (m *MultiWriter) Write(report *model.CrawlReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter holds the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
