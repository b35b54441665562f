package report

import (
	"encoding/json"
	"io"

	"github.com/sitescout/sitescout/internal/model"
)

// JSONWriter renders the run summary as one JSON document, meant for
// scripts and tool pipelines rather than human eyes. The stdlib encoder
// is enough here; the report is a small flat struct and adding a JSON
// dependency for it would buy nothing.
type JSONWriter struct {
	baseWriter

	// indent switches to pretty-printed output.
	indent bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables two-space indented output.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// NewJSONWriter creates a JSONWriter targeting output.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the report as JSON followed by a newline.
func (w *JSONWriter) Write(report *model.CrawlReport) (int, error) {
	data, err := w.marshal(report)
	if err != nil {
		return 0, err
	}
	return w.output.Write(append(data, '\n'))
}

func (w *JSONWriter) marshal(report *model.CrawlReport) ([]byte, error) {
	if w.indent {
		return json.MarshalIndent(report, "", "  ")
	}
	return json.Marshal(report)
}
