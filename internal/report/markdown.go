package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/sitescout/sitescout/internal/model"
)

// maxTableRows caps the discovery table so a large crawl does not
// produce an unreadable document. The CSV inventory holds everything.
const maxTableRows = 200

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeDiscoveries(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Sitescout Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + report.Site + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", report.Elapsed.String()},
			{"URLs Visited", strconv.Itoa(report.VisitedCount)},
			{"Status", statusText(report)},
		},
	})
	md.PlainText("")
}

// statusText returns the status cell based on report state.
func statusText(report *model.CrawlReport) string {
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

// writeSummary writes the discovery count section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Discovery Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Type", "Count"},
		Rows: [][]string{
			{"📄 Pages", strconv.Itoa(report.PageCount())},
			{"📕 PDFs", strconv.Itoa(report.PDFCount())},
			{"**Total**", "**" + strconv.Itoa(len(report.Records)) + "**"},
		},
	})
	md.PlainText("")

	if len(report.Records) > 0 {
		w.writePieChart(md, report)
	}

	switch {
	case report.ErrorMessage != "":
		md.Cautionf("The run ended with an error: %s. Results below are partial.", report.ErrorMessage)
	case len(report.Records) == 0:
		md.Note("No new URLs were discovered; the inventory is unchanged.")
	default:
		md.Tipf("%d new URLs were added to the inventory (max depth %s).",
			len(report.Records), model.FormatDepth(report.MaxDepth()))
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of the type distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.CrawlReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Discovery Type Distribution"),
		piechart.WithShowData(true),
	)

	if n := report.PageCount(); n > 0 {
		chart.LabelAndIntValue("Pages", uint64(n))
	}
	if n := report.PDFCount(); n > 0 {
		chart.LabelAndIntValue("PDFs", uint64(n))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeDiscoveries writes the per-URL table.
func (w *MarkdownWriter) writeDiscoveries(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("New Discoveries")
	md.PlainText("")

	if len(report.Records) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}

	records := report.Records
	truncated := false
	if len(records) > maxTableRows {
		records = records[:maxTableRows]
		truncated = true
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.URL,
			r.Title,
			model.FormatDepth(r.Depth),
			r.Type.String(),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Title", "Depth", "Type"},
		Rows:   rows,
	})
	md.PlainText("")

	if truncated {
		md.Notef("Showing the first %d of %d discoveries; see the CSV inventory for the full list.",
			maxTableRows, len(report.Records))
		md.PlainText("")
	}
}
