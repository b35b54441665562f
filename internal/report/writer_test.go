package report

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sitescout/sitescout/internal/model"
)

func testReport() *model.CrawlReport {
	report := model.NewCrawlReport("example.com", []string{"https://example.com/"})
	report.StartedAt = time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	report.Elapsed = 1500 * time.Millisecond
	report.VisitedCount = 3
	report.Records = []model.DiscoveryRecord{
		{URL: "https://example.com/", Title: "Home", Description: "Front.", Depth: 1, Type: model.NodeTypePage},
		{URL: "https://example.com/a/", Title: "A", Description: "No Description", Depth: 2, Type: model.NodeTypePage},
		{URL: "https://example.com/m.pdf", Title: "Manual", Description: "No Description (PDF)", Depth: 2.5, Type: model.NodeTypePDF},
	}
	for _, r := range report.Records {
		report.Known[r.URL] = struct{}{}
	}
	return report
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("summary contains counts", func(t *testing.T) {
		t.Parallel()

		var sb strings.Builder
		if _, err := NewSimpleWriter(&sb).Write(testReport()); err != nil {
			t.Fatal(err)
		}
		out := sb.String()

		for _, want := range []string{
			"Crawl Report: example.com",
			"New pages:       2",
			"New PDFs:        1",
			"Max depth:       2.5",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "https://example.com/a/") {
			t.Error("non-verbose output lists individual discoveries")
		}
	})

	t.Run("verbose lists discoveries", func(t *testing.T) {
		t.Parallel()

		var sb strings.Builder
		if _, err := NewSimpleWriter(&sb, WithVerbose(true)).Write(testReport()); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(sb.String(), "https://example.com/m.pdf") {
			t.Error("verbose output missing discovery listing")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders tables and chart", func(t *testing.T) {
		t.Parallel()

		var sb strings.Builder
		if _, err := NewMarkdownWriter(&sb).Write(testReport()); err != nil {
			t.Fatal(err)
		}
		out := sb.String()

		for _, want := range []string{
			"# Sitescout Crawl Report",
			"`example.com`",
			"## Discovery Summary",
			"pie",
			"## New Discoveries",
			"https://example.com/m.pdf",
			"2.5",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("markdown missing %q", want)
			}
		}
	})

	t.Run("empty run renders a note", func(t *testing.T) {
		t.Parallel()

		report := model.NewCrawlReport("example.com", []string{"https://example.com/"})
		var sb strings.Builder
		if _, err := NewMarkdownWriter(&sb).Write(report); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(sb.String(), "No new URLs") {
			t.Error("markdown for empty run missing the unchanged-inventory note")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	if _, err := NewJSONWriter(&sb, WithPrettyPrint()).Write(testReport()); err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(sb.String()), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["site"] != "example.com" {
		t.Errorf("site = %v, want example.com", decoded["site"])
	}
	records, ok := decoded["records"].([]any)
	if !ok || len(records) != 3 {
		t.Errorf("records = %v, want 3 entries", decoded["records"])
	}
}

// failWriter fails after the first write to exercise MultiWriter's
// error propagation.
type failWriter struct{}

func (failWriter) Write(*model.CrawlReport) (int, error) {
	return 0, errors.New("sink failed")
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var a, b strings.Builder
		mw := NewMultiWriter(NewSimpleWriter(&a), NewSimpleWriter(&b))
		if _, err := mw.Write(testReport()); err != nil {
			t.Fatal(err)
		}
		if a.String() == "" || b.String() == "" {
			t.Error("one of the writers received no output")
		}
		if a.String() != b.String() {
			t.Error("writers received different output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after strings.Builder
		mw := NewMultiWriter(failWriter{}, NewSimpleWriter(&after))
		if _, err := mw.Write(testReport()); err == nil {
			t.Fatal("expected error from failing writer")
		}
		if after.String() != "" {
			t.Error("writer after the failure still received output")
		}
	})
}
