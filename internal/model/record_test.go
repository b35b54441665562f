package model

import "testing"

// TestNodeTypeString tests the inventory representation of node types.
func TestNodeTypeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		typ  NodeType
		want string
	}{
		{name: "page", typ: NodeTypePage, want: "Page"},
		{name: "pdf", typ: NodeTypePDF, want: "PDF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.typ.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestParseNodeType tests round-tripping node types through their string form.
func TestParseNodeType(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		for _, typ := range []NodeType{NodeTypePage, NodeTypePDF} {
			got, err := ParseNodeType(typ.String())
			if err != nil {
				t.Fatalf("ParseNodeType(%q) returned error: %v", typ.String(), err)
			}
			if got != typ {
				t.Errorf("ParseNodeType(%q) = %v, want %v", typ.String(), got, typ)
			}
		}
	})

	t.Run("unknown value", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseNodeType("Image"); err == nil {
			t.Error("expected error for unknown node type")
		}
	})
}

// TestFormatDepth tests the fixed one-decimal depth format.
func TestFormatDepth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		depth float64
		want  string
	}{
		{depth: 1.0, want: "1.0"},
		{depth: 1.5, want: "1.5"},
		{depth: 3.0, want: "3.0"},
	}

	for _, tt := range tests {
		if got := FormatDepth(tt.depth); got != tt.want {
			t.Errorf("FormatDepth(%v) = %q, want %q", tt.depth, got, tt.want)
		}
	}
}

// TestCrawlReportCountersAndMaxDepth tests the per-type counters and max depth.
func TestCrawlReportCountersAndMaxDepth(t *testing.T) {
	t.Parallel()

	report := NewCrawlReport("example", []string{"https://example.com/docs/"})
	report.Records = append(report.Records,
		DiscoveryRecord{URL: "https://example.com/docs/", Depth: 1.0, Type: NodeTypePage},
		DiscoveryRecord{URL: "https://example.com/docs/a/", Depth: 2.0, Type: NodeTypePage},
		DiscoveryRecord{URL: "https://example.com/docs/b.pdf", Depth: 1.5, Type: NodeTypePDF},
	)

	if got := report.PageCount(); got != 2 {
		t.Errorf("PageCount() = %d, want 2", got)
	}
	if got := report.PDFCount(); got != 1 {
		t.Errorf("PDFCount() = %d, want 1", got)
	}
	if got := report.MaxDepth(); got != 2.0 {
		t.Errorf("MaxDepth() = %v, want 2.0", got)
	}
}
