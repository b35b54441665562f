package model

import (
	"fmt"
	"strconv"
)

// NodeType classifies a discovered URL as an HTML page or a PDF document.
//
// Design decision: We use a closed enum determined once per URL instead of
// re-checking the ".pdf" suffix at every stage because:
//  1. The classification decision is made exactly once, in the crawler
//  2. Downstream code (store, reports, database) switches on the type
//  3. Adding a new type later is a compile-visible change
type NodeType int

const (
	// NodeTypePage is an HTML page that can contribute child links.
	NodeTypePage NodeType = iota

	// NodeTypePDF is a PDF document. PDFs are leaves: they never
	// contribute child links to the crawl frontier.
	NodeTypePDF
)

// String returns the inventory representation of the node type.
// These values appear verbatim in the Type column of the CSV inventory.
func (t NodeType) String() string {
	switch t {
	case NodeTypePDF:
		return "PDF"
	default:
		return "Page"
	}
}

// ParseNodeType converts an inventory Type column value back to a NodeType.
func ParseNodeType(s string) (NodeType, error) {
	switch s {
	case "Page":
		return NodeTypePage, nil
	case "PDF":
		return NodeTypePDF, nil
	default:
		return NodeTypePage, fmt.Errorf("unknown node type %q", s)
	}
}

// DiscoveryRecord is one row of the sitemap inventory. Records are
// immutable once created and appended in discovery order; the crawler
// guarantees that no two records in a single run share the same URL.
type DiscoveryRecord struct {
	// URL is the canonical URL of the discovered node. It acts as the
	// unique key within a run.
	URL string `json:"url"`

	// Title is the page title or PDF metadata title. Sentinel values
	// ("No Title", "No PDF Title") mark missing titles.
	Title string `json:"title"`

	// Description is the meta description of a page. PDFs carry the
	// "No Description (PDF)" sentinel.
	Description string `json:"description"`

	// Depth is the BFS hop count from a start URL. Pages have integer
	// depths; a PDF linked from a page at depth D is recorded at D+0.5
	// because it is one hop away but not a traversal level of its own.
	Depth float64 `json:"depth"`

	// Type classifies the node as Page or PDF.
	Type NodeType `json:"type"`
}

// MergeRecords returns prior followed by current in a fresh slice.
// Callers save the result repeatedly (checkpoints, final persist), so
// it must never alias either input's backing array.
func MergeRecords(prior, current []DiscoveryRecord) []DiscoveryRecord {
	merged := make([]DiscoveryRecord, 0, len(prior)+len(current))
	merged = append(merged, prior...)
	return append(merged, current...)
}

// FormatDepth renders the depth with a single decimal ("1.0", "1.5").
// The fixed format keeps checkpoint output byte-identical between saves
// of the same record list.
func FormatDepth(depth float64) string {
	return strconv.FormatFloat(depth, 'f', 1, 64)
}

// ParseDepth converts an inventory Depth column value back to a float.
func ParseDepth(s string) (float64, error) {
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid depth %q: %w", s, err)
	}
	return d, nil
}
