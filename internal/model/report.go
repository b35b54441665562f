package model

import "time"

// CrawlReport accumulates the outcome of a single crawl run. It is created
// before the pipeline executes and mutated by each step: the known-URL set
// is loaded first, the crawler appends records, and the persistence steps
// read the final list.
type CrawlReport struct {
	// Site is the configured site name this run belongs to.
	Site string `json:"site"`

	// StartURLs are the seed URLs of the crawl, before canonicalization.
	StartURLs []string `json:"start_urls"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the wall-clock duration of the crawl step.
	Elapsed time.Duration `json:"elapsed"`

	// Known is the de-duplication authority: URLs loaded from the prior
	// inventory plus URLs discovered during this run. It grows
	// monotonically and is discarded when the run ends.
	Known map[string]struct{} `json:"-"`

	// PriorRecords holds the rows of the existing inventory when the
	// output file doubles as the known list. Every rewrite of the
	// inventory carries them forward; a run that discovers nothing new
	// must not erase what earlier runs recorded.
	PriorRecords []DiscoveryRecord `json:"-"`

	// Records is the ordered list of discoveries made during this run.
	// Insertion order is discovery order.
	Records []DiscoveryRecord `json:"records"`

	// VisitedCount is the number of URLs the crawler dequeued and
	// processed, including abandoned fetches that produced no record.
	VisitedCount int `json:"visited_count"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error holds the first step failure when the pipeline is configured
	// to continue on error. Excluded from JSON; ErrorMessage carries the
	// serializable form.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for report output.
	ErrorMessage string `json:"error,omitempty"`
}

// NewCrawlReport creates an empty report for the given site.
func NewCrawlReport(site string, startURLs []string) *CrawlReport {
	return &CrawlReport{
		Site:      site,
		StartURLs: startURLs,
		StartedAt: time.Now(),
		Known:     make(map[string]struct{}),
		Records:   make([]DiscoveryRecord, 0),
	}
}

// PageCount returns the number of discovered HTML pages.
func (r *CrawlReport) PageCount() int {
	return r.countType(NodeTypePage)
}

// PDFCount returns the number of discovered PDF documents.
func (r *CrawlReport) PDFCount() int {
	return r.countType(NodeTypePDF)
}

func (r *CrawlReport) countType(t NodeType) int {
	n := 0
	for _, rec := range r.Records {
		if rec.Type == t {
			n++
		}
	}
	return n
}

// MaxDepth returns the deepest depth reached, or 0 for an empty run.
func (r *CrawlReport) MaxDepth() float64 {
	max := 0.0
	for _, rec := range r.Records {
		if rec.Depth > max {
			max = rec.Depth
		}
	}
	return max
}
