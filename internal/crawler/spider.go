package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sitescout/sitescout/internal/fetcher"
	"github.com/sitescout/sitescout/internal/model"
)

// NoPDFDescription marks PDF entries, which have no description source.
const NoPDFDescription = "No Description (PDF)"

// PageFetcher retrieves the decoded HTML body for a canonical URL.
type PageFetcher interface {
	Fetch(ctx context.Context, canonicalURL string) (string, error)
}

// PDFTitler reads the embedded title of a PDF document. Implementations
// never fail: a missing or unreadable title yields a sentinel string.
type PDFTitler interface {
	Title(ctx context.Context, pdfURL string) string
}

// CheckpointFunc persists the records gathered so far. It receives the
// full slice each time; implementations overwrite, never append.
type CheckpointFunc func(records []model.DiscoveryRecord) error

// queueItem is one pending page in the breadth-first frontier.
type queueItem struct {
	url   string
	depth float64
}

// Spider walks one site breadth-first and builds the discovery
// inventory.
//
// Design decision: We crawl single-threaded with a plain slice frontier
// because:
//  1. Record order must be deterministic (breadth-first, link order)
//  2. One site at a time keeps request pressure on the target polite
//  3. Parallelism belongs a level up, across independent sites
type Spider struct {
	// fetcher retrieves HTML pages.
	fetcher PageFetcher

	// pdf reads PDF titles.
	pdf PDFTitler

	// scope bounds the crawl to one section of one host.
	scope Scope

	// maxPages caps how many URLs are visited in one run.
	maxPages int

	// checkpointInterval is how many visits pass between checkpoint
	// calls. Zero disables checkpointing.
	checkpointInterval int

	// checkpoint persists intermediate results.
	checkpoint CheckpointFunc

	// logger records per-URL progress and skips.
	logger *slog.Logger

	// visited is the URL count of the most recent Crawl call,
	// including abandoned fetches that produced no record.
	visited int
}

// VisitedCount reports how many URLs the most recent Crawl visited.
func (s *Spider) VisitedCount() int {
	return s.visited
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxPages caps the number of visited URLs per run.
func WithMaxPages(n int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = n
	}
}

// WithCheckpoint installs a periodic persistence callback, invoked
// after every interval visits. A checkpoint failure aborts the crawl:
// if intermediate results cannot be written, the final ones cannot
// either.
func WithCheckpoint(interval int, fn CheckpointFunc) SpiderOption {
	return func(s *Spider) {
		s.checkpointInterval = interval
		s.checkpoint = fn
	}
}

// WithSpiderLogger sets the progress logger.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a spider bounded by scope.
func NewSpider(fetcher PageFetcher, pdf PDFTitler, scope Scope, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:  fetcher,
		pdf:      pdf,
		scope:    scope,
		maxPages: 3000,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Crawl visits the site breadth-first from startURLs and returns the
// discovery records in visit order. Start URLs enter the frontier at
// depth 1. URLs present in known are skipped entirely: not fetched,
// not recorded, and their outgoing links are not discovered through
// them.
//
// Fetch and parse failures abandon the single URL and the crawl
// continues. Only an invalid start URL, a failed filesystem write
// (cache or checkpoint), or a cancelled context aborts the run; the
// records gathered so far are returned alongside the error.
func (s *Spider) Crawl(ctx context.Context, startURLs []string, known map[string]struct{}) ([]model.DiscoveryRecord, error) {
	queue := make([]queueItem, 0, len(startURLs))
	for _, raw := range startURLs {
		canonical, err := Canonicalize(raw)
		if err != nil {
			return nil, fmt.Errorf("start url %q: %w", raw, err)
		}
		queue = append(queue, queueItem{url: canonical, depth: 1})
	}

	visited := make(map[string]struct{})
	defer func() { s.visited = len(visited) }()

	records := []model.DiscoveryRecord{}
	sinceCheckpoint := 0

crawl:
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		if len(visited) >= s.maxPages {
			s.logger.Warn("page ceiling reached, stopping crawl",
				"visited", len(visited), "max_pages", s.maxPages)
			break
		}

		item := queue[0]
		queue = queue[1:]

		// Enqueue-time filtering cannot catch a URL discovered from two
		// sibling pages before either copy is dequeued; the first
		// dequeue wins and later ones land here.
		if _, ok := visited[item.url]; ok {
			continue
		}
		if _, ok := known[item.url]; ok {
			s.logger.Debug("skipping known url", "url", item.url)
			continue
		}
		visited[item.url] = struct{}{}
		sinceCheckpoint++

		if IsPDF(item.url) {
			records = append(records, s.pdfRecord(ctx, item.url, item.depth))
		} else {
			meta, err := s.visitPage(ctx, item)
			if err != nil {
				return records, err
			}
			if meta != nil {
				records = append(records, model.DiscoveryRecord{
					URL:         item.url,
					Title:       meta.Title,
					Description: meta.Description,
					Depth:       item.depth,
					Type:        model.NodeTypePage,
				})

				for _, link := range meta.Links {
					if !IsPDF(link) {
						// Filtering here keeps the frontier bounded by the
						// page count on cyclic sites, instead of growing
						// with every back-link.
						if _, dup := visited[link]; dup {
							continue
						}
						if _, old := known[link]; old {
							continue
						}
						queue = append(queue, queueItem{url: link, depth: item.depth + 1})
						continue
					}

					// PDFs are leaves: handled right away at a half-step
					// below the page, never queued.
					if _, dup := visited[link]; dup {
						continue
					}
					if _, old := known[link]; old {
						continue
					}
					if len(visited) >= s.maxPages {
						break crawl
					}
					visited[link] = struct{}{}
					sinceCheckpoint++
					records = append(records, s.pdfRecord(ctx, link, item.depth+0.5))
				}
			}
		}

		if s.checkpointInterval > 0 && sinceCheckpoint >= s.checkpointInterval {
			if err := s.checkpoint(records); err != nil {
				return records, fmt.Errorf("checkpoint after %d visits: %w", len(visited), err)
			}
			s.logger.Info("checkpoint saved", "records", len(records), "visited", len(visited))
			sinceCheckpoint = 0
		}
	}

	return records, nil
}

// visitPage fetches and parses a single HTML page. A nil meta with a
// nil error means the page is abandoned; the reason is already logged.
// A non-nil error is fatal to the crawl.
func (s *Spider) visitPage(ctx context.Context, item queueItem) (*PageMeta, error) {
	body, err := s.fetcher.Fetch(ctx, item.url)
	if err != nil {
		var cacheErr *fetcher.CacheWriteError
		if errors.As(err, &cacheErr) {
			return nil, err
		}
		s.logger.Warn("fetch failed", "url", item.url, "error", err)
		return nil, nil
	}

	parser, err := NewParser(item.url, s.scope)
	if err != nil {
		s.logger.Warn("unparsable page url", "url", item.url, "error", err)
		return nil, nil
	}
	meta, err := parser.Parse(strings.NewReader(body))
	if err != nil {
		s.logger.Warn("parse failed", "url", item.url, "error", err)
		return nil, nil
	}

	s.logger.Info("visited page",
		"url", item.url,
		"depth", model.FormatDepth(item.depth),
		"links", len(meta.Links))
	return meta, nil
}

// pdfRecord builds the inventory entry for a PDF document.
func (s *Spider) pdfRecord(ctx context.Context, pdfURL string, depth float64) model.DiscoveryRecord {
	title := s.pdf.Title(ctx, pdfURL)
	s.logger.Info("visited pdf", "url", pdfURL, "depth", model.FormatDepth(depth))
	return model.DiscoveryRecord{
		URL:         pdfURL,
		Title:       title,
		Description: NoPDFDescription,
		Depth:       depth,
		Type:        model.NodeTypePDF,
	}
}
