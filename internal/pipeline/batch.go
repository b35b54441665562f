package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sitescout/sitescout/internal/model"
)

// RunFactory builds the pipeline and fresh report for one site. It is
// called once per site so no pipeline state leaks between runs.
type RunFactory func(site string) (*Pipeline, *model.CrawlReport, error)

// BatchProcessor crawls several sites concurrently, each through its
// own pipeline.
//
// Design decision: Batch lives beside Pipeline, not inside it, because:
// 1. A Pipeline stays a strictly sequential single-site run
// 2. Each site remains internally single-threaded and polite; only
//    independent sites overlap
// 3. The crawl command can choose either without the other changing
type BatchProcessor struct {
	// factory creates the pipeline and report for each site.
	factory RunFactory

	// concurrency caps how many sites crawl at once.
	concurrency int

	// logger records batch progress.
	logger *slog.Logger

	// results holds completed reports, indexed like the input sites.
	results []*model.CrawlReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the batch progress logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency caps concurrent site crawls. Defaults to 4.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(factory RunFactory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch crawls every site, at most concurrency at a time, via
// errgroup.SetLimit (one goroutine per site, errgroup gates how many
// run).
//
// The returned slice matches the input sites positionally. A site whose
// run failed still gets a report carrying the error; only cancellation
// or a factory failure surfaces as the error return.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sites []string) ([]*model.CrawlReport, error) {
	bp.logger.Info("starting batch crawl",
		"total_sites", len(sites),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()
	bp.results = make([]*model.CrawlReport, len(sites))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, site := range sites {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("crawling site",
				"site", site,
				"index", i+1,
				"total", len(sites),
			)

			p, report, err := bp.factory(site)
			if err != nil {
				bp.logger.Error("run setup failed", "site", site, "error", err)
				return err
			}

			err = p.Execute(ctx, report)

			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("crawl failed",
					"site", site,
					"error", err,
				)
				// The error lives in the report; other sites continue.
				return nil
			}

			bp.logger.Info("crawl completed", "site", site)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch crawl complete",
		"total_sites", len(sites),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}
