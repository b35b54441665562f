package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/sitescout/sitescout/internal/crawler"
	"github.com/sitescout/sitescout/internal/database"
	"github.com/sitescout/sitescout/internal/model"
	"github.com/sitescout/sitescout/internal/sitemap"
)

// LoadKnownStep reads the prior inventory and seeds the report's
// known-URL set. On a first run the file does not exist and the set
// stays empty.
type LoadKnownStep struct {
	// path is the known-URL CSV file.
	path string

	// keepRecords also stores the full prior rows on the report, for
	// runs whose output file is the known list and must carry its rows
	// through every rewrite.
	keepRecords bool

	// logger for structured logging.
	logger *slog.Logger
}

// NewLoadKnownStep creates the known-URL loading step. The file is
// read for URL membership only.
func NewLoadKnownStep(path string, logger *slog.Logger) *LoadKnownStep {
	return &LoadKnownStep{path: path, logger: logger}
}

// NewLoadInventoryStep creates a loading step for runs where the
// output inventory doubles as the known list. Besides seeding the
// known set it keeps the full prior records on the report, so the
// persist step can rewrite the file without losing them.
func NewLoadInventoryStep(path string, logger *slog.Logger) *LoadKnownStep {
	return &LoadKnownStep{path: path, keepRecords: true, logger: logger}
}

// Name returns the step name.
func (s *LoadKnownStep) Name() string {
	return "load_known"
}

// Do loads the known URLs into the report.
func (s *LoadKnownStep) Do(_ context.Context, report *model.CrawlReport) error {
	if s.keepRecords {
		prior, err := sitemap.LoadPrior(s.path)
		if err != nil {
			return err
		}
		report.PriorRecords = prior
		for _, r := range prior {
			report.Known[r.URL] = struct{}{}
		}
		s.logger.Info("loaded prior inventory", "site", report.Site, "count", len(prior), "path", s.path)
		return nil
	}

	known, err := sitemap.LoadKnown(s.path)
	if err != nil {
		return err
	}
	for url := range known {
		report.Known[url] = struct{}{}
	}
	s.logger.Info("loaded known urls", "site", report.Site, "count", len(known), "path", s.path)
	return nil
}

// CrawlStep runs the spider and appends its discoveries to the report.
//
// Design decision: The spider returns partial records alongside an
// error, and we keep them on the report before propagating the error.
// Combined with WithContinueOnError, an interrupted crawl still gets
// its partial inventory persisted by the next step.
type CrawlStep struct {
	// spider performs the breadth-first walk.
	spider *crawler.Spider

	// logger for structured logging.
	logger *slog.Logger
}

// NewCrawlStep creates the crawl step.
func NewCrawlStep(spider *crawler.Spider, logger *slog.Logger) *CrawlStep {
	return &CrawlStep{spider: spider, logger: logger}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl and records elapsed time and visit counts.
func (s *CrawlStep) Do(ctx context.Context, report *model.CrawlReport) error {
	start := time.Now()
	records, err := s.spider.Crawl(ctx, report.StartURLs, report.Known)
	report.Elapsed = time.Since(start)
	report.VisitedCount = s.spider.VisitedCount()

	report.Records = append(report.Records, records...)
	for _, r := range records {
		report.Known[r.URL] = struct{}{}
	}

	s.logger.Info("crawl finished",
		"site", report.Site,
		"new_records", len(records),
		"visited", report.VisitedCount,
		"elapsed", report.Elapsed,
	)
	return err
}

// PersistStep writes the prior records followed by this run's
// discoveries to the inventory CSV. A run that discovered nothing
// leaves the file untouched instead of truncating it to the header.
type PersistStep struct {
	// path is the output CSV file.
	path string

	// logger for structured logging.
	logger *slog.Logger
}

// NewPersistStep creates the inventory persistence step.
func NewPersistStep(path string, logger *slog.Logger) *PersistStep {
	return &PersistStep{path: path, logger: logger}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do writes the inventory file.
func (s *PersistStep) Do(_ context.Context, report *model.CrawlReport) error {
	if len(report.Records) == 0 {
		s.logger.Info("no new discoveries, inventory left untouched", "site", report.Site, "path", s.path)
		return nil
	}

	records := model.MergeRecords(report.PriorRecords, report.Records)
	if err := sitemap.Save(s.path, records); err != nil {
		return err
	}
	s.logger.Info("inventory saved",
		"site", report.Site,
		"new_records", len(report.Records),
		"total_records", len(records),
		"path", s.path,
	)
	return nil
}

// HistoryStep records the completed run in the history database.
type HistoryStep struct {
	// db is the opened history database.
	db *database.HistoryDB

	// logger for structured logging.
	logger *slog.Logger
}

// NewHistoryStep creates the history recording step.
func NewHistoryStep(db *database.HistoryDB, logger *slog.Logger) *HistoryStep {
	return &HistoryStep{db: db, logger: logger}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "history"
}

// Do stores the run and its discoveries.
func (s *HistoryStep) Do(ctx context.Context, report *model.CrawlReport) error {
	runID, err := s.db.SaveRun(ctx, report)
	if err != nil {
		return err
	}
	s.logger.Info("run recorded", "site", report.Site, "run_id", runID)
	return nil
}

// DefaultConfig bundles what NewDefault needs to assemble a standard
// run for one site.
type DefaultConfig struct {
	// Spider is the configured crawler for the site.
	Spider *crawler.Spider

	// KnownCSV is the prior inventory consulted for skips. Empty means
	// the output CSV doubles as the known list.
	KnownCSV string

	// OutputCSV is the inventory file this run writes.
	OutputCSV string

	// HistoryDB records the run when non-nil.
	HistoryDB *database.HistoryDB

	// Logger is shared by all steps.
	Logger *slog.Logger
}

// NewDefault assembles the standard run sequence: load known URLs,
// crawl, persist the inventory, and record history when a database is
// provided.
func NewDefault(cfg DefaultConfig, opts ...Option) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Without a separate known file the output inventory is the known
	// list, and its rows must survive every rewrite.
	loadStep := NewLoadKnownStep(cfg.KnownCSV, logger)
	if cfg.KnownCSV == "" {
		loadStep = NewLoadInventoryStep(cfg.OutputCSV, logger)
	}

	p := New(append([]Option{WithLogger(logger)}, opts...)...)
	p.AddSteps(
		loadStep,
		NewCrawlStep(cfg.Spider, logger),
		NewPersistStep(cfg.OutputCSV, logger),
	)
	if cfg.HistoryDB != nil {
		p.AddStep(NewHistoryStep(cfg.HistoryDB, logger))
	}
	return p
}
