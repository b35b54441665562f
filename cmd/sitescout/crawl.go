package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitescout/sitescout/internal/config"
	"github.com/sitescout/sitescout/internal/crawler"
	"github.com/sitescout/sitescout/internal/database"
	"github.com/sitescout/sitescout/internal/fetcher"
	"github.com/sitescout/sitescout/internal/log"
	"github.com/sitescout/sitescout/internal/model"
	"github.com/sitescout/sitescout/internal/pdf"
	"github.com/sitescout/sitescout/internal/pipeline"
	"github.com/sitescout/sitescout/internal/report"
	"github.com/sitescout/sitescout/internal/sitemap"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [site...]",
		Short: "Crawl configured sites and update their inventories",
		Long: `Crawl walks each named site breadth-first within its configured host
and path prefix, and writes the discovered HTML pages and PDF documents
to the site's CSV inventory.

URLs already present in the known inventory are skipped entirely, so a
repeat run records only new discoveries. The inventory is rewritten at
checkpoints during the crawl; an interrupted run keeps everything up to
the last checkpoint.

Examples:
  # Crawl every site defined in .sitescout
  sitescout crawl

  # Crawl selected sites
  sitescout crawl docs blog

  # Crawl sites in parallel (each site stays single-threaded)
  sitescout crawl -b 4

  # Write a Markdown summary of the run
  sitescout crawl --markdown -o report.md docs

Configuration file (.sitescout) example:
  defaults:
    timeout: 5s
    max_pages: 3000
  sites:
    docs:
      start_urls:
        - https://example.com/docs/
      host: example.com
      path_prefix: /docs/
      output_csv: docs-sitemap.csv`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitescout in current or home directory)")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", 1,
		"Number of sites crawled concurrently")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Skip recording this run in the history database")
	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON run summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown run summary (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write run summaries to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly named a config file, a missing file is an
	// error. Without an explicit path, a missing file just means no
	// sites, which Validate reports with a hint to run init.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Sites, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.Sites = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args

	return cfg, nil
}

// runCrawl executes the crawl for every target site.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	sites := cfg.TargetSites()

	for _, named := range sites {
		if err := named.Site.Validate(); err != nil {
			return fmt.Errorf("site %q: %w", named.Name, err)
		}
	}

	logger.Info("starting crawl",
		"sites", len(sites),
		"concurrency", cfg.Concurrency,
		"saveHistory", cfg.SaveHistory,
	)

	var db *database.HistoryDB
	if cfg.SaveHistory {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		logger.Info("history database opened", "dir", cfg.DBDir)
	}

	byName := make(map[string]config.SiteConfig, len(sites))
	names := make([]string, 0, len(sites))
	for _, named := range sites {
		byName[named.Name] = named.Site
		names = append(names, named.Name)
	}

	factory := func(name string) (*pipeline.Pipeline, *model.CrawlReport, error) {
		sc, ok := byName[name]
		if !ok {
			return nil, nil, fmt.Errorf("unknown site %q", name)
		}
		crawlReport := model.NewCrawlReport(name, sc.StartURLs)
		p := newSitePipeline(name, sc, db, logger, crawlReport)
		return p, crawlReport, nil
	}

	if len(sites) > 1 && cfg.Concurrency > 1 {
		return runBatchCrawl(ctx, cfg, names, factory, logger)
	}
	return runSequentialCrawl(ctx, cfg, names, factory, logger)
}

// runSequentialCrawl crawls sites one at a time.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, names []string, factory pipeline.RunFactory, logger *slog.Logger) error {
	for _, name := range names {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p, crawlReport, err := factory(name)
		if err != nil {
			return err
		}

		fmt.Printf("Crawling %s...\n", name)
		startTime := time.Now()

		if err := p.Execute(ctx, crawlReport); err != nil {
			logger.Error("crawl failed", "site", name, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", name, err)
			continue
		}

		fmt.Printf("Crawl completed in %s\n\n", time.Since(startTime).Round(time.Millisecond))

		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "site", name, "error", err)
		}
	}

	return nil
}

// runBatchCrawl crawls multiple sites concurrently using BatchProcessor.
func runBatchCrawl(ctx context.Context, cfg *config.Config, names []string, factory pipeline.RunFactory, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d sites (concurrency: %d)...\n\n",
		len(names), cfg.Concurrency)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)

	reports, err := bp.ProcessBatch(ctx, names)

	for i, crawlReport := range reports {
		if crawlReport == nil {
			continue
		}
		fmt.Printf("[%d/%d] Crawl completed: %s\n", i+1, len(names), crawlReport.Site)
		if reportErr := outputReport(cfg, crawlReport); reportErr != nil {
			logger.Error("report failed", "site", crawlReport.Site, "error", reportErr)
		}
	}

	fmt.Printf("\nBatch crawl completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	return err
}

// newSitePipeline assembles the spider and run pipeline for one site.
// The report is shared with the checkpoint callback so that mid-run
// rewrites of the inventory keep the prior rows loaded by the pipeline.
func newSitePipeline(name string, sc config.SiteConfig, db *database.HistoryDB, logger *slog.Logger, crawlReport *model.CrawlReport) *pipeline.Pipeline {
	siteLogger := logger.With("site", name)

	htmlFetcher := fetcher.New(
		fetcher.NewCache(sc.CacheDir),
		fetcher.WithTimeout(sc.Timeout.Duration),
		fetcher.WithUserAgent(sc.UserAgent),
		fetcher.WithMaxBodySize(sc.MaxBodySize),
		fetcher.WithLogger(siteLogger),
	)

	inspector := pdf.New(
		pdf.WithTimeout(sc.Timeout.Duration),
		pdf.WithUserAgent(sc.UserAgent),
		pdf.WithLogger(siteLogger),
	)

	scope := crawler.Scope{
		Host:              sc.Host,
		PathPrefix:        sc.PathPrefix,
		ExcludeExtensions: sc.ExcludeExtensions,
	}

	outputCSV := sc.OutputCSV
	spider := crawler.NewSpider(htmlFetcher, inspector, scope,
		crawler.WithMaxPages(sc.MaxPages),
		crawler.WithCheckpoint(sc.CheckpointInterval, func(records []model.DiscoveryRecord) error {
			// PriorRecords is filled before the crawl step runs; empty
			// when a separate known file is configured.
			return sitemap.Save(outputCSV, model.MergeRecords(crawlReport.PriorRecords, records))
		}),
		crawler.WithSpiderLogger(siteLogger),
	)

	return pipeline.NewDefault(pipeline.DefaultConfig{
		Spider:    spider,
		KnownCSV:  sc.KnownCSV,
		OutputCSV: sc.OutputCSV,
		HistoryDB: db,
		Logger:    siteLogger,
	}, pipeline.WithContinueOnError(true))
}

// outputReport writes the run summary in the configured format.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	out, closer, err := reportDestination(cfg)
	if err != nil {
		return err
	}
	defer closer()

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}

	_, err = w.Write(crawlReport)
	return err
}

// reportDestination resolves the summary output target. Summaries for
// multiple sites append to the same file.
func reportDestination(cfg *config.Config) (io.Writer, func(), error) {
	if cfg.ReportFile == "" {
		return os.Stdout, func() {}, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // user-chosen output path
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open report file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
