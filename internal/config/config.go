package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. These mirror the behavior of a cautious
// single-site crawl: a short per-request timeout, a generous page ceiling,
// and frequent checkpoints so an interrupted run loses little work.
const (
	// DefaultTimeout is the fixed per-request timeout for both HTML and
	// PDF fetches. Five seconds is deliberately short: a slow page is
	// abandoned rather than stalling the whole traversal loop.
	DefaultTimeout = 5 * time.Second

	// DefaultMaxPages is the ceiling on URLs processed per run. It bounds
	// runaway crawls on sites with generated link spaces.
	DefaultMaxPages = 3000

	// DefaultCheckpointInterval is how many visited URLs pass between
	// full rewrites of the output inventory. Each checkpoint rewrites the
	// complete file, so interrupting a run keeps everything up to the
	// last checkpoint.
	DefaultCheckpointInterval = 50

	// DefaultUserAgent is a browser-like identification header. Some
	// sites serve reduced or blocked content to obvious bot agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultMaxBodySize limits how much of a response body is read.
	// 5MB covers real HTML pages and PDF documents while preventing
	// memory exhaustion from unexpected payloads.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// AppName is the application name used for XDG directory paths.
	AppName = "sitescout"
)

// DefaultExcludeExtensions are path suffixes never followed as links.
// PDFs are intentionally absent: they are first-class inventory entries.
func DefaultExcludeExtensions() []string {
	return []string{
		".png", ".jpg", ".jpeg", ".gif",
		".zip", ".doc", ".docx", ".xls", ".xlsx",
		".js", ".css",
	}
}

// Config holds the process-level options for a sitescout invocation.
// Site-specific crawl scope lives in SiteConfig; Config carries what the
// CLI decided for this run.
type Config struct {
	// ConfigFilePath is the path to the .sitescout configuration file.
	// Empty means search the current and home directories.
	ConfigFilePath string

	// Sites holds the site definitions loaded from the config file.
	Sites *File

	// Targets is the list of site names to crawl. Empty means every
	// site defined in the config file.
	Targets []string

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// MarkdownReport selects Markdown summary output instead of the
	// human-readable text summary. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// JSONReport selects JSON summary output. Mutually exclusive with
	// MarkdownReport.
	JSONReport bool

	// ReportFile is the output path for the crawl summary. Empty writes
	// to stdout.
	ReportFile string

	// Concurrency is the number of sites crawled in parallel when more
	// than one target is given. Each site crawl is internally
	// single-threaded regardless of this value.
	Concurrency int

	// SaveHistory enables persisting each run to the crawl-history
	// database for later comparison.
	SaveHistory bool

	// DBDir is the directory holding the SQLite history database.
	// Defaults to the XDG data directory.
	DBDir string
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor instead of relying on zero values
// because several defaults are non-zero, and the constructor doubles as
// documentation of what those defaults are.
func NewConfig() *Config {
	return &Config{
		Concurrency: 1,
		SaveHistory: true,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for sitescout.
// On Linux: ~/.local/share/sitescout
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for sitescout.
// On Linux: ~/.cache/sitescout
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks the configuration and returns a sentinel error
// describing the first problem found. It is called once after CLI
// parsing, before any crawling begins.
func (c *Config) Validate() error {
	if c.Sites == nil || len(c.Sites.Sites) == 0 {
		return ErrNoSites
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	for _, name := range c.Targets {
		if _, ok := c.Sites.Sites[name]; !ok {
			return &UnknownSiteError{Name: name}
		}
	}

	return nil
}

// TargetSites resolves the configured targets into (name, SiteConfig)
// pairs in a stable order. An empty target list selects every site.
func (c *Config) TargetSites() []NamedSite {
	names := c.Targets
	if len(names) == 0 {
		names = c.Sites.Names()
	}

	sites := make([]NamedSite, 0, len(names))
	for _, name := range names {
		sites = append(sites, NamedSite{
			Name: name,
			Site: c.Sites.GetSiteConfig(name),
		})
	}
	return sites
}

// NamedSite pairs a site name with its merged configuration.
type NamedSite struct {
	Name string
	Site SiteConfig
}
