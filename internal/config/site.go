package config

import (
	"path/filepath"
	"sort"
)

// SiteConfig describes one bounded section of a single website. The host
// and path prefix together define the crawl scope; everything outside it
// is silently filtered during link extraction.
type SiteConfig struct {
	// StartURLs are the seed URLs of the crawl, canonicalized before use.
	StartURLs []string `yaml:"start_urls,omitempty"`

	// Host is the exact host every followed link must match.
	Host string `yaml:"host,omitempty"`

	// PathPrefix is the required path prefix for every followed link.
	PathPrefix string `yaml:"path_prefix,omitempty"`

	// ExcludeExtensions are lowercase path suffixes never followed.
	// Defaults to images, archives, office documents, scripts, and
	// stylesheets. PDFs must not be listed here.
	ExcludeExtensions []string `yaml:"exclude_extensions,omitempty"`

	// MaxPages is the ceiling on URLs processed in one run.
	MaxPages int `yaml:"max_pages,omitempty"`

	// Timeout is the per-request timeout for HTML and PDF fetches.
	Timeout Duration `yaml:"timeout,omitempty"`

	// CheckpointInterval is the number of visited URLs between full
	// rewrites of the output inventory. Zero disables checkpoints.
	CheckpointInterval int `yaml:"checkpoint_interval,omitempty"`

	// KnownCSV is the prior inventory whose URLs are skipped this run.
	// A missing file is treated as an empty inventory, not an error.
	KnownCSV string `yaml:"known_csv,omitempty"`

	// OutputCSV is the inventory written by checkpoints and at run end.
	OutputCSV string `yaml:"output_csv,omitempty"`

	// CacheDir is where fetched HTML is cached on disk. Empty selects
	// a per-site directory under the XDG cache home.
	CacheDir string `yaml:"cache_dir,omitempty"`

	// UserAgent overrides the default browser-like User-Agent header.
	UserAgent string `yaml:"user_agent,omitempty"`

	// MaxBodySize overrides the response body read limit in bytes.
	MaxBodySize int64 `yaml:"max_body_size,omitempty"`
}

// File represents the structure of the .sitescout configuration file.
type File struct {
	// Defaults contains settings applied to every site unless the site
	// overrides them.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps site names to their crawl definitions.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`
}

// Names returns the configured site names in sorted order.
// The map iteration order would otherwise make batch runs nondeterministic.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Sites))
	for name := range f.Sites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetSiteConfig returns the configuration for a named site with defaults
// merged in and remaining gaps filled from the package defaults.
func (f *File) GetSiteConfig(name string) SiteConfig {
	result := f.Defaults

	if site, ok := f.Sites[name]; ok {
		if len(site.StartURLs) > 0 {
			result.StartURLs = site.StartURLs
		}
		if site.Host != "" {
			result.Host = site.Host
		}
		if site.PathPrefix != "" {
			result.PathPrefix = site.PathPrefix
		}
		if len(site.ExcludeExtensions) > 0 {
			result.ExcludeExtensions = site.ExcludeExtensions
		}
		if site.MaxPages > 0 {
			result.MaxPages = site.MaxPages
		}
		if !site.Timeout.IsZero() {
			result.Timeout = site.Timeout
		}
		if site.CheckpointInterval > 0 {
			result.CheckpointInterval = site.CheckpointInterval
		}
		if site.KnownCSV != "" {
			result.KnownCSV = site.KnownCSV
		}
		if site.OutputCSV != "" {
			result.OutputCSV = site.OutputCSV
		}
		if site.CacheDir != "" {
			result.CacheDir = site.CacheDir
		}
		if site.UserAgent != "" {
			result.UserAgent = site.UserAgent
		}
		if site.MaxBodySize > 0 {
			result.MaxBodySize = site.MaxBodySize
		}
	}

	result.applyDefaults(name)
	return result
}

// applyDefaults fills unset fields with the package defaults.
func (sc *SiteConfig) applyDefaults(name string) {
	if len(sc.ExcludeExtensions) == 0 {
		sc.ExcludeExtensions = DefaultExcludeExtensions()
	}
	if sc.MaxPages == 0 {
		sc.MaxPages = DefaultMaxPages
	}
	if sc.Timeout.IsZero() {
		sc.Timeout = DurationFrom(DefaultTimeout)
	}
	if sc.CheckpointInterval == 0 {
		sc.CheckpointInterval = DefaultCheckpointInterval
	}
	if sc.CacheDir == "" {
		sc.CacheDir = filepath.Join(XDGCacheDir(), name)
	}
	if sc.UserAgent == "" {
		sc.UserAgent = DefaultUserAgent
	}
	if sc.MaxBodySize == 0 {
		sc.MaxBodySize = DefaultMaxBodySize
	}
}

// Validate checks that the site definition is crawlable.
func (sc *SiteConfig) Validate() error {
	if len(sc.StartURLs) == 0 {
		return ErrNoStartURLs
	}
	if sc.Host == "" {
		return ErrNoHost
	}
	if sc.OutputCSV == "" {
		return ErrNoOutputCSV
	}
	if sc.Timeout.Duration < 0 {
		return ErrInvalidTimeout
	}
	if sc.CheckpointInterval < 0 {
		return ErrInvalidCheckpointInterval
	}
	return nil
}
