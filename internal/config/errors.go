package config

import (
	"errors"
	"fmt"
)

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic handling while still providing
// human-readable messages.
var (
	// ErrNoSites is returned when the configuration defines no sites.
	// A crawl needs at least one site with a start URL and scope.
	ErrNoSites = errors.New("no sites configured: run 'sitescout init' and edit .sitescout")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format is allowed.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidConcurrency is returned when the site concurrency is not
	// positive. Zero concurrency would crawl nothing.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConfigNotFound is returned when the configuration file does
	// not exist at the resolved path.
	ErrConfigNotFound = errors.New("configuration file not found")
)

// Site definition errors returned by SiteConfig.Validate.
var (
	// ErrNoStartURLs is returned when a site defines no start URLs.
	ErrNoStartURLs = errors.New("site has no start URLs")

	// ErrNoHost is returned when a site defines no target host.
	// Without a host the scope filter would admit every domain.
	ErrNoHost = errors.New("site has no target host")

	// ErrNoOutputCSV is returned when a site defines no output inventory
	// path. Persistence is the purpose of a run, so this is required.
	ErrNoOutputCSV = errors.New("site has no output CSV path")

	// ErrInvalidTimeout is returned when a site timeout is negative.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidCheckpointInterval is returned when the checkpoint
	// interval is negative. Zero disables intermediate checkpoints.
	ErrInvalidCheckpointInterval = errors.New("invalid checkpoint interval: must be non-negative")
)

// UnknownSiteError is returned when a crawl target names a site that the
// configuration file does not define.
type UnknownSiteError struct {
	// Name is the unresolved site name.
	Name string
}

// Error implements the error interface.
func (e *UnknownSiteError) Error() string {
	return fmt.Sprintf("unknown site %q: not defined in configuration file", e.Name)
}
