package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values mirror the behavior of typical polite single-domain crawlers:
// bounded concurrency against one host, a short per-request timeout, and a
// shallow default depth.
const (
	// DefaultDepth is the default maximum crawl depth. The seed is depth 0,
	// so depth 2 fetches the seed, its links, and their links. Deeper crawls
	// grow quickly on real sites and should be requested explicitly.
	DefaultDepth = 2

	// DefaultConcurrency is the number of simultaneous outbound fetches.
	// 10 bounds the load placed on the target host and on local sockets
	// while still keeping the crawl pipelined.
	DefaultConcurrency = 10

	// DefaultTimeout is the per-request timeout. Single-domain clearnet
	// fetches that take longer than 10 seconds are almost always dead.
	DefaultTimeout = 10 * time.Second

	// DefaultBatchSize is the number of seeds crawled concurrently when
	// multiple seeds are given. Each crawl already runs DefaultConcurrency
	// fetches, so this is kept small.
	DefaultBatchSize = 4

	// DefaultMaxBodySize limits the response body size to read.
	// 5MB is sufficient for any sane HTML page while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent identifies sitegraph in HTTP requests. Its product
	// token ("sitegraph") is also the agent used for robots.txt evaluation.
	DefaultUserAgent = "sitegraph/1.0 (+https://github.com/nao1215/sitegraph)"

	// AppName is the application name used for XDG directory paths.
	AppName = "sitegraph"
)

// Config holds all configuration options for sitegraph.
// This struct is populated from CLI flags and passed through the application
// via dependency injection rather than global state.
type Config struct {
	// Seeds is the list of URLs to start crawling from. Each seed scopes
	// its own crawl to the seed's host.
	Seeds []string

	// Depth is the maximum number of link hops to follow from the seed.
	Depth int

	// Concurrency is the maximum number of simultaneous outbound fetches
	// within one crawl.
	Concurrency int

	// BatchSize is the number of seeds crawled concurrently.
	BatchSize int

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// MaxPages optionally caps the number of pages fetched per crawl.
	// 0 means unlimited.
	MaxPages int

	// IgnoreRobots disables robots.txt evaluation.
	IgnoreRobots bool

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// JSONReport selects JSON report output.
	// Mutually exclusive with MarkdownReport and HTMLReport.
	JSONReport bool

	// MarkdownReport selects Markdown report output.
	// Mutually exclusive with JSONReport and HTMLReport.
	MarkdownReport bool

	// HTMLReport selects the interactive HTML site-map output.
	// Mutually exclusive with JSONReport and MarkdownReport.
	HTMLReport bool

	// ReportFile is the output file path for the report. When empty, the
	// report is written to stdout (HTML reports default to site_map.html).
	ReportFile string

	// ConfigFilePath is the path to the configuration file. If empty, the
	// tool searches for .sitegraph in the current and home directories.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// DBDir is the directory holding the run archive database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether finished runs are archived.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (timeout, concurrency).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Depth:       DefaultDepth,
		Concurrency: DefaultConcurrency,
		BatchSize:   DefaultBatchSize,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for sitegraph.
// On Linux: ~/.local/share/sitegraph
// On macOS: ~/Library/Application Support/sitegraph
// On Windows: %LOCALAPPDATA%\sitegraph
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific sentinel error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each point
// of use to fail fast and provide clear error messages upfront. The first
// error found is returned; fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}
	if c.Depth < 0 {
		return ErrInvalidDepth
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	formats := 0
	for _, enabled := range []bool{c.JSONReport, c.MarkdownReport, c.HTMLReport} {
		if enabled {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	return nil
}
