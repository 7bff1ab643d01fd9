package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nao1215/sitegraph/internal/config"
	"github.com/nao1215/sitegraph/internal/crawler"
	"github.com/nao1215/sitegraph/internal/database"
	"github.com/nao1215/sitegraph/internal/log"
	"github.com/nao1215/sitegraph/internal/model"
	"github.com/nao1215/sitegraph/internal/pipeline"
	"github.com/nao1215/sitegraph/internal/report"
	"github.com/spf13/cobra"
)

// defaultHTMLReportFile is the output path used for HTML reports when no
// --output flag is given. HTML is not useful on a terminal.
const defaultHTMLReportFile = "site_map.html"

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url]",
		Short: "Crawl a website and map its internal link structure",
		Long: `Crawl fetches pages starting from the seed URL and follows internal links
up to the configured depth, building a directed graph of the site.

Crawling is scoped to the seed's domain: links to other hosts are never
fetched. The crawler evaluates robots.txt before following links, canonicalizes
URLs so the same page is fetched only once, and bounds the number of
simultaneous requests.

Examples:
  # Crawl a site with default settings (depth 2, 10 concurrent fetches)
  sitegraph crawl https://example.com

  # Crawl deeper with more workers
  sitegraph crawl --depth 3 --concurrency 20 https://example.com

  # Crawl several sites concurrently
  sitegraph crawl https://example.com https://example.org

  # Output JSON report to a file
  sitegraph crawl --json -o report.json https://example.com

  # Generate an interactive HTML site map
  sitegraph crawl --html https://example.com

Configuration file (.sitegraph) example:
  defaults:
    depth: 2
  sites:
    example.com:
      depth: 4
      headers:
        Authorization: "Bearer token"
    example.org:
      ignoreRobots: true`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultDepth,
		"Maximum link depth to follow from the seed (seed is depth 0)")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Maximum number of simultaneous fetches within one crawl")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().IntP("max-pages", "p", 0,
		"Maximum number of pages to fetch per crawl (0 = unlimited)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response body size in bytes to read")
	cmd.Flags().Bool("ignore-robots", false,
		"Skip robots.txt evaluation (use only on sites you control)")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent crawls when multiple seeds are given")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitegraph in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown and --html)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json and --html)")
	cmd.Flags().Bool("html", false,
		"Output interactive HTML site map (mutually exclusive with --json and --markdown)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-archive", false,
		"Do not save the finished run to the local run archive")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with redaction of sensitive values
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing in-flight fetches...")
		cancel()
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

	cfg.Depth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.MaxBodySize, err = cmd.Flags().GetInt64("max-body-size")
	if err != nil {
		return nil, err
	}

	cfg.IgnoreRobots, err = cmd.Flags().GetBool("ignore-robots")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.HTMLReport, err = cmd.Flags().GetBool("html")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noArchive, err := cmd.Flags().GetBool("no-archive")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noArchive
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are the seed URLs
	cfg.Seeds = args

	return cfg, nil
}

// runCrawl executes the crawl for all configured seeds.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"depth", cfg.Depth,
		"concurrency", cfg.Concurrency,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open the run archive if enabled
	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open run archive: %w", err)
		}
		defer db.Close()
		logger.Info("run archive opened", "dir", cfg.DBDir)
	}

	// Use batch processor for concurrent crawling if multiple seeds
	if len(cfg.Seeds) > 1 && cfg.BatchSize > 1 {
		return runBatchCrawl(ctx, cfg, db, logger)
	}

	return runSequentialCrawl(ctx, cfg, db, logger)
}

// runSequentialCrawl crawls seeds one at a time.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, db *database.CrawlDB, logger *slog.Logger) error {
	for _, seed := range cfg.Seeds {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p := createPipelineForSeed(cfg, db, logger, seed)
		crawlReport := model.NewCrawlReport(seed)

		fmt.Printf("Crawling %s...\n", seed)
		startTime := time.Now()

		if err := p.Execute(ctx, crawlReport); err != nil {
			logger.Error("crawl failed", "seed", seed, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", seed, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "seed", seed, "error", err)
		}
	}

	return nil
}

// runBatchCrawl crawls multiple seeds concurrently using BatchProcessor.
func runBatchCrawl(ctx context.Context, cfg *config.Config, db *database.CrawlDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d seeds (concurrency: %d)...\n\n",
		len(cfg.Seeds), cfg.BatchSize)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func(seed string) *pipeline.Pipeline {
			return createPipelineForSeed(cfg, db, logger, seed)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	reports, err := bp.ProcessBatch(ctx, cfg.Seeds)

	for i, crawlReport := range reports {
		if crawlReport == nil {
			continue
		}
		fmt.Printf("[%d/%d] Crawl completed: %s\n", i+1, len(cfg.Seeds), crawlReport.Seed)
		if outErr := outputReport(cfg, crawlReport); outErr != nil {
			logger.Error("report failed", "seed", crawlReport.Seed, "error", outErr)
		}
	}

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch crawl completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// createPipelineForSeed creates a crawl pipeline for one seed, applying any
// site-specific overrides from the configuration file.
func createPipelineForSeed(cfg *config.Config, db *database.CrawlDB, logger *slog.Logger, seed string) *pipeline.Pipeline {
	siteConfig := siteConfigForSeed(cfg, seed)

	depth := cfg.Depth
	if siteConfig.Depth > 0 {
		depth = siteConfig.Depth
	}
	maxPages := cfg.MaxPages
	if siteConfig.MaxPages > 0 {
		maxPages = siteConfig.MaxPages
	}
	userAgent := cfg.UserAgent
	if siteConfig.UserAgent != "" {
		userAgent = siteConfig.UserAgent
	}
	ignoreRobots := cfg.IgnoreRobots || siteConfig.IgnoreRobots

	fetcherOpts := []crawler.FetcherOption{
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithTimeout(cfg.Timeout),
		crawler.WithUserAgent(userAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
	}
	if len(siteConfig.Headers) > 0 {
		fetcherOpts = append(fetcherOpts, crawler.WithHeaders(siteConfig.Headers))
	}
	fetcher := crawler.NewFetcher(fetcherOpts...)

	spider := crawler.NewSpider(fetcher,
		crawler.WithMaxDepth(depth),
		crawler.WithMaxPages(maxPages),
		crawler.WithWorkers(cfg.Concurrency),
		crawler.WithIgnoreRobots(ignoreRobots),
		crawler.WithSpiderLogger(logger),
	)

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
	p.AddSteps(
		pipeline.NewCrawlStep(spider, depth),
		pipeline.NewSummarizeStep(),
		pipeline.NewPersistStep(db),
	)

	return p
}

// siteConfigForSeed resolves the per-site overrides for a seed URL.
func siteConfigForSeed(cfg *config.Config, seed string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}

	u, err := url.Parse(seed)
	if err != nil || u.Hostname() == "" {
		// Config files key sites by bare host; try the seed as written.
		return cfg.SiteConfigs.GetSiteConfig(strings.ToLower(seed))
	}
	return cfg.SiteConfigs.GetSiteConfig(u.Hostname())
}

// perSeedReportFile inserts the domain into the output filename so that a
// multi-seed crawl writes one report per seed instead of each crawl
// overwriting the previous one.
func perSeedReportFile(path, domain string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "." + domain + ext
}

// reportDomain returns the crawled domain, falling back to the seed's host
// when the crawl failed before the domain was resolved.
func reportDomain(crawlReport *model.CrawlReport) string {
	if crawlReport.Domain != "" {
		return crawlReport.Domain
	}
	if u, err := url.Parse(crawlReport.Seed); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return "seed"
}

// outputReport outputs the crawl report in the requested format.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	if crawlReport.Summary == nil {
		crawlReport.Summary = model.NewSummary(crawlReport)
	}

	reportFile := cfg.ReportFile
	if reportFile == "" && cfg.HTMLReport {
		reportFile = defaultHTMLReportFile
	}
	if reportFile != "" && len(cfg.Seeds) > 1 {
		reportFile = perSeedReportFile(reportFile, reportDomain(crawlReport))
	}

	// Determine output destination
	var output *os.File
	if reportFile != "" {
		dir := filepath.Dir(reportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(reportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	case cfg.HTMLReport:
		writer = report.NewHTMLWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	if _, err := writer.Write(crawlReport); err != nil {
		return err
	}

	if reportFile != "" {
		fmt.Printf("Report written to %s\n", reportFile)
	}
	return nil
}
