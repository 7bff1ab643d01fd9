package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/nao1215/sitegraph/internal/config"
	"github.com/nao1215/sitegraph/internal/database"
	"github.com/spf13/cobra"
)

// NewCompareCmd creates the compare command.
// This command compares crawl results with historical runs stored in the
// run archive.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [domain]",
		Short: "Compare the two most recent crawls of a domain",
		Long: `Compare displays differences between the latest two archived crawls.

This command retrieves historical crawl data from the run archive and shows:
- URLs that appeared since the previous crawl
- URLs that disappeared
- URLs whose HTTP status changed

The comparison requires at least two archived runs for the specified domain.
Use 'sitegraph crawl' to perform crawls; finished runs are archived unless
--no-archive is given.

Examples:
  # Compare the latest two crawls of a domain
  sitegraph compare example.com

  # List crawl history for a domain
  sitegraph compare --list example.com

  # List all domains in the run archive
  sitegraph compare --list-domains

  # Output comparison in JSON format
  sitegraph compare --json example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List crawl history for the specified domain")
	cmd.Flags().BoolP("list-domains", "L", false,
		"List all domains in the run archive")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listDomains, err := cmd.Flags().GetBool("list-domains")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database
	var domain string
	if !listDomains {
		if len(args) == 0 {
			return errors.New("domain is required (use --list-domains to see archived domains)")
		}
		domain = strings.ToLower(args[0])
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open run archive: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listDomains {
		return listArchivedDomains(ctx, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listRunHistory(ctx, db, domain)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	return runComparison(ctx, db, domain, jsonOutput)
}

// listArchivedDomains lists all domains that have runs in the archive.
func listArchivedDomains(ctx context.Context, db *database.CrawlDB) error {
	domains, err := db.ListDomains(ctx)
	if err != nil {
		return fmt.Errorf("failed to list domains: %w", err)
	}

	if len(domains) == 0 {
		fmt.Println("No archived crawls found.")
		fmt.Println("\nUse 'sitegraph crawl <url>' to crawl a site.")
		return nil
	}

	fmt.Printf("Archived domains (%d):\n\n", len(domains))
	for _, domain := range domains {
		fmt.Printf("  • %s\n", domain)
	}
	fmt.Println("\nUse 'sitegraph compare --list <domain>' to see crawl history for a domain.")

	return nil
}

// listRunHistory lists archived runs for a specific domain.
func listRunHistory(ctx context.Context, db *database.CrawlDB, domain string) error {
	runs, err := db.RecentRuns(ctx, domain, 0)
	if err != nil {
		return fmt.Errorf("failed to get crawl history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Printf("No crawl history found for %s\n", domain)
		fmt.Println("\nUse 'sitegraph crawl' to crawl this domain.")
		return nil
	}

	fmt.Printf("Crawl history for %s (%d runs):\n\n", domain, len(runs))
	fmt.Printf("  %-6s  %-20s  %-8s  %-8s  %s\n", "ID", "Date", "Pages", "Edges", "Status")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, run := range runs {
		status := "complete"
		if run.Cancelled {
			status = "interrupted"
		}
		fmt.Printf("  %-6d  %-20s  %-8d  %-8d  %s\n",
			run.ID,
			run.Started.Format("2006-01-02 15:04:05"),
			run.Pages,
			run.Edges,
			status,
		)
	}

	fmt.Println("\nUse 'sitegraph compare <domain>' to compare the latest two runs.")

	return nil
}

// ComparisonResult holds the result of comparing two archived runs.
type ComparisonResult struct {
	// Domain is the compared domain.
	Domain string `json:"domain"`

	// PreviousRun contains metadata about the previous run.
	PreviousRun RunMetadata `json:"previous_run"`

	// CurrentRun contains metadata about the current run.
	CurrentRun RunMetadata `json:"current_run"`

	// AddedURLs are URLs present in the current run but not the previous.
	AddedURLs []string `json:"added_urls,omitempty"`

	// RemovedURLs are URLs present in the previous run but not the current.
	RemovedURLs []string `json:"removed_urls,omitempty"`

	// StatusChanges are URLs whose HTTP status changed between runs.
	StatusChanges []StatusChange `json:"status_changes,omitempty"`

	// UnchangedCount is the number of URLs with the same status in both runs.
	UnchangedCount int `json:"unchanged_count"`
}

// RunMetadata contains metadata about one run for comparison display.
type RunMetadata struct {
	// ID is the run's archive identifier.
	ID int64 `json:"id"`

	// Started is when the crawl began.
	Started time.Time `json:"started"`

	// Pages is the number of visit records in the run.
	Pages int `json:"pages"`

	// Edges is the number of discovery edges in the run.
	Edges int `json:"edges"`
}

// StatusChange describes a URL whose HTTP status changed between runs.
type StatusChange struct {
	// URL is the canonical URL.
	URL string `json:"url"`

	// Previous is the status in the previous run.
	Previous int `json:"previous"`

	// Current is the status in the current run.
	Current int `json:"current"`
}

// runComparison compares the latest two runs of a domain.
func runComparison(ctx context.Context, db *database.CrawlDB, domain string, jsonOutput bool) error {
	runs, err := db.RecentRuns(ctx, domain, 2)
	if err != nil {
		return fmt.Errorf("failed to get crawl history: %w", err)
	}

	if len(runs) == 0 {
		return fmt.Errorf("no crawl history found for %s", domain)
	}
	if len(runs) < 2 {
		return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
	}

	// RecentRuns returns newest first.
	current, previous := runs[0], runs[1]

	currentStatuses, err := db.RunStatuses(ctx, current.ID)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", current.ID, err)
	}
	previousStatuses, err := db.RunStatuses(ctx, previous.ID)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", previous.ID, err)
	}

	result := compareRuns(domain, previous, current, previousStatuses, currentStatuses)

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}
	return outputComparisonText(result)
}

// compareRuns diffs the URL sets and statuses of two runs.
func compareRuns(domain string, previous, current database.RunSummary, previousStatuses, currentStatuses map[string]int) *ComparisonResult {
	result := &ComparisonResult{
		Domain: domain,
		PreviousRun: RunMetadata{
			ID:      previous.ID,
			Started: previous.Started,
			Pages:   previous.Pages,
			Edges:   previous.Edges,
		},
		CurrentRun: RunMetadata{
			ID:      current.ID,
			Started: current.Started,
			Pages:   current.Pages,
			Edges:   current.Edges,
		},
	}

	for url, status := range currentStatuses {
		prevStatus, existed := previousStatuses[url]
		switch {
		case !existed:
			result.AddedURLs = append(result.AddedURLs, url)
		case prevStatus != status:
			result.StatusChanges = append(result.StatusChanges, StatusChange{
				URL:      url,
				Previous: prevStatus,
				Current:  status,
			})
		default:
			result.UnchangedCount++
		}
	}

	for url := range previousStatuses {
		if _, exists := currentStatuses[url]; !exists {
			result.RemovedURLs = append(result.RemovedURLs, url)
		}
	}

	sort.Strings(result.AddedURLs)
	sort.Strings(result.RemovedURLs)
	sort.Slice(result.StatusChanges, func(i, j int) bool {
		return result.StatusChanges[i].URL < result.StatusChanges[j].URL
	})

	return result
}

// outputComparisonText outputs the comparison result in human-readable text.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Crawl Comparison: %s\n", result.Domain)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nPrevious run: #%d  %s  (%d pages, %d edges)\n",
		result.PreviousRun.ID,
		result.PreviousRun.Started.Format("2006-01-02 15:04:05"),
		result.PreviousRun.Pages,
		result.PreviousRun.Edges)
	fmt.Printf("Current run:  #%d  %s  (%d pages, %d edges)\n",
		result.CurrentRun.ID,
		result.CurrentRun.Started.Format("2006-01-02 15:04:05"),
		result.CurrentRun.Pages,
		result.CurrentRun.Edges)

	if len(result.AddedURLs) > 0 {
		fmt.Printf("\nNew URLs (%d):\n", len(result.AddedURLs))
		for _, url := range result.AddedURLs {
			fmt.Printf("  [+] %s\n", url)
		}
	}

	if len(result.RemovedURLs) > 0 {
		fmt.Printf("\nRemoved URLs (%d):\n", len(result.RemovedURLs))
		for _, url := range result.RemovedURLs {
			fmt.Printf("  [-] %s\n", url)
		}
	}

	if len(result.StatusChanges) > 0 {
		fmt.Printf("\nStatus changes (%d):\n", len(result.StatusChanges))
		for _, change := range result.StatusChanges {
			fmt.Printf("  [~] %s: %d -> %d\n", change.URL, change.Previous, change.Current)
		}
	}

	if len(result.AddedURLs) == 0 && len(result.RemovedURLs) == 0 && len(result.StatusChanges) == 0 {
		fmt.Println("\nNo differences found.")
	}

	fmt.Printf("\nUnchanged: %d URLs\n", result.UnchangedCount)

	return nil
}
