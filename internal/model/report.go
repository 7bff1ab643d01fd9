package model

import (
	"strings"
	"time"
)

// Node is one resource in the site graph.
// Nodes exist only for URLs that were admitted and fetched; discovered but
// never-fetched link targets appear solely as edge endpoints.
type Node struct {
	// URL is the canonical URL identifying the node.
	URL string `json:"url"`

	// Label is a short display label, typically the truncated URL path.
	Label string `json:"label"`

	// Summary describes the fetch outcome ("Status: 200 / Type: text/html").
	Summary string `json:"summary"`
}

// Edge is a directed discovery relationship: the source page contains a
// reference that canonicalizes to the target URL. The target may or may not
// have been fetched.
type Edge struct {
	// Source is the canonical URL of the page the reference was found on.
	Source string `json:"source"`

	// Target is the canonical URL the reference resolves to.
	Target string `json:"target"`
}

// CrawlReport is the complete result of one crawl run.
// It is created empty with the seed, filled in by pipeline steps, and finally
// handed to report writers and the run archive.
type CrawlReport struct {
	// Seed is the URL the crawl started from, in canonical form once the
	// crawl step has run.
	Seed string `json:"seed"`

	// Domain is the host the crawl was scoped to.
	Domain string `json:"domain"`

	// MaxDepth is the depth bound used for this run. The seed is depth 0.
	MaxDepth int `json:"max_depth"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total crawl duration.
	Elapsed time.Duration `json:"elapsed"`

	// Cancelled reports whether the run was interrupted. The collected
	// results up to the interruption point are still valid.
	Cancelled bool `json:"cancelled,omitempty"`

	// Visits maps each admitted canonical URL to its visit record.
	Visits map[string]*VisitRecord `json:"visits"`

	// Nodes is the site graph's node set.
	Nodes []Node `json:"nodes"`

	// Edges is the site graph's edge set.
	Edges []Edge `json:"edges"`

	// Summary holds aggregated counts, filled by the summarize step.
	Summary *Summary `json:"summary,omitempty"`

	// PerformedSteps lists pipeline steps that ran for this report.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error holds a run-level error, if any. Per-URL failures live in
	// their VisitRecords, not here.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewCrawlReport creates an empty report for the given seed URL.
func NewCrawlReport(seed string) *CrawlReport {
	return &CrawlReport{
		Seed:      seed,
		StartedAt: time.Now(),
		Visits:    make(map[string]*VisitRecord),
		Nodes:     make([]Node, 0),
		Edges:     make([]Edge, 0),
	}
}

// Summary holds aggregated counts derived from a finished crawl.
type Summary struct {
	// PagesVisited is the number of URLs fetched (including failures).
	PagesVisited int `json:"pages_visited"`

	// EdgesDiscovered is the number of unique discovery edges.
	EdgesDiscovered int `json:"edges_discovered"`

	// Failures is the number of transport-level fetch failures.
	Failures int `json:"failures"`

	// TotalBytes is the sum of all response body sizes.
	TotalBytes int64 `json:"total_bytes"`

	// StatusCounts maps HTTP status codes to visit counts.
	// Transport failures are counted under status 0.
	StatusCounts map[int]int `json:"status_counts"`

	// ContentTypes maps media types (without parameters) to visit counts.
	ContentTypes map[string]int `json:"content_types"`
}

// NewSummary computes a Summary from the report's visits and edges.
func NewSummary(r *CrawlReport) *Summary {
	s := &Summary{
		PagesVisited:    len(r.Visits),
		EdgesDiscovered: len(r.Edges),
		StatusCounts:    make(map[int]int),
		ContentTypes:    make(map[string]int),
	}

	for _, v := range r.Visits {
		s.StatusCounts[v.StatusCode]++
		s.TotalBytes += v.Size
		if v.Failed() {
			s.Failures++
			continue
		}
		s.ContentTypes[mediaType(v.ContentType)]++
	}

	return s
}

// mediaType strips Content-Type parameters ("text/html; charset=utf-8" becomes
// "text/html"). Empty content types are grouped as "unknown".
func mediaType(contentType string) string {
	if contentType == "" {
		return "unknown"
	}
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(mt)
}
