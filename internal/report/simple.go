package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/nao1215/sitegraph/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display: a run header, aggregate
// counts, and the visited URLs grouped by status code.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because:
//  1. It works in all terminals without compatibility issues
//  2. It's easier to pipe to files or other tools
type SimpleWriter struct {
	baseWriter

	// verbose enables per-URL detail lines (type, size, errors).
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with per-URL details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report as plain text.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var b strings.Builder

	b.WriteString("Crawl Results\n")
	b.WriteString("=============\n")
	fmt.Fprintf(&b, "Domain:    %s\n", report.Domain)
	fmt.Fprintf(&b, "Seed:      %s\n", report.Seed)
	fmt.Fprintf(&b, "Max depth: %d\n", report.MaxDepth)
	fmt.Fprintf(&b, "Duration:  %s\n", report.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(&b, "Pages:     %d\n", len(report.Visits))
	fmt.Fprintf(&b, "Edges:     %d\n", len(report.Edges))
	if report.Cancelled {
		b.WriteString("Status:    interrupted (partial results)\n")
	}
	b.WriteString("\n")

	w.writeStatusGroups(&b, report)

	if summary := report.Summary; summary != nil && len(summary.ContentTypes) > 0 {
		b.WriteString("Content types:\n")
		for _, ct := range sortedKeys(summary.ContentTypes) {
			fmt.Fprintf(&b, "  %-40s %d\n", ct, summary.ContentTypes[ct])
		}
		b.WriteString("\n")
	}

	return io.WriteString(w.output, b.String())
}

// writeStatusGroups lists visited URLs grouped by status code, ascending.
// Transport failures (status 0) sort first.
func (w *SimpleWriter) writeStatusGroups(b *strings.Builder, report *model.CrawlReport) {
	groups := make(map[int][]*model.VisitRecord)
	for _, v := range report.Visits {
		groups[v.StatusCode] = append(groups[v.StatusCode], v)
	}

	statuses := make([]int, 0, len(groups))
	for status := range groups {
		statuses = append(statuses, status)
	}
	sort.Ints(statuses)

	for _, status := range statuses {
		records := groups[status]
		sort.Slice(records, func(i, j int) bool { return records[i].URL < records[j].URL })

		if status == 0 {
			fmt.Fprintf(b, "Failed (%d):\n", len(records))
		} else {
			fmt.Fprintf(b, "Status %d (%d):\n", status, len(records))
		}

		for _, rec := range records {
			fmt.Fprintf(b, "  %s\n", rec.URL)
			if !w.verbose {
				continue
			}
			if rec.Error != "" {
				fmt.Fprintf(b, "    error: %s\n", rec.Error)
				continue
			}
			fmt.Fprintf(b, "    type: %s, size: %d bytes\n", rec.ContentType, rec.Size)
		}
		b.WriteString("\n")
	}
}

// sortedKeys returns the map's keys in ascending order.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
