package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/sitegraph/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
//  1. Type-safe markdown generation
//  2. Support for tables, lists, and code blocks
//  3. GitHub-flavored markdown alerts and mermaid diagrams
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	if report.Summary == nil {
		report.Summary = model.NewSummary(report)
	}

	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeStatusSummary(md, report)
	w.writePages(md, report)
	w.writeGraph(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Site Graph Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Domain", "`" + report.Domain + "`"},
			{"Seed", "`" + report.Seed + "`"},
			{"Crawl Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Elapsed.Round(time.Millisecond).String()},
			{"Max Depth", strconv.Itoa(report.MaxDepth)},
			{"Pages Fetched", strconv.Itoa(len(report.Visits))},
			{"Edges Discovered", strconv.Itoa(len(report.Edges))},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")
}

// statusText returns the run status text based on report state.
func (w *MarkdownWriter) statusText(report *model.CrawlReport) string {
	if report.Cancelled {
		return "⚠️ Interrupted (partial results)"
	}
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

// writeStatusSummary writes the status distribution table and pie chart.
func (w *MarkdownWriter) writeStatusSummary(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Fetch Summary")
	md.PlainText("")

	summary := report.Summary

	statuses := make([]int, 0, len(summary.StatusCounts))
	for status := range summary.StatusCounts {
		statuses = append(statuses, status)
	}
	sort.Ints(statuses)

	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		label := strconv.Itoa(status)
		if status == 0 {
			label = "transport failure"
		}
		rows = append(rows, []string{label, strconv.Itoa(summary.StatusCounts[status])})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Status", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(summary.StatusCounts) > 0 {
		w.writePieChart(md, statuses, summary)
	}

	if summary.Failures > 0 {
		md.Warningf("%d of %d fetches failed at the transport level.",
			summary.Failures, summary.PagesVisited)
	} else {
		md.Tip("All fetches completed without transport failures.")
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of the status distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, statuses []int, summary *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Status Distribution"),
		piechart.WithShowData(true),
	)

	for _, status := range statuses {
		label := "HTTP " + strconv.Itoa(status)
		if status == 0 {
			label = "failed"
		}
		chart.LabelAndIntValue(label, uint64(summary.StatusCounts[status])) //nolint:gosec // counts are non-negative
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writePages writes the table of visited resources.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Pages")
	md.PlainText("")

	if len(report.Visits) == 0 {
		md.PlainText("No pages were fetched.")
		md.PlainText("")
		return
	}

	urls := make([]string, 0, len(report.Visits))
	for url := range report.Visits {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	rows := make([][]string, 0, len(urls))
	for _, url := range urls {
		v := report.Visits[url]
		status := strconv.Itoa(v.StatusCode)
		detail := v.ContentType
		if v.Error != "" {
			status = "failed"
			detail = v.Error
		}
		rows = append(rows, []string{
			"`" + url + "`",
			status,
			detail,
			strconv.FormatInt(v.Size, 10),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Type / Error", "Bytes"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeGraph renders the site graph as a mermaid flowchart.
// Node identifiers are synthetic (n0, n1, ...) because canonical URLs contain
// characters mermaid cannot use in IDs.
func (w *MarkdownWriter) writeGraph(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Link Graph")
	md.PlainText("")

	if len(report.Edges) == 0 {
		md.PlainText("No link relationships were discovered.")
		md.PlainText("")
		return
	}

	ids := make(map[string]string)
	labels := make(map[string]string)
	for _, n := range report.Nodes {
		labels[n.URL] = n.Label
	}

	var b strings.Builder
	b.WriteString("graph LR\n")

	id := func(url string) string {
		if existing, ok := ids[url]; ok {
			return existing
		}
		next := fmt.Sprintf("n%d", len(ids))
		ids[url] = next

		label := labels[url]
		if label == "" {
			// Discovered but never fetched: label from the URL itself.
			label = url
		}
		fmt.Fprintf(&b, "    %s[\"%s\"]\n", next, strings.ReplaceAll(label, "\"", "'"))
		return next
	}

	for _, e := range report.Edges {
		src := id(e.Source)
		dst := id(e.Target)
		fmt.Fprintf(&b, "    %s --> %s\n", src, dst)
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, b.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitegraph](https://github.com/nao1215/sitegraph)*")
}
