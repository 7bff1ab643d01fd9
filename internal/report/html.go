package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/nao1215/sitegraph/internal/model"
)

// HTMLWriter outputs an interactive site map as a standalone HTML page.
// The page renders the link graph with vis-network: nodes are colored by
// content type, hovering shows fetch details, and clicking a node opens
// the URL in a new tab.
//
// Design decision: The vis-network library is loaded from a CDN rather
// than embedded, keeping the generated file small. The graph data itself
// is inlined as JSON so the page works without a server.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{
		baseWriter: newBaseWriter(output),
	}
}

// visNode is the vis-network node representation.
type visNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Title string `json:"title"`
	Color string `json:"color"`
	URL   string `json:"url"`
}

// visEdge is the vis-network edge representation.
type visEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Node colors keyed by content class.
const (
	colorHTML    = "#97c2fc"
	colorImage   = "#ffb347"
	colorScript  = "#98FB98"
	colorStyle   = "#DDA0DD"
	colorFailure = "#fb7e81"
)

// nodeColor picks a color for a node based on its fetch outcome.
// Unfetched nodes (discovered but never dequeued) get the default color.
func nodeColor(rec *model.VisitRecord) string {
	if rec == nil {
		return colorHTML
	}
	if !rec.IsSuccess() {
		return colorFailure
	}

	ct := strings.ToLower(rec.ContentType)
	switch {
	case strings.Contains(ct, "html"):
		return colorHTML
	case strings.Contains(ct, "image"):
		return colorImage
	case strings.Contains(ct, "javascript"):
		return colorScript
	case strings.Contains(ct, "css"):
		return colorStyle
	default:
		return colorHTML
	}
}

// nodeTitle builds the hover tooltip text for a node.
func nodeTitle(n model.Node, rec *model.VisitRecord) string {
	if rec == nil {
		return n.URL + "\nnot fetched"
	}
	if rec.Error != "" {
		return fmt.Sprintf("%s\nError: %s", n.URL, rec.Error)
	}
	return fmt.Sprintf("%s\nStatus: %d\nType: %s\nSize: %d bytes",
		n.URL, rec.StatusCode, rec.ContentType, rec.Size)
}

// Write renders the interactive HTML site map.
func (w *HTMLWriter) Write(report *model.CrawlReport) (int, error) {
	if report.Summary == nil {
		report.Summary = model.NewSummary(report)
	}

	nodes := make([]visNode, 0, len(report.Nodes))
	for _, n := range report.Nodes {
		rec := report.Visits[n.URL]
		label := n.Label
		if label == "" {
			label = n.URL
		}
		nodes = append(nodes, visNode{
			ID:    n.URL,
			Label: label,
			Title: nodeTitle(n, rec),
			Color: nodeColor(rec),
			URL:   n.URL,
		})
	}

	edges := make([]visEdge, 0, len(report.Edges))
	for _, e := range report.Edges {
		edges = append(edges, visEdge{From: e.Source, To: e.Target})
	}

	nodeJSON, err := json.Marshal(nodes)
	if err != nil {
		return 0, fmt.Errorf("marshal graph nodes: %w", err)
	}
	edgeJSON, err := json.Marshal(edges)
	if err != nil {
		return 0, fmt.Errorf("marshal graph edges: %w", err)
	}

	data := htmlPageData{
		Domain:    report.Domain,
		Seed:      report.Seed,
		StartedAt: report.StartedAt.Format("2006-01-02 15:04:05 MST"),
		Duration:  report.Elapsed.Round(time.Millisecond).String(),
		Pages:     len(report.Visits),
		Edges:     len(report.Edges),
		Cancelled: report.Cancelled,
		NodeJSON:  template.JS(nodeJSON), //nolint:gosec // output of json.Marshal on typed structs
		EdgeJSON:  template.JS(edgeJSON), //nolint:gosec // output of json.Marshal on typed structs
	}

	var b strings.Builder
	if err := htmlPageTemplate.Execute(&b, data); err != nil {
		return 0, fmt.Errorf("render html report: %w", err)
	}

	return io.WriteString(w.output, b.String())
}

// htmlPageData holds the values interpolated into the page template.
type htmlPageData struct {
	Domain    string
	Seed      string
	StartedAt string
	Duration  string
	Pages     int
	Edges     int
	Cancelled bool
	NodeJSON  template.JS
	EdgeJSON  template.JS
}

var htmlPageTemplate = template.Must(template.New("sitemap").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Site Map - {{.Domain}}</title>
<script src="https://unpkg.com/vis-network@9.1.9/standalone/umd/vis-network.min.js"></script>
<style>
  body { margin: 0; font-family: Tahoma, sans-serif; background: #ffffff; color: #000000; }
  #header { padding: 12px 16px; border-bottom: 1px solid #ddd; }
  #header h1 { margin: 0 0 4px 0; font-size: 18px; }
  #header .meta { font-size: 12px; color: #555; }
  #network { width: 100%; height: 750px; }
  .legend { font-size: 12px; padding: 4px 16px; color: #555; }
  .legend span { display: inline-block; margin-right: 12px; }
  .dot { display: inline-block; width: 10px; height: 10px; border-radius: 5px; margin-right: 4px; }
</style>
</head>
<body>
<div id="header">
  <h1>Site Map: {{.Domain}}</h1>
  <div class="meta">
    Seed: {{.Seed}} &middot; Started: {{.StartedAt}} &middot; Duration: {{.Duration}}
    &middot; Pages: {{.Pages}} &middot; Edges: {{.Edges}}{{if .Cancelled}} &middot; <strong>interrupted (partial results)</strong>{{end}}
  </div>
</div>
<div class="legend">
  <span><i class="dot" style="background:#97c2fc"></i>HTML</span>
  <span><i class="dot" style="background:#ffb347"></i>Image</span>
  <span><i class="dot" style="background:#98FB98"></i>JavaScript</span>
  <span><i class="dot" style="background:#DDA0DD"></i>CSS</span>
  <span><i class="dot" style="background:#fb7e81"></i>Failed</span>
</div>
<div id="network"></div>
<script>
  const nodes = new vis.DataSet({{.NodeJSON}});
  const edges = new vis.DataSet({{.EdgeJSON}});
  const container = document.getElementById("network");
  const network = new vis.Network(container, { nodes: nodes, edges: edges }, {
    physics: {
      forceAtlas2Based: {
        gravitationalConstant: -100,
        springLength: 100
      },
      minVelocity: 0.75,
      solver: "forceAtlas2Based"
    },
    interaction: {
      hover: true,
      navigationButtons: true,
      keyboard: { enabled: true }
    },
    nodes: {
      shape: "dot",
      size: 20,
      font: { size: 12, face: "Tahoma" }
    },
    edges: {
      arrows: { to: { enabled: true, scaleFactor: 0.5 } },
      color: { color: "#cccccc", highlight: "#555555" }
    }
  });

  network.on("doubleClick", function (params) {
    if (params.nodes.length === 1) {
      const node = nodes.get(params.nodes[0]);
      if (node && node.url) {
        window.open(node.url, "_blank");
      }
    }
  });
</script>
</body>
</html>
`))
