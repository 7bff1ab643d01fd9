package crawler

import (
	"sort"
	"sync"

	"github.com/nao1215/sitegraph/internal/model"
)

// Graph is the directed site graph built during a crawl. Nodes are fetched
// canonical URLs; edges are discovery relationships recorded at extraction
// time, so an edge target may never become a node (already visited elsewhere,
// over the depth bound, or robots-denied).
//
// All mutation methods are safe for concurrent use: the crawl mutates the
// graph from many worker goroutines. Read accessors are meant for use after
// the crawl has completed but take the lock anyway so observing a graph
// mid-crawl is still consistent.
type Graph struct {
	mu    sync.Mutex
	nodes map[string]model.Node
	edges map[model.Edge]struct{}
}

// NewGraph creates an empty site graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]model.Node),
		edges: make(map[model.Edge]struct{}),
	}
}

// AddNode inserts or updates the node for the given canonical URL.
// Re-adding an existing URL updates its label and summary rather than
// duplicating the node.
func (g *Graph) AddNode(url, label, summary string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes[url] = model.Node{URL: url, Label: label, Summary: summary}
}

// AddEdge records a discovery edge from source to target. The edge set is
// keyed by the (source, target) pair, so repeated discoveries of the same
// relationship collapse to one edge.
func (g *Graph) AddEdge(source, target string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges[model.Edge{Source: source, Target: target}] = struct{}{}
}

// HasNode reports whether a node exists for the given canonical URL.
func (g *Graph) HasNode(url string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.nodes[url]
	return ok
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// EdgeCount returns the number of unique edges in the graph.
func (g *Graph) EdgeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.edges)
}

// Nodes returns the node set sorted by URL.
//
// Design decision: Accessors return sorted snapshots because traversal order
// during the crawl is concurrency-dependent; reports and tests need a
// deterministic view.
func (g *Graph) Nodes() []model.Node {
	g.mu.Lock()
	defer g.mu.Unlock()

	nodes := make([]model.Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].URL < nodes[j].URL })
	return nodes
}

// Edges returns the edge set sorted by (source, target).
func (g *Graph) Edges() []model.Edge {
	g.mu.Lock()
	defer g.mu.Unlock()

	edges := make([]model.Edge, 0, len(g.edges))
	for e := range g.edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}
