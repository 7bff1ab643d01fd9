package crawler

import (
	"fmt"
	"sync"
	"testing"
)

// TestGraph tests node and edge bookkeeping.
func TestGraph(t *testing.T) {
	t.Parallel()

	t.Run("adding the same node twice keeps one node", func(t *testing.T) {
		t.Parallel()

		g := NewGraph()
		g.AddNode("https://example.com/", "/", "Status: 200 / Type: text/html")
		g.AddNode("https://example.com/", "/", "Status: 200 / Type: text/html")

		if g.NodeCount() != 1 {
			t.Errorf("expected 1 node, got %d", g.NodeCount())
		}
	})

	t.Run("re-adding a node updates its attributes", func(t *testing.T) {
		t.Parallel()

		g := NewGraph()
		g.AddNode("https://example.com/", "/", "Status: 0 / Type: unknown")
		g.AddNode("https://example.com/", "/", "Status: 200 / Type: text/html")

		nodes := g.Nodes()
		if len(nodes) != 1 {
			t.Fatalf("expected 1 node, got %d", len(nodes))
		}
		if nodes[0].Summary != "Status: 200 / Type: text/html" {
			t.Errorf("expected updated summary, got %q", nodes[0].Summary)
		}
	})

	t.Run("adding the same edge twice keeps one edge", func(t *testing.T) {
		t.Parallel()

		g := NewGraph()
		g.AddEdge("https://example.com/", "https://example.com/about")
		g.AddEdge("https://example.com/", "https://example.com/about")

		if g.EdgeCount() != 1 {
			t.Errorf("expected 1 edge, got %d", g.EdgeCount())
		}
	})

	t.Run("edges are directed", func(t *testing.T) {
		t.Parallel()

		g := NewGraph()
		g.AddEdge("https://example.com/a", "https://example.com/b")
		g.AddEdge("https://example.com/b", "https://example.com/a")

		if g.EdgeCount() != 2 {
			t.Errorf("expected 2 directed edges, got %d", g.EdgeCount())
		}
	})

	t.Run("edge endpoints need not be nodes", func(t *testing.T) {
		t.Parallel()

		g := NewGraph()
		g.AddEdge("https://example.com/", "https://example.com/never-fetched")

		if g.EdgeCount() != 1 {
			t.Errorf("expected 1 edge, got %d", g.EdgeCount())
		}
		if g.HasNode("https://example.com/never-fetched") {
			t.Error("expected edge target to not be a node")
		}
	})

	t.Run("concurrent inserts are safe and counted once", func(t *testing.T) {
		t.Parallel()

		g := NewGraph()
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					url := fmt.Sprintf("https://example.com/page%d", j)
					g.AddNode(url, "/page", "")
					g.AddEdge("https://example.com/", url)
				}
			}()
		}
		wg.Wait()

		if g.NodeCount() != 100 {
			t.Errorf("expected 100 nodes, got %d", g.NodeCount())
		}
		if g.EdgeCount() != 100 {
			t.Errorf("expected 100 edges, got %d", g.EdgeCount())
		}
	})

	t.Run("snapshots are sorted", func(t *testing.T) {
		t.Parallel()

		g := NewGraph()
		g.AddNode("https://example.com/b", "/b", "")
		g.AddNode("https://example.com/a", "/a", "")

		nodes := g.Nodes()
		if len(nodes) != 2 || nodes[0].URL != "https://example.com/a" {
			t.Errorf("expected sorted nodes, got %+v", nodes)
		}
	})
}
