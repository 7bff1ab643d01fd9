package crawler

import (
	"testing"
)

// TestLinkExtractor tests link extraction and domain scoping.
func TestLinkExtractor(t *testing.T) {
	t.Parallel()

	newExtractor := func(t *testing.T) *LinkExtractor {
		t.Helper()
		e, err := NewLinkExtractor("https://example.com/page", "example.com")
		if err != nil {
			t.Fatalf("failed to create extractor: %v", err)
		}
		return e
	}

	t.Run("extracts references from all link-bearing elements", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<link href="/style.css" rel="stylesheet">
			<script src="/app.js"></script>
		</head><body>
			<a href="/about">About</a>
			<img src="/logo.png">
			<form action="/search"></form>
		</body></html>`

		links := newExtractor(t).Extract([]byte(html))
		want := []string{
			"https://example.com/style.css",
			"https://example.com/app.js",
			"https://example.com/about",
			"https://example.com/logo.png",
			"https://example.com/search",
		}
		if len(links) != len(want) {
			t.Fatalf("expected %d links, got %d: %v", len(want), len(links), links)
		}
		for i, w := range want {
			if links[i] != w {
				t.Errorf("link %d: expected %q, got %q", i, w, links[i])
			}
		}
	})

	t.Run("discards links to other domains", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="https://other.example.org/page">External</a>
			<a href="/internal">Internal</a>
		</body></html>`

		links := newExtractor(t).Extract([]byte(html))
		if len(links) != 1 {
			t.Fatalf("expected 1 link, got %d: %v", len(links), links)
		}
		if links[0] != "https://example.com/internal" {
			t.Errorf("expected internal link, got %q", links[0])
		}
	})

	t.Run("deduplicates canonical forms within one document", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/p?a=1&b=2">First</a>
			<a href="/p?b=2&a=1">Same page, reordered query</a>
			<a href="/p#section">Same page, fragment</a>
		</body></html>`

		links := newExtractor(t).Extract([]byte(html))
		if len(links) != 2 {
			t.Errorf("expected 2 unique links, got %d: %v", len(links), links)
		}
	})

	t.Run("skips non-fetchable schemes", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="mailto:user@example.com">Mail</a>
			<a href="tel:+123456">Call</a>
			<a href="javascript:void(0)">JS</a>
			<a href="/ok">OK</a>
		</body></html>`

		links := newExtractor(t).Extract([]byte(html))
		if len(links) != 1 || links[0] != "https://example.com/ok" {
			t.Errorf("expected only /ok, got %v", links)
		}
	})

	t.Run("tolerates malformed HTML", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="/good"><div><p><a href="/also-good">`

		links := newExtractor(t).Extract([]byte(html))
		if len(links) != 2 {
			t.Errorf("expected 2 links from malformed HTML, got %d: %v", len(links), links)
		}
	})

	t.Run("empty document yields no links", func(t *testing.T) {
		t.Parallel()

		if links := newExtractor(t).Extract(nil); len(links) != 0 {
			t.Errorf("expected no links, got %v", links)
		}
	})

	t.Run("case-differing hosts stay in domain", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="https://EXAMPLE.com/upper">Upper</a></body></html>`

		links := newExtractor(t).Extract([]byte(html))
		if len(links) != 1 || links[0] != "https://example.com/upper" {
			t.Errorf("expected lower-cased in-domain link, got %v", links)
		}
	})
}
