// Package main provides the entry point for the sitegraph CLI.
//
// Sitegraph crawls a single web domain and builds a directed graph of its
// internal link structure. It respects robots.txt, bounds concurrency, and
// outputs text, JSON, Markdown, or interactive HTML reports.
//
// Usage:
//
//	sitegraph crawl https://example.com
//	sitegraph crawl --depth 3 --html https://example.com
//
// See --help for all available options.
package main

// main is the entry point for sitegraph.
func main() {
	Execute()
}
