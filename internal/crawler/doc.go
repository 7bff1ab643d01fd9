// Package crawler provides domain-scoped web crawling and site graph
// construction.
//
// # Architecture
//
// The crawler package is designed around the Spider type, which coordinates
// the crawling process. It uses a work queue with a fixed pool of workers to
// keep resource usage flat regardless of how deep or wide the site is, and a
// weighted semaphore to bound the number of simultaneous outbound fetches.
//
// Design decision: We implement our own crawler rather than using a
// third-party library because:
//  1. The site graph needs edges recorded at discovery time, before any
//     visited/depth/robots filtering, which crawling frameworks hide
//  2. Canonical URL identity (sorted query parameters, normalized root path)
//     must drive deduplication, not the raw reference string
//  3. Reduces external dependencies and potential security issues
//
// # Components
//
//   - Canonicalize: stable, comparison-safe URL identity
//   - Policy: robots.txt gate, loaded once per run and read-only afterwards
//   - Fetcher: HTTP GET capability with concurrency admission control
//   - LinkExtractor: HTML reference extraction scoped to the crawl domain
//   - Spider: the depth-bounded, dedup-aware scheduler
//   - Graph: the directed graph of visited resources and discovery edges
//
// # Usage
//
//	fetcher := crawler.NewFetcher(crawler.WithConcurrency(10))
//	spider := crawler.NewSpider(fetcher, crawler.WithMaxDepth(2))
//	result, err := spider.Crawl(ctx, "https://example.com/")
package crawler
