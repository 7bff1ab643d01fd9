// Package model defines the core data structures used throughout sitegraph.
//
// This package contains the following main types:
//   - VisitRecord: The immutable result of fetching one canonical URL
//   - Node / Edge: The site graph as seen by reports and storage
//   - CrawlReport: The full result of a crawl run
//   - Summary: Aggregated counts derived from a finished crawl
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, pipeline, report, database) need
// to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
