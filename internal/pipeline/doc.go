// Package pipeline orchestrates the stages of a crawl run.
//
// A run is a sequence of steps executed against one CrawlReport: crawl,
// summarize, persist. The Pipeline type runs steps in order with structured
// logging and cancellation support; BatchProcessor runs one pipeline per
// seed concurrently under an errgroup limit.
//
// Design decision: Steps are small and the sequence is short, but the
// pipeline shape keeps the crawl command thin and makes the stages
// independently testable.
package pipeline
