// Package database provides SQLite-based archiving of finished crawl runs.
//
// The archive exists for run-over-run comparison: the crawl command saves
// each completed report, and the compare command diffs the two most recent
// runs of a domain. The crawler itself never reads from the archive; a crawl
// is always performed from scratch.
//
// Design decision: We use modernc.org/sqlite (a pure-Go driver) rather than
// a CGO-based driver so the binary cross-compiles without a C toolchain.
package database
