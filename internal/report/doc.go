// Package report generates crawl result reports in multiple formats.
//
// The package provides four output formats through a common Writer
// interface:
//
//   - SimpleWriter: plain text grouped by HTTP status, for terminals
//   - JSONWriter: machine-readable output for tool integration
//   - MarkdownWriter: documentation-friendly tables and mermaid diagrams
//   - HTMLWriter: standalone interactive site map built on vis-network
//
// MultiWriter fans a report out to several writers, e.g. terminal plus
// file. Writers never mutate the report except to fill a missing Summary.
package report
