package model

import (
	"testing"
)

// TestNewCrawlReport tests report construction.
func TestNewCrawlReport(t *testing.T) {
	t.Parallel()

	r := NewCrawlReport("https://example.com/")

	if r.Seed != "https://example.com/" {
		t.Errorf("expected seed to be set, got %q", r.Seed)
	}
	if r.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}
	if r.Visits == nil || r.Nodes == nil || r.Edges == nil {
		t.Error("expected collections to be initialized")
	}
}

// TestNewSummary tests aggregate computation.
func TestNewSummary(t *testing.T) {
	t.Parallel()

	t.Run("counts statuses, bytes, and failures", func(t *testing.T) {
		t.Parallel()

		r := NewCrawlReport("https://example.com/")
		r.Visits["https://example.com/"] = &VisitRecord{
			URL: "https://example.com/", StatusCode: 200,
			ContentType: "text/html; charset=utf-8", Size: 1000,
		}
		r.Visits["https://example.com/missing"] = &VisitRecord{
			URL: "https://example.com/missing", StatusCode: 404,
			ContentType: "text/html", Size: 200,
		}
		r.Visits["https://example.com/dead"] = &VisitRecord{
			URL: "https://example.com/dead", StatusCode: 0, Error: "connection refused",
		}
		r.Edges = append(r.Edges,
			Edge{Source: "https://example.com/", Target: "https://example.com/missing"},
			Edge{Source: "https://example.com/", Target: "https://example.com/dead"},
		)

		s := NewSummary(r)

		if s.PagesVisited != 3 {
			t.Errorf("expected 3 pages, got %d", s.PagesVisited)
		}
		if s.EdgesDiscovered != 2 {
			t.Errorf("expected 2 edges, got %d", s.EdgesDiscovered)
		}
		if s.Failures != 1 {
			t.Errorf("expected 1 failure, got %d", s.Failures)
		}
		if s.TotalBytes != 1200 {
			t.Errorf("expected 1200 bytes, got %d", s.TotalBytes)
		}
		if s.StatusCounts[200] != 1 || s.StatusCounts[404] != 1 || s.StatusCounts[0] != 1 {
			t.Errorf("unexpected status counts: %v", s.StatusCounts)
		}
		if s.ContentTypes["text/html"] != 2 {
			t.Errorf("expected charset parameter stripped, got %v", s.ContentTypes)
		}
	})

	t.Run("failed fetches contribute no content type", func(t *testing.T) {
		t.Parallel()

		r := NewCrawlReport("https://example.com/")
		r.Visits["https://example.com/"] = &VisitRecord{StatusCode: 0, Error: "timeout"}

		s := NewSummary(r)
		if len(s.ContentTypes) != 0 {
			t.Errorf("expected no content types for failures, got %v", s.ContentTypes)
		}
	})

	t.Run("empty report yields zero summary", func(t *testing.T) {
		t.Parallel()

		s := NewSummary(NewCrawlReport("https://example.com/"))
		if s.PagesVisited != 0 || s.Failures != 0 || s.TotalBytes != 0 {
			t.Errorf("unexpected non-zero summary: %+v", s)
		}
	})
}

// TestMediaType tests Content-Type parameter stripping.
func TestMediaType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "with charset", in: "text/html; charset=utf-8", want: "text/html"},
		{name: "bare type", in: "application/json", want: "application/json"},
		{name: "empty", in: "", want: "unknown"},
		{name: "trailing space before parameter", in: "text/css ;charset=utf-8", want: "text/css"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := mediaType(tt.in); got != tt.want {
				t.Errorf("mediaType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
