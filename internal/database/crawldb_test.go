package database

import (
	"context"
	"testing"
	"time"

	"github.com/nao1215/sitegraph/internal/model"
)

// openTestDB opens a CrawlDB in a temp directory.
func openTestDB(t *testing.T) *CrawlDB {
	t.Helper()
	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return db
}

// testReport builds a small report for the given domain.
func testReport(domain string) *model.CrawlReport {
	seed := "https://" + domain + "/"
	r := model.NewCrawlReport(seed)
	r.Domain = domain
	r.MaxDepth = 2
	r.Elapsed = 1500 * time.Millisecond
	r.Visits[seed] = &model.VisitRecord{
		URL: seed, StatusCode: 200, ContentType: "text/html", Size: 512, FetchedAt: time.Now(),
	}
	r.Visits["https://"+domain+"/about"] = &model.VisitRecord{
		URL: "https://" + domain + "/about", StatusCode: 404, ContentType: "text/html", Size: 128, FetchedAt: time.Now(),
	}
	r.Edges = append(r.Edges, model.Edge{Source: seed, Target: "https://" + domain + "/about"})
	return r
}

// TestOpen tests database creation behavior.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates the database file", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		if db == nil {
			t.Fatal("expected a database handle")
		}
	})

	t.Run("refuses missing database without create option", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("expected an error for a missing database")
		}
	})
}

// TestSaveRun tests archiving a finished run.
func TestSaveRun(t *testing.T) {
	t.Parallel()

	t.Run("saves and reads back a run", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		ctx := context.Background()

		runID, err := db.SaveRun(ctx, testReport("example.com"))
		if err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		if runID <= 0 {
			t.Errorf("expected positive run ID, got %d", runID)
		}

		runs, err := db.RecentRuns(ctx, "example.com", 10)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}
		run := runs[0]
		if run.Domain != "example.com" || run.Pages != 2 || run.Edges != 1 {
			t.Errorf("unexpected run summary: %+v", run)
		}
		if run.Started.IsZero() {
			t.Error("expected a parsed start timestamp")
		}
	})

	t.Run("statuses survive the round trip", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		ctx := context.Background()

		runID, err := db.SaveRun(ctx, testReport("example.com"))
		if err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		statuses, err := db.RunStatuses(ctx, runID)
		if err != nil {
			t.Fatalf("failed to load statuses: %v", err)
		}
		if len(statuses) != 2 {
			t.Fatalf("expected 2 statuses, got %d", len(statuses))
		}
		if statuses["https://example.com/"] != 200 {
			t.Errorf("expected status 200 for the seed, got %d", statuses["https://example.com/"])
		}
		if statuses["https://example.com/about"] != 404 {
			t.Errorf("expected status 404 for /about, got %d", statuses["https://example.com/about"])
		}
	})

	t.Run("cancelled flag is preserved", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		ctx := context.Background()

		r := testReport("example.com")
		r.Cancelled = true
		if _, err := db.SaveRun(ctx, r); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		runs, err := db.RecentRuns(ctx, "example.com", 1)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 || !runs[0].Cancelled {
			t.Errorf("expected the cancelled flag to survive, got %+v", runs)
		}
	})
}

// TestRecentRuns tests listing order and limits.
func TestRecentRuns(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		r := testReport("example.com")
		r.StartedAt = time.Date(2026, 1, 1+i, 12, 0, 0, 0, time.UTC)
		if _, err := db.SaveRun(ctx, r); err != nil {
			t.Fatalf("failed to save run %d: %v", i, err)
		}
	}
	if _, err := db.SaveRun(ctx, testReport("other.example")); err != nil {
		t.Fatalf("failed to save other-domain run: %v", err)
	}

	t.Run("newest first, scoped to domain", func(t *testing.T) {
		t.Parallel()

		runs, err := db.RecentRuns(ctx, "example.com", 2)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if !runs[0].Started.After(runs[1].Started) {
			t.Errorf("expected newest first, got %v then %v", runs[0].Started, runs[1].Started)
		}
	})

	t.Run("zero limit returns all runs", func(t *testing.T) {
		t.Parallel()

		runs, err := db.RecentRuns(ctx, "example.com", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 3 {
			t.Errorf("expected 3 runs, got %d", len(runs))
		}
	})

	t.Run("list domains covers all archived hosts", func(t *testing.T) {
		t.Parallel()

		domains, err := db.ListDomains(ctx)
		if err != nil {
			t.Fatalf("failed to list domains: %v", err)
		}
		if len(domains) != 2 {
			t.Errorf("expected 2 domains, got %v", domains)
		}
	})
}

// TestParseTimestamp tests the multi-format timestamp helper.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		zero bool
	}{
		{name: "sqlite datetime", in: "2026-01-15 12:30:45", zero: false},
		{name: "rfc3339", in: "2026-01-15T12:30:45Z", zero: false},
		{name: "garbage", in: "not-a-timestamp", zero: true},
		{name: "empty", in: "", zero: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parseTimestamp(tt.in)
			if got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q).IsZero() = %v, want %v", tt.in, got.IsZero(), tt.zero)
			}
		})
	}
}
