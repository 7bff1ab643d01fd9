package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitegraph/internal/model"
)

// CrawlDB provides SQLite-based storage for finished crawl runs.
// It is a write-only archive from the crawler's point of view: runs are
// saved when they complete and read back only by the compare command.
// No crawl ever resumes from the archive.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified directory.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "sitegraph.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection strings: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single pooled connection avoids
	// lock contention between the visit and edge inserts.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per finished crawl run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain TEXT NOT NULL,
		seed TEXT NOT NULL,
		max_depth INTEGER NOT NULL,
		started DATETIME DEFAULT CURRENT_TIMESTAMP,
		elapsed_ms INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		edges INTEGER NOT NULL,
		cancelled INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_domain ON runs(domain);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);

	-- Visit records of a run
	CREATE TABLE IF NOT EXISTS visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		url TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		content_type TEXT,
		size INTEGER NOT NULL,
		error TEXT,
		fetched_at DATETIME,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_visits_run ON visits(run_id);
	CREATE INDEX IF NOT EXISTS idx_visits_url ON visits(url);

	-- Discovery edges of a run
	CREATE TABLE IF NOT EXISTS edges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		UNIQUE(run_id, source, target)
	);

	CREATE INDEX IF NOT EXISTS idx_edges_run ON edges(run_id);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun archives a finished crawl report and returns the run ID.
// Visits and edges are written in one transaction so a partially saved run
// never appears in the archive.
func (cdb *CrawlDB) SaveRun(ctx context.Context, report *model.CrawlReport) (int64, error) {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (domain, seed, max_depth, started, elapsed_ms, pages, edges, cancelled)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.Domain,
		report.Seed,
		report.MaxDepth,
		report.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		report.Elapsed.Milliseconds(),
		len(report.Visits),
		len(report.Edges),
		boolToInt(report.Cancelled),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for _, v := range report.Visits {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO visits (run_id, url, status_code, content_type, size, error, fetched_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(run_id, url) DO NOTHING`,
			runID, v.URL, v.StatusCode, v.ContentType, v.Size, v.Error,
			v.FetchedAt.UTC().Format("2006-01-02 15:04:05"),
		); err != nil {
			return 0, fmt.Errorf("failed to insert visit %s: %w", v.URL, err)
		}
	}

	for _, e := range report.Edges {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO edges (run_id, source, target)
			 VALUES (?, ?, ?)
			 ON CONFLICT(run_id, source, target) DO NOTHING`,
			runID, e.Source, e.Target,
		); err != nil {
			return 0, fmt.Errorf("failed to insert edge %s -> %s: %w", e.Source, e.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// RunSummary contains metadata about one archived run, used for listing and
// comparing history without loading every visit.
type RunSummary struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Domain is the crawled domain.
	Domain string

	// Seed is the canonical seed URL of the run.
	Seed string

	// Started is when the crawl began.
	Started time.Time

	// Pages is the number of visit records in the run.
	Pages int

	// Edges is the number of discovery edges in the run.
	Edges int

	// Cancelled reports whether the run was interrupted.
	Cancelled bool
}

// RecentRuns returns up to limit archived runs for a domain, newest first.
// A limit of zero or less returns all runs.
func (cdb *CrawlDB) RecentRuns(ctx context.Context, domain string, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}
	rows, err := cdb.db.QueryContext(ctx,
		`SELECT id, domain, seed, started, pages, edges, cancelled
		 FROM runs WHERE domain = ?
		 ORDER BY started DESC, id DESC LIMIT ?`,
		domain, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Close error after full read is not actionable

	var results []RunSummary
	for rows.Next() {
		var r RunSummary
		var started string
		var cancelled int
		if err := rows.Scan(&r.ID, &r.Domain, &r.Seed, &started, &r.Pages, &r.Edges, &cancelled); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Started = parseTimestamp(started)
		r.Cancelled = cancelled != 0
		results = append(results, r)
	}

	return results, rows.Err()
}

// ListDomains returns all domains present in the archive.
func (cdb *CrawlDB) ListDomains(ctx context.Context) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx,
		`SELECT DISTINCT domain FROM runs ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Close error after full read is not actionable

	var domains []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, d)
	}

	return domains, rows.Err()
}

// RunStatuses returns the URL-to-status map of one archived run.
// Transport failures appear with status 0, matching VisitRecord semantics.
func (cdb *CrawlDB) RunStatuses(ctx context.Context, runID int64) (map[string]int, error) {
	rows, err := cdb.db.QueryContext(ctx,
		`SELECT url, status_code FROM visits WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Close error after full read is not actionable

	statuses := make(map[string]int)
	for rows.Next() {
		var url string
		var status int
		if err := rows.Scan(&url, &status); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		statuses[url] = status
	}

	return statuses, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on
// configuration. Returns zero time if no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
