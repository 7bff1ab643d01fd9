package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/nao1215/sitegraph/internal/crawler"
	"github.com/nao1215/sitegraph/internal/database"
	"github.com/nao1215/sitegraph/internal/model"
)

// CrawlStep runs the spider for the report's seed and fills in the visit
// records and site graph.
type CrawlStep struct {
	// spider performs the crawl. Each step owns its spider; crawl state
	// itself lives inside the Crawl invocation, so a spider is reusable.
	spider *crawler.Spider

	// maxDepth is recorded into the report for display and archiving.
	maxDepth int
}

// NewCrawlStep creates a CrawlStep.
func NewCrawlStep(spider *crawler.Spider, maxDepth int) *CrawlStep {
	return &CrawlStep{spider: spider, maxDepth: maxDepth}
}

// Name returns the step name.
func (s *CrawlStep) Name() string { return "crawl" }

// Do executes the crawl and stores its outcome in the report.
//
// Cancellation is not an error at this level: the partial result is recorded
// and the Cancelled flag set, so later steps can still summarize and archive
// what was gathered.
func (s *CrawlStep) Do(ctx context.Context, report *model.CrawlReport) error {
	start := time.Now()

	result, err := s.spider.Crawl(ctx, report.Seed)
	if result != nil {
		report.Seed = result.Seed
		report.Domain = result.Domain
		report.MaxDepth = s.maxDepth
		report.Visits = result.Visited
		report.Nodes = result.Graph.Nodes()
		report.Edges = result.Graph.Edges()
	}
	report.Elapsed = time.Since(start)

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		report.Cancelled = true
		return nil
	}
	return err
}

// SummarizeStep computes the aggregate counts for a finished crawl.
type SummarizeStep struct{}

// NewSummarizeStep creates a SummarizeStep.
func NewSummarizeStep() *SummarizeStep { return &SummarizeStep{} }

// Name returns the step name.
func (s *SummarizeStep) Name() string { return "summarize" }

// Do fills the report's Summary from its visits and edges.
func (s *SummarizeStep) Do(_ context.Context, report *model.CrawlReport) error {
	report.Summary = model.NewSummary(report)
	return nil
}

// PersistStep archives the finished report in the run database.
type PersistStep struct {
	db *database.CrawlDB
}

// NewPersistStep creates a PersistStep writing to db.
func NewPersistStep(db *database.CrawlDB) *PersistStep {
	return &PersistStep{db: db}
}

// Name returns the step name.
func (s *PersistStep) Name() string { return "persist" }

// Do saves the run. A nil database makes the step a no-op so the pipeline
// shape stays the same whether archiving is enabled or not.
func (s *PersistStep) Do(ctx context.Context, report *model.CrawlReport) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.SaveRun(ctx, report)
	return err
}
