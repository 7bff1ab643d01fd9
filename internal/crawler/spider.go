package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/nao1215/sitegraph/internal/model"
)

// ErrSeedDisallowed is returned when robots.txt denies the seed URL itself.
// There is nothing to crawl in that case.
var ErrSeedDisallowed = errors.New("seed URL disallowed by robots.txt")

// Spider crawls a single web domain starting from a seed URL.
// It manages a work queue of URLs to visit and respects depth limits,
// robots.txt, and the fetcher's concurrency bound.
//
// Design decision: We call it "Spider" rather than "Crawler" because:
//  1. "Spider" is the traditional term for web crawlers
//  2. Distinguishes the component from the package name
//  3. Clearer in code: crawler.NewSpider() vs crawler.NewCrawler()
//
// A Spider holds only configuration; all mutable crawl state lives in a
// per-Crawl session object, so one Spider can serve concurrent independent
// crawls without interference.
type Spider struct {
	// fetcher performs HTTP requests and bounds outbound concurrency.
	fetcher *Fetcher

	// maxDepth limits how many link hops from the seed are admitted.
	// The seed is depth 0; maxDepth 1 fetches the seed and one hop.
	maxDepth int

	// maxPages optionally caps the total number of admitted URLs.
	// 0 means no cap. When set, the completeness guarantee no longer
	// holds; it is a safety valve for unexpectedly large sites.
	maxPages int

	// workers is the size of the worker pool draining the queue.
	workers int

	// agent is the user-agent product token for robots evaluation.
	agent string

	// ignoreRobots skips robots.txt entirely when true.
	ignoreRobots bool

	// logger is used for structured crawl progress logging.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the seed page, 1 = seed plus directly linked pages, etc.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages caps the total number of URLs admitted to fetch.
// 0 (the default) means unlimited.
func WithMaxPages(n int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = n
	}
}

// WithWorkers sets the worker pool size. Defaults to the fetch concurrency
// limit, which keeps the pool from idling behind the semaphore.
func WithWorkers(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithRobotsAgent sets the user-agent token used for robots.txt evaluation.
func WithRobotsAgent(agent string) SpiderOption {
	return func(s *Spider) {
		if agent != "" {
			s.agent = agent
		}
	}
}

// WithIgnoreRobots disables robots.txt evaluation for the run.
func WithIgnoreRobots(ignore bool) SpiderOption {
	return func(s *Spider) {
		s.ignoreRobots = ignore
	}
}

// WithSpiderLogger sets a custom logger.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpider creates a Spider using the given fetcher.
//
// Design decision: We require an external fetcher because:
//  1. The concurrency limit belongs to the fetch layer, not the scheduler
//  2. Consistent with the robots loader, which shares the same fetcher
//  3. Allows for different configurations in tests
func NewSpider(fetcher *Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:  fetcher,
		maxDepth: 2,
		workers:  defaultConcurrency,
		agent:    "sitegraph",
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Result holds everything a crawl run produced. Visited is both the dedup
// set (its keys) and the URL-to-record map; Graph is the site graph.
type Result struct {
	// Seed is the canonical form of the seed URL.
	Seed string

	// Domain is the host the crawl was scoped to.
	Domain string

	// Visited maps each admitted canonical URL to its visit record.
	Visited map[string]*model.VisitRecord

	// Graph is the directed graph of fetched nodes and discovery edges.
	Graph *Graph
}

// queueItem is one unit of crawl work: a canonical URL and its hop distance
// from the seed.
type queueItem struct {
	url   string
	depth int
}

// session is the mutable state of a single Crawl invocation. The visited set
// and the work queue share one mutex so that the check-and-admit step is a
// single atomic operation: two workers discovering the same URL concurrently
// can never both admit it.
type session struct {
	domain string
	policy *Policy
	graph  *Graph

	mu      sync.Mutex
	cond    *sync.Cond
	visited map[string]*model.VisitRecord
	queue   []queueItem
	pending int
	closed  bool
}

func newSession(domain string, policy *Policy) *session {
	c := &session{
		domain:  domain,
		policy:  policy,
		graph:   NewGraph(),
		visited: make(map[string]*model.VisitRecord),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// admit atomically checks the visited set and, if the URL is new (and under
// the page cap), marks it visited and enqueues it. Returns false when another
// discovery path already won.
func (c *session) admit(item queueItem, maxPages int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	if _, ok := c.visited[item.url]; ok {
		return false
	}
	if maxPages > 0 && len(c.visited) >= maxPages {
		return false
	}

	// Reserve the slot immediately; the record is completed by the worker
	// that dequeues the item.
	c.visited[item.url] = nil
	c.queue = append(c.queue, item)
	c.pending++
	c.cond.Signal()
	return true
}

// next blocks until work is available or the session is finished.
// The second return value is false when no more work will ever arrive.
func (c *session) next() (queueItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.queue) == 0 && !c.closed {
		c.cond.Wait()
	}
	if len(c.queue) == 0 {
		return queueItem{}, false
	}

	item := c.queue[0]
	c.queue = c.queue[1:]
	return item, true
}

// done marks one dequeued item as fully processed. When nothing is pending
// the session closes and all waiting workers drain out.
func (c *session) done() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending--
	if c.pending == 0 {
		c.closed = true
		c.cond.Broadcast()
	}
}

// shutdown closes the session early, waking all blocked workers. Queued but
// unfetched items are abandoned; already-created records stay valid.
func (c *session) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.queue = nil
	c.cond.Broadcast()
}

// setRecord stores the visit record for a dequeued URL. Called exactly once
// per admitted URL.
func (c *session) setRecord(rec *model.VisitRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visited[rec.URL] = rec
}

// records returns the completed visit map, dropping reservation slots for
// URLs that were admitted but never dequeued before a shutdown.
func (c *session) records() map[string]*model.VisitRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]*model.VisitRecord, len(c.visited))
	for url, rec := range c.visited {
		if rec != nil {
			out[url] = rec
		}
	}
	return out
}

// Crawl crawls the domain of seedURL up to the configured depth and returns
// the visit records and site graph.
//
// Traversal order is concurrency-dependent and unspecified; what is
// guaranteed is completeness (every reachable, in-domain, robots-allowed,
// depth-eligible URL is admitted exactly once) and at-most-once fetching per
// canonical URL. On context cancellation the partial result collected so far
// is returned together with ctx.Err().
func (s *Spider) Crawl(ctx context.Context, seedURL string) (*Result, error) {
	parsed, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("seed URL must be http or https: %q", seedURL)
	}

	seed, ok := canonicalize(parsed, parsed.String())
	if !ok {
		return nil, fmt.Errorf("seed URL not canonicalizable: %q", seedURL)
	}

	// Robots policy is loaded once, synchronously, before any scheduling;
	// afterwards it is read-only and shared by all workers.
	policy := AllowAllPolicy()
	if !s.ignoreRobots {
		policy = LoadPolicy(ctx, s.fetcher, seed, s.agent, s.logger)
	}

	sess := newSession(seed.Host, policy)
	result := &Result{
		Seed:    seed.String(),
		Domain:  seed.Host,
		Graph:   sess.graph,
		Visited: nil,
	}

	if !policy.Allowed(seed) {
		result.Visited = sess.records()
		return result, ErrSeedDisallowed
	}

	sess.admit(queueItem{url: seed.String(), depth: 0}, s.maxPages)

	// Wake blocked workers if the caller cancels; in-flight fetches abort
	// through the request context.
	stopWatch := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			sess.shutdown()
		case <-stopWatch:
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				item, ok := sess.next()
				if !ok {
					return
				}
				s.process(ctx, sess, item)
				sess.done()
			}
		}()
	}

	wg.Wait()
	close(stopWatch)

	result.Visited = sess.records()

	s.logger.Info("crawl finished",
		"domain", sess.domain,
		"pages", len(result.Visited),
		"nodes", sess.graph.NodeCount(),
		"edges", sess.graph.EdgeCount(),
	)

	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	return result, nil
}

// process fetches one admitted URL, records the visit, inserts the graph
// node, and expands in-domain links discovered on the page.
func (s *Spider) process(ctx context.Context, sess *session, item queueItem) {
	rec := &model.VisitRecord{
		URL:       item.url,
		FetchedAt: time.Now(),
	}
	sess.setRecord(rec)

	res, err := s.fetcher.Fetch(ctx, item.url)
	if err != nil {
		// Transport failure: terminal for this URL, never for the crawl.
		rec.Error = err.Error()
		sess.graph.AddNode(item.url, pathLabel(item.url), nodeSummary(rec))
		s.logger.Debug("fetch failed", "url", item.url, "error", err)
		return
	}

	rec.StatusCode = res.StatusCode
	rec.ContentType = res.ContentType
	rec.Size = int64(len(res.Body))
	rec.Body = res.Body

	// The node is inserted at fetch completion regardless of status, so the
	// graph also shows error pages and non-HTML resources.
	sess.graph.AddNode(item.url, pathLabel(item.url), nodeSummary(rec))

	if !rec.IsSuccess() || !rec.IsHTML() {
		rec.ReleaseBody()
		return
	}

	s.expand(sess, item, res)
	rec.ReleaseBody()
}

// expand extracts links from an HTML page and schedules eligible targets.
// Edges are recorded for every discovered candidate before any filtering, so
// the graph reflects all observed link relationships even when the target is
// already visited, beyond the depth bound, or robots-denied.
func (s *Spider) expand(sess *session, item queueItem, res *FetchResult) {
	extractor, err := NewLinkExtractor(res.FinalURL, sess.domain)
	if err != nil {
		extractor, err = NewLinkExtractor(item.url, sess.domain)
		if err != nil {
			return
		}
	}

	links := extractor.Extract(res.Body)
	childDepth := item.depth + 1

	for _, link := range links {
		sess.graph.AddEdge(item.url, link)

		if childDepth > s.maxDepth {
			continue
		}

		target, err := url.Parse(link)
		if err != nil {
			continue
		}
		// A robots-denied URL is neither fetched nor marked visited, so it
		// stays eligible for (cheap) re-evaluation when referenced again.
		if !sess.policy.Allowed(target) {
			continue
		}

		sess.admit(queueItem{url: link, depth: childDepth}, s.maxPages)
	}
}

// nodeSummary renders the status/type annotation attached to graph nodes.
func nodeSummary(rec *model.VisitRecord) string {
	contentType := rec.ContentType
	if contentType == "" {
		contentType = "unknown"
	}
	return fmt.Sprintf("Status: %d / Type: %s", rec.StatusCode, contentType)
}
