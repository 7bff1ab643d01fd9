package crawler

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/temoto/robotstxt"
)

// Policy answers whether the crawler may fetch a given URL under the site's
// robots.txt rules. It is loaded once at the start of a run, is immutable
// afterwards, and can be shared freely across workers.
//
// A nil rule set means "allow everything": robots.txt being absent or
// malformed must not stop a crawl.
type Policy struct {
	// data is the parsed robots.txt rule set. Nil allows everything.
	data *robotstxt.RobotsData

	// agent is the user-agent product token the rules are evaluated for.
	agent string
}

// AllowAllPolicy returns a permissive policy. Used when robots.txt cannot be
// loaded and when the user opts out of robots evaluation.
func AllowAllPolicy() *Policy {
	return &Policy{}
}

// LoadPolicy fetches and parses robots.txt for the seed's host.
//
// Failure to fetch or parse is non-fatal by design: the crawl must proceed,
// so every failure path degrades to a permissive policy and logs a warning.
// Only an HTTP 200 body is parsed; 4xx/5xx responses are treated the same as
// a missing file.
func LoadPolicy(ctx context.Context, fetcher *Fetcher, seed *url.URL, agent string, logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}

	robotsURL := &url.URL{Scheme: seed.Scheme, Host: seed.Host, Path: "/robots.txt"}

	res, err := fetcher.Fetch(ctx, robotsURL.String())
	if err != nil {
		logger.Warn("robots.txt fetch failed, crawling without restrictions",
			"url", robotsURL.String(),
			"error", err,
		)
		return &Policy{agent: agent}
	}
	if res.StatusCode != 200 {
		logger.Debug("robots.txt not available, crawling without restrictions",
			"url", robotsURL.String(),
			"status", res.StatusCode,
		)
		return &Policy{agent: agent}
	}

	data, err := robotstxt.FromBytes(res.Body)
	if err != nil {
		logger.Warn("robots.txt parse failed, crawling without restrictions",
			"url", robotsURL.String(),
			"error", err,
		)
		return &Policy{agent: agent}
	}

	return &Policy{data: data, agent: agent}
}

// Allowed reports whether the policy permits fetching u. It is a pure
// function of the policy and the URL's path, independent of crawl order.
func (p *Policy) Allowed(u *url.URL) bool {
	if p == nil || p.data == nil {
		return true
	}

	group := p.data.FindGroup(p.agent)
	if group == nil {
		group = p.data.FindGroup("*")
	}
	if group == nil {
		return true
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}
