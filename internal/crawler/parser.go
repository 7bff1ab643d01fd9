package crawler

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// LinkExtractor turns a fetched HTML document into the set of in-domain
// canonical URLs it references.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Its parser never fails on bad markup, it just builds a best-effort tree,
//     which matches the "fewer links, never abort" error contract
//  3. Standard library extension, well-maintained
type LinkExtractor struct {
	// base is the page's final (post-redirect) URL, used for resolving
	// relative references.
	base *url.URL

	// domain is the lower-cased host the crawl is scoped to. References
	// canonicalizing to any other host are discarded.
	domain string
}

// NewLinkExtractor creates an extractor for a page fetched from baseURL,
// scoped to targetDomain.
func NewLinkExtractor(baseURL, targetDomain string) (*LinkExtractor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &LinkExtractor{base: u, domain: strings.ToLower(targetDomain)}, nil
}

// Extract returns the unique in-domain canonical URLs referenced by body, in
// document order. A document that cannot be parsed at all yields zero links;
// individual elements with unusable references are skipped.
func (e *LinkExtractor) Extract(body []byte) []string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		// html.Parse only fails on reader errors, but the contract is the
		// same either way: a broken document contributes no links.
		return nil
	}

	seen := make(map[string]bool)
	links := make([]string, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if ref := referenceAttr(n); ref != "" {
				if canonical, ok := e.canonicalInDomain(ref); ok && !seen[canonical] {
					seen[canonical] = true
					links = append(links, canonical)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links
}

// canonicalInDomain canonicalizes ref against the page URL and keeps it only
// when it stays on the crawl domain.
func (e *LinkExtractor) canonicalInDomain(ref string) (string, bool) {
	u, ok := canonicalize(e.base, ref)
	if !ok {
		return "", false
	}
	if u.Host != e.domain {
		return "", false
	}
	return u.String(), true
}

// referenceAttr returns the reference-carrying attribute for elements capable
// of linking to another resource: href on anchors and link elements, src on
// scripts and images, action on forms.
func referenceAttr(n *html.Node) string {
	switch n.Data {
	case "a", "link":
		return getAttr(n, "href")
	case "script", "img":
		return getAttr(n, "src")
	case "form":
		return getAttr(n, "action")
	}
	return ""
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
