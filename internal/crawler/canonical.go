package crawler

import (
	"net/url"
	"sort"
	"strings"
)

// skippedSchemes are reference schemes that are deliberately filtered during
// canonicalization. They appear in markup but never name a fetchable resource.
var skippedSchemes = map[string]bool{
	"mailto":     true,
	"tel":        true,
	"javascript": true,
	"data":       true,
}

// Canonicalize resolves ref against base and returns the canonical string
// identity for the resulting absolute URL. The second return value is false
// when the reference is not a crawlable link (unresolvable, or one of the
// filtered schemes); this is a filter outcome, not an error.
//
// Canonical form: lower-cased scheme and host, the empty path replaced by "/",
// query parameters sorted by (key, value), and no fragment. Trailing slashes
// on non-root paths are preserved: "/docs" and "/docs/" are distinct
// resources, and only the empty path is normalized.
//
// Design decision: Sorting the query is the only transformation that changes
// the serialized order versus the incoming reference. It exists so that two
// references differing only in parameter order dedup to the same identity.
// We intentionally do NOT collapse URLs that share host+path but differ in
// query string; that would silently merge distinct paginated or parameterized
// resources.
func Canonicalize(base *url.URL, ref string) (string, bool) {
	u, ok := canonicalize(base, ref)
	if !ok {
		return "", false
	}
	return u.String(), true
}

// canonicalize is the *url.URL form of Canonicalize, used internally where
// the caller still needs structured access (host comparison, robots checks).
func canonicalize(base *url.URL, ref string) (*url.URL, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "#" {
		return nil, false
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return nil, false
	}

	u := base.ResolveReference(parsed)
	if skippedSchemes[strings.ToLower(u.Scheme)] {
		return nil, false
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, false
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	u.RawQuery = canonicalQuery(u.RawQuery)
	u.Fragment = ""
	u.RawFragment = ""

	return u, true
}

// canonicalQuery re-serializes a query string with parameters sorted by
// (key, value) using ordinal comparison. An unparseable query is kept as-is;
// it still yields a stable identity, just without order-insensitivity.
func canonicalQuery(raw string) string {
	if raw == "" {
		return ""
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return raw
	}

	// url.Values.Encode sorts keys; sorting each key's values makes the
	// full (key, value) pair order deterministic.
	for _, vs := range values {
		sort.Strings(vs)
	}
	return values.Encode()
}

// pathLabel returns a short display label for a canonical URL: its path,
// truncated to 30 runes with an ellipsis marker.
func pathLabel(canonical string) string {
	path := "/"
	if u, err := url.Parse(canonical); err == nil && u.Path != "" {
		path = u.Path
	}

	const maxLabel = 30
	runes := []rune(path)
	if len(runes) > maxLabel {
		return string(runes[:maxLabel]) + "..."
	}
	return path
}
