package model

import (
	"strings"
	"time"
)

// VisitRecord is the result of fetching one canonical URL.
// Exactly one record exists per URL admitted to fetch in a crawl run.
// It is created when the URL is dequeued for fetching and, once the fetch
// completes, never mutated again.
//
// Design decision: We record failed fetches too rather than dropping them
// because the site graph should show broken links and unreachable resources.
// A transport failure is encoded as StatusCode 0 plus an Error message.
type VisitRecord struct {
	// URL is the canonical URL that was fetched.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	// 0 means the fetch failed at the transport level (DNS, connect,
	// timeout, TLS); see Error for details.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type from the Content-Type header.
	ContentType string `json:"content_type,omitempty"`

	// Size is the response body size in bytes after the read cap.
	Size int64 `json:"size"`

	// FetchedAt is when the URL was dequeued for fetching.
	FetchedAt time.Time `json:"fetched_at"`

	// Error is the transport error message for failed fetches.
	Error string `json:"error,omitempty"`

	// Body holds the raw response body. It is only retained while link
	// extraction still needs it and is released afterwards, so it is
	// excluded from JSON output.
	Body []byte `json:"-"`
}

// Failed reports whether the fetch failed at the transport level.
func (v *VisitRecord) Failed() bool {
	return v.StatusCode == 0
}

// IsSuccess reports whether the fetch returned HTTP 200.
func (v *VisitRecord) IsSuccess() bool {
	return v.StatusCode == 200
}

// IsHTML reports whether the content type indicates an HTML document.
// Content-Type values often carry a charset suffix ("text/html; charset=utf-8"),
// so we match on the media type prefix rather than exact equality.
func (v *VisitRecord) IsHTML() bool {
	return strings.Contains(v.ContentType, "text/html") ||
		strings.Contains(v.ContentType, "application/xhtml+xml")
}

// ReleaseBody drops the raw body once extraction no longer needs it.
// All other fields stay untouched so the record remains a valid crawl result.
func (v *VisitRecord) ReleaseBody() {
	v.Body = nil
}
