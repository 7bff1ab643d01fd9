package crawler

import (
	"net/url"
	"testing"
)

// TestCanonicalize tests URL canonicalization rules.
func TestCanonicalize(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://example.com/docs/page")
	if err != nil {
		t.Fatalf("failed to parse base URL: %v", err)
	}

	t.Run("query parameter order does not matter", func(t *testing.T) {
		t.Parallel()

		a, okA := Canonicalize(base, "https://example.com/p?b=2&a=1")
		b, okB := Canonicalize(base, "https://example.com/p?a=1&b=2")
		if !okA || !okB {
			t.Fatalf("expected both URLs to canonicalize, got %v %v", okA, okB)
		}
		if a != b {
			t.Errorf("expected identical canonical forms, got %q and %q", a, b)
		}
	})

	t.Run("repeated key values are sorted", func(t *testing.T) {
		t.Parallel()

		a, _ := Canonicalize(base, "https://example.com/p?k=z&k=a")
		b, _ := Canonicalize(base, "https://example.com/p?k=a&k=z")
		if a != b {
			t.Errorf("expected identical canonical forms, got %q and %q", a, b)
		}
	})

	t.Run("empty path becomes root", func(t *testing.T) {
		t.Parallel()

		got, ok := Canonicalize(base, "https://example.com")
		if !ok {
			t.Fatal("expected URL to canonicalize")
		}
		if got != "https://example.com/" {
			t.Errorf("expected https://example.com/, got %q", got)
		}
	})

	t.Run("trailing slash on non-root path is preserved", func(t *testing.T) {
		t.Parallel()

		withSlash, _ := Canonicalize(base, "https://example.com/docs/")
		withoutSlash, _ := Canonicalize(base, "https://example.com/docs")
		if withSlash == withoutSlash {
			t.Errorf("expected /docs and /docs/ to stay distinct, both canonicalized to %q", withSlash)
		}
	})

	t.Run("scheme and host are lower-cased", func(t *testing.T) {
		t.Parallel()

		got, ok := Canonicalize(base, "HTTPS://EXAMPLE.COM/Path")
		if !ok {
			t.Fatal("expected URL to canonicalize")
		}
		if got != "https://example.com/Path" {
			t.Errorf("expected host lowercased and path untouched, got %q", got)
		}
	})

	t.Run("fragment is removed", func(t *testing.T) {
		t.Parallel()

		got, ok := Canonicalize(base, "https://example.com/page#section")
		if !ok {
			t.Fatal("expected URL to canonicalize")
		}
		if got != "https://example.com/page" {
			t.Errorf("expected fragment stripped, got %q", got)
		}
	})

	t.Run("relative references resolve against base", func(t *testing.T) {
		t.Parallel()

		got, ok := Canonicalize(base, "../about")
		if !ok {
			t.Fatal("expected URL to canonicalize")
		}
		if got != "https://example.com/about" {
			t.Errorf("expected https://example.com/about, got %q", got)
		}
	})

	t.Run("filtered schemes yield no URL", func(t *testing.T) {
		t.Parallel()

		for _, ref := range []string{
			"mailto:user@example.com",
			"tel:+1234567890",
			"javascript:void(0)",
			"data:text/plain;base64,aGk=",
		} {
			if _, ok := Canonicalize(base, ref); ok {
				t.Errorf("expected %q to be filtered", ref)
			}
		}
	})

	t.Run("empty and fragment-only references are filtered", func(t *testing.T) {
		t.Parallel()

		for _, ref := range []string{"", "  ", "#", "#top"} {
			got, ok := Canonicalize(base, ref)
			if ref == "#top" {
				// Fragment-only references resolve to the base page itself.
				if !ok || got != "https://example.com/docs/page" {
					t.Errorf("expected #top to resolve to the base page, got %q %v", got, ok)
				}
				continue
			}
			if ok {
				t.Errorf("expected %q to be filtered, got %q", ref, got)
			}
		}
	})

	t.Run("unparseable query is kept as-is", func(t *testing.T) {
		t.Parallel()

		got, ok := Canonicalize(base, "https://example.com/p?a=%zz")
		if !ok {
			t.Fatal("expected URL to canonicalize")
		}
		if got != "https://example.com/p?a=%zz" {
			t.Errorf("expected raw query preserved, got %q", got)
		}
	})
}

// TestPathLabel tests the display label truncation.
func TestPathLabel(t *testing.T) {
	t.Parallel()

	t.Run("short path is unchanged", func(t *testing.T) {
		t.Parallel()

		if got := pathLabel("https://example.com/docs"); got != "/docs" {
			t.Errorf("expected /docs, got %q", got)
		}
	})

	t.Run("long path is truncated with marker", func(t *testing.T) {
		t.Parallel()

		got := pathLabel("https://example.com/very/long/path/that/keeps/going/and/going")
		if len([]rune(got)) != 33 { // 30 runes plus "..."
			t.Errorf("expected 33-rune label, got %d runes: %q", len([]rune(got)), got)
		}
	})

	t.Run("root path for bare host", func(t *testing.T) {
		t.Parallel()

		if got := pathLabel("https://example.com/"); got != "/" {
			t.Errorf("expected /, got %q", got)
		}
	})
}
