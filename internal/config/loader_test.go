package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeConfigFile writes content to a temp config file and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// TestLoadConfigFile tests YAML config loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads sites and defaults", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, `
defaults:
  depth: 2
  userAgent: "default-agent/1.0"
sites:
  example.com:
    depth: 4
    headers:
      Authorization: "Bearer token"
  example.org:
    ignoreRobots: true
    maxPages: 50
`)

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if cf.Defaults.Depth != 2 {
			t.Errorf("expected default depth 2, got %d", cf.Defaults.Depth)
		}
		if len(cf.Sites) != 2 {
			t.Errorf("expected 2 sites, got %d", len(cf.Sites))
		}
		if cf.Sites["example.com"].Depth != 4 {
			t.Errorf("expected site depth 4, got %d", cf.Sites["example.com"].Depth)
		}
		if !cf.Sites["example.org"].IgnoreRobots {
			t.Error("expected ignoreRobots true for example.org")
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml returns an error", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, "sites: [not a map")
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected an error for invalid yaml")
		}
	})

	t.Run("empty file yields empty site map", func(t *testing.T) {
		t.Parallel()

		cf, err := LoadConfigFile(writeConfigFile(t, ""))
		if err != nil {
			t.Fatalf("failed to load empty config: %v", err)
		}
		if cf.Sites == nil {
			t.Error("expected a non-nil site map")
		}
	})
}

// TestFindConfigFile tests the search order.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path is returned", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, "sites: {}")
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}

// TestGetSiteConfig tests defaults merging.
func TestGetSiteConfig(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: SiteConfig{
			Depth:     2,
			UserAgent: "default-agent/1.0",
			Headers:   map[string]string{"X-Default": "yes"},
		},
		Sites: map[string]SiteConfig{
			"example.com": {
				Depth:   5,
				Headers: map[string]string{"Authorization": "Bearer token"},
			},
		},
	}

	t.Run("site overrides win, gaps fall back to defaults", func(t *testing.T) {
		t.Parallel()

		sc := cf.GetSiteConfig("example.com")
		if sc.Depth != 5 {
			t.Errorf("expected site depth 5, got %d", sc.Depth)
		}
		if sc.UserAgent != "default-agent/1.0" {
			t.Errorf("expected default user agent, got %q", sc.UserAgent)
		}
		if sc.Headers["Authorization"] != "Bearer token" || sc.Headers["X-Default"] != "yes" {
			t.Errorf("expected merged headers, got %v", sc.Headers)
		}
	})

	t.Run("merging does not mutate defaults", func(t *testing.T) {
		t.Parallel()

		_ = cf.GetSiteConfig("example.com")
		if _, leaked := cf.Defaults.Headers["Authorization"]; leaked {
			t.Error("expected defaults headers to stay untouched")
		}
	})

	t.Run("unknown site gets defaults", func(t *testing.T) {
		t.Parallel()

		sc := cf.GetSiteConfig("unknown.example")
		if sc.Depth != 2 || sc.UserAgent != "default-agent/1.0" {
			t.Errorf("expected plain defaults, got %+v", sc)
		}
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		t.Parallel()

		if sc := cf.GetSiteConfig("EXAMPLE.com"); sc.Depth != 5 {
			t.Errorf("expected case-insensitive site match, got depth %d", sc.Depth)
		}
	})
}
