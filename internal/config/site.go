package config

import "strings"

// SiteConfig holds site-specific configuration for a single domain.
// This allows customizing crawl behavior per site from the config file.
type SiteConfig struct {
	// Depth overrides the global crawl depth for this site.
	// If zero, the global depth is used.
	Depth int `yaml:"depth,omitempty"`

	// UserAgent overrides the User-Agent header for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// IgnoreRobots skips robots.txt evaluation for this site.
	IgnoreRobots bool `yaml:"ignoreRobots,omitempty"`

	// MaxPages overrides the global page cap for this site.
	MaxPages int `yaml:"maxPages,omitempty"`
}

// File represents the structure of the .sitegraph configuration file.
type File struct {
	// Sites maps domains to their site-specific configurations.
	// Keys are bare hosts (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific domain.
// It merges the site-specific configuration with the file's defaults.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	merged := cf.Defaults

	site, ok := cf.Sites[strings.ToLower(domain)]
	if !ok {
		return merged
	}

	if site.Depth != 0 {
		merged.Depth = site.Depth
	}
	if site.UserAgent != "" {
		merged.UserAgent = site.UserAgent
	}
	if site.MaxPages != 0 {
		merged.MaxPages = site.MaxPages
	}
	if site.IgnoreRobots {
		merged.IgnoreRobots = true
	}
	if len(site.Headers) > 0 {
		// Copy instead of writing through, so defaults stay untouched.
		headers := make(map[string]string, len(cf.Defaults.Headers)+len(site.Headers))
		for k, v := range cf.Defaults.Headers {
			headers[k] = v
		}
		for k, v := range site.Headers {
			headers[k] = v
		}
		merged.Headers = headers
	}

	return merged
}
