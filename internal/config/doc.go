// Package config provides configuration management for sitegraph.
//
// Configuration comes from three layers, in increasing precedence:
//   - Built-in defaults (the Default* constants)
//   - The optional .sitegraph YAML file with per-site overrides
//   - CLI flags
//
// The Config struct is populated once at startup, validated with
// Config.Validate, and passed to components via dependency injection.
// No global configuration state exists.
package config
