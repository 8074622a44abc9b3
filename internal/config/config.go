// Package config loads protolink settings from .protolink/config.yml with
// PROTOLINK_* environment overrides.
package config

import (
	"time"
)

// Config represents the complete protolink configuration.
type Config struct {
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Watch  WatchConfig  `yaml:"watch" mapstructure:"watch"`
}

// CacheConfig bounds the file-content cache.
type CacheConfig struct {
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`           // entries older than this are re-read
	Capacity int           `yaml:"capacity" mapstructure:"capacity"` // oldest entry is evicted past this
}

// SearchConfig tunes resolution.
type SearchConfig struct {
	BatchSize   int    `yaml:"batch_size" mapstructure:"batch_size"`     // files read concurrently per batch
	Language    string `yaml:"language" mapstructure:"language"`         // implementation language key
	MatchPolicy string `yaml:"match_policy" mapstructure:"match_policy"` // "union" or "precision"
}

// PathsConfig defines which files are searched and which are ignored.
type PathsConfig struct {
	Proto  []string `yaml:"proto" mapstructure:"proto"`   // glob patterns for definition files
	Go     []string `yaml:"go" mapstructure:"go"`         // glob patterns for implementation files
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns to ignore
}

// WatchConfig configures the change watcher used by the MCP server.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			TTL:      60 * time.Second,
			Capacity: 1000,
		},
		Search: SearchConfig{
			BatchSize:   20,
			Language:    "go",
			MatchPolicy: "union",
		},
		Paths: PathsConfig{
			Proto: []string{"**/*.proto"},
			Go:    []string{"**/*.go"},
			Ignore: []string{
				"vendor/**",
				"**/vendor/**",
				".git/**",
				"node_modules/**",
			},
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 500 * time.Millisecond,
		},
	}
}

// WatchExtensions extracts unique file extensions from the proto and Go
// patterns, with a leading dot.
func (c *Config) WatchExtensions() []string {
	seen := make(map[string]bool)
	var extensions []string
	for _, pattern := range append(append([]string{}, c.Paths.Proto...), c.Paths.Go...) {
		if ext := extractExtension(pattern); ext != "" && !seen[ext] {
			seen[ext] = true
			extensions = append(extensions, ext)
		}
	}
	return extensions
}

// extractExtension extracts the file extension from a glob pattern.
// Examples: "**/*.go" -> ".go", "api/*.proto" -> ".proto"
func extractExtension(pattern string) string {
	for i := len(pattern) - 1; i >= 1; i-- {
		if pattern[i] == '.' && pattern[i-1] == '*' {
			return pattern[i:]
		}
	}
	return ""
}
