package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a loader that looks for .protolink/config.yml under
// rootDir. A non-empty configFile is used instead and must exist.
func NewLoader(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (PROTOLINK_*)
// 2. Config file (.protolink/config.yml or .protolink/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".protolink"))
	}

	// PROTOLINK_CACHE_TTL, PROTOLINK_SEARCH_BATCH_SIZE, ...
	v.SetEnvPrefix("PROTOLINK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"cache.ttl",
		"cache.capacity",
		"search.batch_size",
		"search.language",
		"search.match_policy",
		"watch.enabled",
		"watch.debounce",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit file must exist; the default location is optional
		if l.configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("cache.ttl", defaults.Cache.TTL)
	v.SetDefault("cache.capacity", defaults.Cache.Capacity)

	v.SetDefault("search.batch_size", defaults.Search.BatchSize)
	v.SetDefault("search.language", defaults.Search.Language)
	v.SetDefault("search.match_policy", defaults.Search.MatchPolicy)

	v.SetDefault("paths.proto", defaults.Paths.Proto)
	v.SetDefault("paths.go", defaults.Paths.Go)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("watch.enabled", defaults.Watch.Enabled)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir, "").Load()
}
