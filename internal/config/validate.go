package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/protolink/internal/workspace"
)

var (
	// ErrInvalidCacheSettings indicates a non-positive TTL or capacity
	ErrInvalidCacheSettings = errors.New("invalid cache settings")

	// ErrInvalidBatchSize indicates a non-positive batch size
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrEmptyLanguage indicates a missing implementation language
	ErrEmptyLanguage = errors.New("empty search language")

	// ErrInvalidMatchPolicy indicates an unknown match policy
	ErrInvalidMatchPolicy = errors.New("invalid match policy")

	// ErrEmptyPatterns indicates missing include globs
	ErrEmptyPatterns = errors.New("empty path patterns")

	// ErrInvalidPattern indicates a glob that does not compile
	ErrInvalidPattern = errors.New("invalid path pattern")

	// ErrInvalidDebounce indicates a negative debounce period
	ErrInvalidDebounce = errors.New("invalid watch debounce")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateCache(&cfg.Cache); err != nil {
		errs = append(errs, err)
	}
	if err := validateSearch(&cfg.Search); err != nil {
		errs = append(errs, err)
	}
	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}
	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce cannot be negative, got %s", ErrInvalidDebounce, cfg.Watch.Debounce))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateCache(cfg *CacheConfig) error {
	var errs []error

	if cfg.TTL <= 0 {
		errs = append(errs, fmt.Errorf("%w: ttl must be positive, got %s", ErrInvalidCacheSettings, cfg.TTL))
	}
	if cfg.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidCacheSettings, cfg.Capacity))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateSearch(cfg *SearchConfig) error {
	var errs []error

	if cfg.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: batch_size must be positive, got %d", ErrInvalidBatchSize, cfg.BatchSize))
	}
	if strings.TrimSpace(cfg.Language) == "" {
		errs = append(errs, fmt.Errorf("%w: language is required", ErrEmptyLanguage))
	}
	switch strings.ToLower(cfg.MatchPolicy) {
	case "", "union", "precision":
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'union' or 'precision', got '%s'", ErrInvalidMatchPolicy, cfg.MatchPolicy))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	if len(cfg.Proto) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one proto pattern required", ErrEmptyPatterns))
	}
	if len(cfg.Go) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one go pattern required", ErrEmptyPatterns))
	}

	for _, set := range []struct {
		name     string
		patterns []string
	}{{"proto", cfg.Proto}, {"go", cfg.Go}, {"ignore", cfg.Ignore}} {
		if err := workspace.CompileGlobs(set.patterns); err != nil {
			errs = append(errs, fmt.Errorf("%w: paths.%s: %v", ErrInvalidPattern, set.name, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear
// formatting. The result still matches every sentinel with errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return &validationError{errs: errs}
}

type validationError struct {
	errs []error
}

func (e *validationError) Error() string {
	msgs := make([]string, len(e.errs))
	for i, err := range e.errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e *validationError) Unwrap() []error {
	return e.errs
}
