package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidWorkers   = errors.New("invalid worker count")
	ErrInvalidBatchSize = errors.New("invalid batch size")
	ErrInvalidByteLimit = errors.New("invalid max file byte limit")
	ErrEmptyStorePath   = errors.New("empty store path")
	ErrInvalidDebounce  = errors.New("invalid watch debounce")
)

// Validate checks that cfg is complete and internally consistent.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Ingest.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidWorkers, cfg.Ingest.Workers))
	}
	if cfg.Ingest.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: batch_size must be positive, got %d", ErrInvalidBatchSize, cfg.Ingest.BatchSize))
	}
	if cfg.Paths.MaxFileBytes < 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_bytes cannot be negative, got %d", ErrInvalidByteLimit, cfg.Paths.MaxFileBytes))
	}
	if strings.TrimSpace(cfg.Store.Path) == "" {
		errs = append(errs, fmt.Errorf("%w: store.path is required", ErrEmptyStorePath))
	}
	if cfg.Watch.DebounceMillis < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_millis cannot be negative, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMillis))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
