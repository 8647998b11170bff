// Package config loads broker configuration from .rlm/config.yml with
// RLM_* environment variable overrides, using the same viper-based
// precedence the teacher's own internal/config package follows: defaults,
// then config file, then environment (env wins).
package config

type Config struct {
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Ingest IngestConfig `yaml:"ingest" mapstructure:"ingest"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Watch  WatchConfig  `yaml:"watch" mapstructure:"watch"`
}

// PathsConfig controls which files the Path Walker visits (spec §4.1).
type PathsConfig struct {
	IgnoreGlobs  []string `yaml:"ignore_globs" mapstructure:"ignore_globs"`
	IgnoreFile   string   `yaml:"ignore_file" mapstructure:"ignore_file"`
	MaxFileBytes int64    `yaml:"max_file_bytes" mapstructure:"max_file_bytes"`
}

// IngestConfig controls the Ingestion Pipeline's concurrency (spec §4.4/§5).
type IngestConfig struct {
	Workers   int `yaml:"workers" mapstructure:"workers"`
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size"`
}

// StoreConfig locates the Chunk Store's on-disk database (spec §6).
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// WatchConfig controls optional live-reindex mode (SPEC_FULL.md's
// fsnotify-backed addition over the base spec).
type WatchConfig struct {
	Enabled        bool  `yaml:"enabled" mapstructure:"enabled"`
	DebounceMillis int64 `yaml:"debounce_millis" mapstructure:"debounce_millis"`
}

// Default returns the configuration used when no .rlm/config.yml exists and
// no RLM_* environment variable overrides a field.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			IgnoreGlobs: []string{
				"node_modules/**", "vendor/**", ".git/**", "dist/**",
				"build/**", "target/**", "__pycache__/**",
			},
			IgnoreFile:   ".gitignore",
			MaxFileBytes: 5 * 1024 * 1024,
		},
		Ingest: IngestConfig{
			Workers:   4,
			BatchSize: 64,
		},
		Store: StoreConfig{
			Path: ".rlm/index.db",
		},
		Watch: WatchConfig{
			Enabled:        false,
			DebounceMillis: 500,
		},
	}
}
