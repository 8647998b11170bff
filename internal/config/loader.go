package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader loads configuration from .rlm/config.yml and the environment.
type Loader interface {
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a configuration loader rooted at rootDir.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load loads configuration with the following priority (highest to
// lowest): environment variables (RLM_*), then .rlm/config.yml, then
// Default().
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".rlm")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("RLM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("paths.ignore_file")
	v.BindEnv("paths.max_file_bytes")
	v.BindEnv("ingest.workers")
	v.BindEnv("ingest.batch_size")
	v.BindEnv("store.path")
	v.BindEnv("watch.enabled")
	v.BindEnv("watch.debounce_millis")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("paths.ignore_globs", d.Paths.IgnoreGlobs)
	v.SetDefault("paths.ignore_file", d.Paths.IgnoreFile)
	v.SetDefault("paths.max_file_bytes", d.Paths.MaxFileBytes)

	v.SetDefault("ingest.workers", d.Ingest.Workers)
	v.SetDefault("ingest.batch_size", d.Ingest.BatchSize)

	v.SetDefault("store.path", d.Store.Path)

	v.SetDefault("watch.enabled", d.Watch.Enabled)
	v.SetDefault("watch.debounce_millis", d.Watch.DebounceMillis)
}

// LoadFromDir is a convenience wrapper for NewLoader(rootDir).Load().
func LoadFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
