package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/teamcutter/fetchr/internal/domain"
)

type Config struct {
	Workers        int    `toml:"workers"`
	ChunkSize      int    `toml:"chunk_size"`
	AutoExtract    bool   `toml:"auto_extract"`
	DeleteOriginal bool   `toml:"delete_original_after_extraction"`
	Cache          bool   `toml:"cache"`
	TargetDir      string `toml:"target_directory"`
	FailFast       bool   `toml:"fail_fast"`
	Verbose        int    `toml:"verbose"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	ReportDB       string `toml:"report_db"`
}

func DefaultConfig() *Config {
	return &Config{
		Workers:        -1,
		ChunkSize:      32768,
		AutoExtract:    true,
		Cache:          true,
		TargetDir:      "downloads",
		FailFast:       true,
		Verbose:        1,
		TimeoutSeconds: int(time.Hour / time.Second),
	}
}

// DefaultPath returns ~/.fetchr/config.toml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".fetchr", "config.toml")
	}
	return filepath.Join(home, ".fetchr", "config.toml")
}

// Load decodes the file at path over the defaults. A missing file yields the
// defaults; an empty path means DefaultPath.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrConfiguration, path, err)
	}

	return cfg, nil
}

func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
