package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)
	normalize(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Scan.Dir) == "" {
		cfg.Scan.Dir = "."
	}
	if strings.TrimSpace(cfg.Scan.Include) == "" {
		cfg.Scan.Include = "*.txt"
	}
	if len(cfg.Parser.ReferenceMarkers) == 0 {
		cfg.Parser.ReferenceMarkers = []string{"-r"}
	}
	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = FormatTree
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MinInterval == 0 {
		cfg.Watch.MinInterval = time.Second
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "data/reqcheck-history.db"
	}
}

func normalize(cfg *Config) {
	cfg.Scan.Dir = strings.TrimSpace(cfg.Scan.Dir)
	cfg.Scan.Include = strings.TrimSpace(cfg.Scan.Include)
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	cfg.Observability.MetricsAddr = strings.TrimSpace(cfg.Observability.MetricsAddr)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)

	excludes := make([]string, 0, len(cfg.Scan.Exclude))
	for _, pattern := range cfg.Scan.Exclude {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		excludes = append(excludes, pattern)
	}
	cfg.Scan.Exclude = excludes

	markers := make([]string, 0, len(cfg.Parser.ReferenceMarkers))
	for _, marker := range cfg.Parser.ReferenceMarkers {
		marker = strings.TrimSpace(marker)
		if marker == "" {
			continue
		}
		markers = append(markers, marker)
	}
	cfg.Parser.ReferenceMarkers = markers
}

// LoadOptional behaves like Load but falls back to the built-in defaults
// when path does not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	cfg = Default()
	ApplyEnvOverrides(cfg)
	normalize(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
