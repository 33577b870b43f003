package config

import (
	"time"
)

const (
	DefaultConfigPath = "./reqcheck.toml"

	FormatTree    = "tree"
	FormatFlat    = "flat"
	FormatTSV     = "tsv"
	FormatMermaid = "mermaid"
	FormatDOT     = "dot"
)

type Config struct {
	Version       int           `toml:"version"`
	Scan          Scan          `toml:"scan"`
	Parser        Parser        `toml:"parser"`
	Output        Output        `toml:"output"`
	Watch         Watch         `toml:"watch"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`
}

type Scan struct {
	Dir     string   `toml:"dir"`
	Include string   `toml:"include"`
	Exclude []string `toml:"exclude"` // Basename globs skipped by the loader and watcher
}

type Parser struct {
	ReferenceMarkers []string `toml:"reference_markers"`
}

type Output struct {
	Format  string `toml:"format"`
	TSV     string `toml:"tsv"`
	Mermaid string `toml:"mermaid"`
	DOT     string `toml:"dot"`
}

type Watch struct {
	Debounce    time.Duration `toml:"debounce"`
	MinInterval time.Duration `toml:"min_interval"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

// Default returns a configuration with every default applied, as used when
// no config file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
