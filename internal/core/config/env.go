package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: REQCHECK_[SECTION]_[KEY] (e.g., REQCHECK_OUTPUT_FORMAT).
func ApplyEnvOverrides(cfg *Config) {
	// Scan
	setEnvString(&cfg.Scan.Dir, "REQCHECK_SCAN_DIR")
	setEnvString(&cfg.Scan.Include, "REQCHECK_SCAN_INCLUDE")

	// Output
	setEnvString(&cfg.Output.Format, "REQCHECK_OUTPUT_FORMAT")
	setEnvString(&cfg.Output.TSV, "REQCHECK_OUTPUT_TSV")
	setEnvString(&cfg.Output.Mermaid, "REQCHECK_OUTPUT_MERMAID")
	setEnvString(&cfg.Output.DOT, "REQCHECK_OUTPUT_DOT")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "REQCHECK_WATCH_DEBOUNCE")
	setEnvDuration(&cfg.Watch.MinInterval, "REQCHECK_WATCH_MIN_INTERVAL")

	// History
	setEnvBool(&cfg.History.Enabled, "REQCHECK_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "REQCHECK_HISTORY_PATH")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "REQCHECK_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "REQCHECK_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
