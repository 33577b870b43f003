package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Validate checks a fully defaulted configuration.
func Validate(cfg *Config) error {
	if err := validateVersion(cfg); err != nil {
		return err
	}
	if err := validateScan(cfg); err != nil {
		return err
	}
	if err := validateParser(cfg); err != nil {
		return err
	}
	if err := validateOutput(cfg); err != nil {
		return err
	}
	return validateWatch(cfg)
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateScan(cfg *Config) error {
	if _, err := glob.Compile(cfg.Scan.Include); err != nil {
		return fmt.Errorf("scan.include pattern %q is invalid: %w", cfg.Scan.Include, err)
	}
	for i, pattern := range cfg.Scan.Exclude {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("scan.exclude[%d] pattern %q is invalid: %w", i, pattern, err)
		}
	}
	return nil
}

func validateParser(cfg *Config) error {
	if len(cfg.Parser.ReferenceMarkers) == 0 {
		return fmt.Errorf("parser.reference_markers must contain at least one marker")
	}
	for i, marker := range cfg.Parser.ReferenceMarkers {
		if strings.ContainsAny(marker, " \t#") {
			return fmt.Errorf("parser.reference_markers[%d] %q must not contain whitespace or '#'", i, marker)
		}
	}
	return nil
}

func validateOutput(cfg *Config) error {
	if !IsValidFormat(cfg.Output.Format) {
		return fmt.Errorf("output.format must be one of: %s", strings.Join(Formats(), ", "))
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.MinInterval < 0 {
		return fmt.Errorf("watch.min_interval must not be negative")
	}
	return nil
}

func Formats() []string {
	return []string{FormatTree, FormatFlat, FormatTSV, FormatMermaid, FormatDOT}
}

func IsValidFormat(format string) bool {
	for _, f := range Formats() {
		if f == format {
			return true
		}
	}
	return false
}
