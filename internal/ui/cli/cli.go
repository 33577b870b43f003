package cli

import (
	"flag"
	"io"

	"reqcheck/internal/core/config"
)

const versionString = "1.0.0"

type cliOptions struct {
	configPath string
	format     string
	watch      bool
	ui         bool
	history    bool
	show       bool
	verbose    bool
	version    bool
	args       []string
}

func parseOptions(args []string, output io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("reqcheck", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&opts.configPath, "config", config.DefaultConfigPath, "Path to config file")
	fs.StringVar(&opts.format, "format", "", "Report format: tree, flat, tsv, mermaid or dot (overrides output.format)")
	fs.BoolVar(&opts.watch, "watch", false, "Keep running and rescan when declaration files change")
	fs.BoolVar(&opts.ui, "ui", false, "Enable terminal UI mode (implies --watch)")
	fs.BoolVar(&opts.history, "history", false, "Record scan snapshots and print the change since the previous scan")
	fs.BoolVar(&opts.show, "show", false, "Print every parsed file with its parent and modules before the report")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}
