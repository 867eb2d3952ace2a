// Package config holds the wasmdecode CLI's flag-bound configuration,
// kept separate from cmd/wasmdecode so it can be unit tested without
// exercising cobra's command tree.
package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// OutputFormat selects how the decoded module is rendered.
type OutputFormat string

const (
	OutputFormatSummary OutputFormat = "summary"
	OutputFormatJSON    OutputFormat = "json"
)

// Config is the decode command's resolved flags.
type Config struct {
	// InputPath is the .wasm file to decode.
	InputPath string
	// Format selects the output renderer.
	Format OutputFormat
	// Verbose enables debug-level decoder logging.
	Verbose bool
}

// BindFlags registers the decode command's flags on fs, returning a Config
// whose fields are populated once fs.Parse has run.
func BindFlags(fs *pflag.FlagSet) *Config {
	cfg := &Config{}
	fs.StringVarP((*string)(&cfg.Format), "format", "f", string(OutputFormatSummary),
		"output format: summary or json")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "enable debug logging")
	return cfg
}

// Validate checks the parsed flags and positional arguments, filling in
// InputPath from args.
func (c *Config) Validate(args []string) error {
	if len(args) != 1 {
		return errors.New("expected exactly one argument: the path to a .wasm file")
	}
	c.InputPath = args[0]
	switch OutputFormat(c.Format) {
	case OutputFormatSummary, OutputFormatJSON:
	default:
		return errors.Errorf("invalid --format %q: want summary or json", c.Format)
	}
	return nil
}
