// Command wasmdecode is a thin demonstration CLI over the wasmdecode
// library: it decodes a .wasm file and prints a summary (or the full IR as
// JSON) to stdout. It exists to exercise the library end to end; the
// decoder itself has no dependency on this package.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	wasmdecode "github.com/tetratelabs/wasmdecode"
	"github.com/tetratelabs/wasmdecode/internal/config"
	"github.com/tetratelabs/wasmdecode/ir"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfg *config.Config
	root := &cobra.Command{
		Use:           "wasmdecode <file.wasm>",
		Short:         "Decode a WebAssembly 1.0 binary module and print its structure",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(args); err != nil {
				return err
			}
			return runDecode(cmd, cfg)
		},
	}
	cfg = config.BindFlags(root.Flags())
	return root
}

func runDecode(cmd *cobra.Command, cfg *config.Config) error {
	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	if cfg.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	data, err := os.ReadFile(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", cfg.InputPath, err)
	}

	mod, offsets, err := wasmdecode.ParseModuleWithOffsets(data, wasmdecode.WithLogger(log))
	if err != nil {
		return fmt.Errorf("decoding %s: %w", cfg.InputPath, err)
	}

	switch config.OutputFormat(cfg.Format) {
	case config.OutputFormatJSON:
		return printJSON(cmd, mod, offsets)
	default:
		printSummary(cmd, cfg.InputPath, mod, offsets)
		return nil
	}
}

func printJSON(cmd *cobra.Command, mod *ir.Module, offsets *ir.Offsets) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Module  *ir.Module  `json:"module"`
		Offsets *ir.Offsets `json:"offsets"`
	}{mod, offsets})
}

func printSummary(cmd *cobra.Command, path string, mod *ir.Module, offsets *ir.Offsets) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", path)
	fmt.Fprintf(out, "  types:     %d\n", len(mod.Types))
	fmt.Fprintf(out, "  functions: %d (%d imported)\n", len(mod.Functions), mod.ImportedFunctionCount())
	fmt.Fprintf(out, "  tables:    %d\n", len(mod.Tables))
	fmt.Fprintf(out, "  memories:  %d\n", len(mod.Memories))
	fmt.Fprintf(out, "  globals:   %d\n", len(mod.Globals))
	fmt.Fprintf(out, "  custom sections: %d\n", len(mod.CustomSections))
	if mod.Start != nil {
		fmt.Fprintf(out, "  start: function %d\n", *mod.Start)
	}
	if mod.Name != nil {
		fmt.Fprintf(out, "  name: %s\n", *mod.Name)
	}
	fmt.Fprintf(out, "  sections recorded in offset table: %d\n", len(offsets.Sections))
	fmt.Fprintf(out, "  function bodies recorded in offset table: %d\n", len(offsets.FunctionsCode))
}
