package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/inkir/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	BuildFlags
	Output string // output file path
}

// CompilationResult is the assembled IR together with its identity.
type CompilationResult struct {
	Contract     *ir.Contract `json:"contract"`
	ContractHash string       `json:"contract_hash"`
	SourceHash   string       `json:"source_hash"`
	IRVersion    string       `json:"ir_version"`
}

// CompilationStats holds summary statistics.
type CompilationStats struct {
	Constructors int
	Messages     int
	Events       int
	Extensions   int
	Traits       int
	Tests        int
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [sources...]",
		Short: "Build the contract IR",
		Long: `Read ink! contract declarations (Rust or CUE), convert every item and
assemble the contract IR.

Every offending declaration is reported, not just the first. Selector
collisions abort the build. Without arguments the sources listed in
inkir.yaml are used.`,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args, cmd)
		},
	}

	opts.BuildFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, errs := LoadContract(commandContext(cmd), &opts.BuildFlags, args)
	if loaded != nil && loaded.Sources != nil {
		formatter.VerboseLog("Read %d %s file(s)", len(loaded.Sources.Paths), loaded.Sources.Frontend)
	}
	if len(errs) > 0 {
		return outputBuildErrors(formatter, errs)
	}

	hash, err := ir.ContractHash(loaded.Contract)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("hashing contract: %v", err))
	}
	result := &CompilationResult{
		Contract:     loaded.Contract,
		ContractHash: hash,
		SourceHash:   loaded.Sources.Hash,
		IRVersion:    ir.IRVersion,
	}

	if opts.Output != "" {
		if err := writeJSONFile(result, opts.Output); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, calculateStats(loaded.Contract), opts.Output)
}

// calculateStats computes summary statistics for a contract.
func calculateStats(c *ir.Contract) CompilationStats {
	return CompilationStats{
		Constructors: len(c.Constructors),
		Messages:     len(c.Messages),
		Events:       len(c.Events),
		Extensions:   len(c.Extensions),
		Traits:       len(c.Traits),
		Tests:        len(c.Tests),
	}
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, stats CompilationStats, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	c := result.Contract
	fmt.Fprintf(w, "\u2713 Compiled contract %s: %d constructor(s), %d message(s), %d event(s)\n\n",
		c.Name, stats.Constructors, stats.Messages, stats.Events)

	fmt.Fprintf(w, "Storage: %s (%d field(s))\n", c.Storage.Name, len(c.Storage.Fields))
	if len(c.Constructors) > 0 {
		fmt.Fprintln(w, "Constructors:")
		for _, ctor := range c.Constructors {
			fmt.Fprintf(w, "  %s %s\n", ctor.Selector, ctor.Name)
		}
	}
	if len(c.Messages) > 0 {
		fmt.Fprintln(w, "Messages:")
		for _, m := range c.Messages {
			fmt.Fprintf(w, "  %s %s\n", m.Selector, m.Name)
		}
	}
	if stats.Extensions > 0 || stats.Traits > 0 || stats.Tests > 0 {
		fmt.Fprintf(w, "Chain extensions: %d, traits: %d, tests: %d\n", stats.Extensions, stats.Traits, stats.Tests)
	}
	fmt.Fprintf(w, "\nContract hash: %s\n", result.ContractHash)

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote IR to %s\n", outputFile)
	}

	return nil
}

// outputCommandError outputs a single command-level error (exit code 2).
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// writeJSONFile writes v as indented JSON.
// Canonical JSON without indentation is used only for hashing.
func writeJSONFile(v any, filename string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling: %w", err)
	}

	if err := os.WriteFile(filename, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
