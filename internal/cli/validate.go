package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/inkir/internal/compiler"
	"github.com/roach88/inkir/internal/config"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	BuildFlags
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Contract string                     `json:"contract,omitempty"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [sources...]",
		Short: "Check a contract without writing output",
		Long: `Build the contract IR and its metadata, then run the schema checks
(identifier shape, duplicate names and fields) without writing any
output. Faster feedback than compile during development.

Exit codes:
  0 - Contract is valid
  1 - Schema checks failed
  2 - Build failed or command error`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	opts.BuildFlags.register(cmd)

	return cmd
}

func runValidate(opts *ValidateOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, errs := LoadContract(commandContext(cmd), &opts.BuildFlags, args)
	if len(errs) > 0 {
		return outputBuildErrors(formatter, errs)
	}
	formatter.VerboseLog("Validating contract: %s", loaded.Contract.Name)

	// Metadata derivation catches unsupported types the IR accepts.
	if _, err := loaded.Document(); err != nil {
		return outputBuildErrors(formatter, []error{err})
	}

	validationErrors := compiler.Validate(loaded.Contract)
	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	return outputValidateSuccess(formatter, loaded.Contract.Name)
}

// ValidateSources builds and validates the contract at paths. This is a
// helper for external callers; a build failure is returned as error.
func ValidateSources(ctx context.Context, paths ...string) ([]compiler.ValidationError, error) {
	loaded, errs := LoadContract(ctx, &BuildFlags{Config: config.FileName}, paths)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	if _, err := loaded.Document(); err != nil {
		return nil, err
	}
	return compiler.Validate(loaded.Contract), nil
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, contract string) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Contract: contract})
	}

	fmt.Fprintf(formatter.Writer, "\u2713 Contract %s is valid\n", contract)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Errors: errs,
		}

		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "\u2717 Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
