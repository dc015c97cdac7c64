package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/eqsat/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Rules  int                        `json:"rules"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <rules-dir>",
		Short: "Validate rules without compiling output",
		Long: `Validate CUE rule files.

Checks pattern syntax and rule set consistency without writing output.
Faster than compile for development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, rulesDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	verrs, count, err := validateRulesDir(rulesDir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	formatter.VerboseLog("Validated %d rule(s) in %s", count, rulesDir)

	if len(verrs) > 0 {
		return outputValidationErrors(formatter, verrs)
	}
	return outputValidateSuccess(formatter, count)
}

// validateRulesDir loads rules in fail-fast mode and validates the set.
// A compile error is reported as a validation error; only errors that
// prevent loading at all are returned as err.
func validateRulesDir(rulesDir string) ([]compiler.ValidationError, int, error) {
	loadResult, loadErrors := LoadRules(rulesDir, LoadModeFailFast)
	if loadResult == nil {
		return nil, 0, loadErrors[0]
	}

	var verrs []compiler.ValidationError
	for _, err := range loadErrors {
		code, message := parseCompileError(err)
		field := "load"
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			field = fmt.Sprintf("%s:%d", loadErr.Pos.Filename(), loadErr.Pos.Line())
		}
		verrs = append(verrs, compiler.ValidationError{
			Field:   field,
			Message: message,
			Code:    code,
		})
	}
	verrs = append(verrs, compiler.Validate(loadResult.Rules)...)

	return verrs, len(loadResult.Rules), nil
}

// ValidateRulesDir validates all rules in a directory.
// This is a helper function for external callers.
func ValidateRulesDir(rulesDir string) ([]compiler.ValidationError, error) {
	verrs, _, err := validateRulesDir(rulesDir)
	return verrs, err
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, count int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Rules: count})
	}

	fmt.Fprintf(formatter.Writer, "✓ All %d rule(s) valid\n", count)
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s\n\n", err.Error())
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
