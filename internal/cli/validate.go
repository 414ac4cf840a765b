package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ocelkit/ocelkit/internal/codec"
	"github.com/ocelkit/ocelkit/internal/validate"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var fromFlag string

	cmd := &cobra.Command{
		Use:   "validate <input>",
		Short: "Schema-validate a log",
		Long: `Validate a log against its declaration tables and structural rules.

Reports every violation found, not just the first: kind mismatches between
declared and actual attribute values, occurrences of undeclared attributes,
dangling object references, and empty ids, activities or object types.
Exits 1 when any violation is found.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, fromFlag, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "input format (json|xml|store)")

	return cmd
}

func runValidate(rootOpts *RootOptions, fromFlag, input string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	from, err := resolveFormat(fromFlag, input)
	if err != nil {
		formatter.Error(ErrCodeBadFormat, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	// Decode without validation so a bad log is reported in full here
	// instead of failing closed inside the codec.
	log, err := loadLog(input, from, codec.Options{})
	if err != nil {
		return reportLogError(formatter, "decode failed", err)
	}

	violations := validate.Log(log)
	if len(violations) == 0 {
		formatter.Success(map[string]interface{}{
			"input": input,
			"valid": true,
		})
		return nil
	}

	if rootOpts.Format == "json" {
		formatter.Error(ErrCodeInvalid, fmt.Sprintf("%d violation(s)", len(violations)), violations)
	} else {
		formatter.Error(ErrCodeInvalid, fmt.Sprintf("%d violation(s)", len(violations)), nil)
		for _, violation := range violations {
			fmt.Fprintf(formatter.Writer, "  %s\n", violation)
		}
	}
	return NewExitError(ExitFailure, "validation violations found")
}
