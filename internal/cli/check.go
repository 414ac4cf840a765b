package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ocelkit/ocelkit/internal/codec"
	"github.com/ocelkit/ocelkit/internal/integrity"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var fromFlag string

	cmd := &cobra.Command{
		Use:   "check <input>",
		Short: "Report dangling object references",
		Long: `Check referential integrity of a log.

Lists every event reference whose target object id is absent from the log.
Exits 1 when any dangling reference is found; use convert --repair to
remove them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, fromFlag, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "input format (json|xml|store)")

	return cmd
}

func runCheck(rootOpts *RootOptions, fromFlag, input string, cmd *cobra.Command) error {
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
	log, err := loadLog(input, from, codec.Options{})
	if err != nil {
		return reportLogError(formatter, "decode failed", err)
	}

	dangling := integrity.CheckReferences(log)
	if len(dangling) == 0 {
		formatter.Success(map[string]interface{}{
			"input":    input,
			"dangling": 0,
		})
		return nil
	}

	if rootOpts.Format == "json" {
		formatter.Error(ErrCodeDangling, fmt.Sprintf("%d dangling reference(s)", len(dangling)), dangling)
	} else {
		formatter.Error(ErrCodeDangling, fmt.Sprintf("%d dangling reference(s)", len(dangling)), nil)
		for _, ref := range dangling {
			fmt.Fprintf(formatter.Writer, "  event %q -> object %q\n", ref.EventID, ref.ObjectID)
		}
	}
	return NewExitError(ExitFailure, "dangling references found")
}
