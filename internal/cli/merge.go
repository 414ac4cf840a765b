package cli

import (
	"errors"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ocelkit/ocelkit/internal/codec"
	"github.com/ocelkit/ocelkit/internal/integrity"
	"github.com/ocelkit/ocelkit/internal/merge"
	"github.com/ocelkit/ocelkit/internal/ocel"
)

// MergeOptions holds flags for the merge command.
type MergeOptions struct {
	Output   string
	Job      string
	From     string
	To       string
	Pretty   bool
	Validate bool
	Repair   bool
	StampID  bool
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MergeOptions{}

	cmd := &cobra.Command{
		Use:   "merge [inputs...]",
		Short: "Merge logs into one",
		Long: `Merge two or more object-centric event logs into one.

Input order is the resolution order: on duplicate event ids the later input
wins for scalar fields, with object reference sets unioned. Object type
mismatches and declaration kind mismatches are fatal conflicts - the merge
aborts with no output. A pipeline can also be described declaratively with
--job pointing at a YAML file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(rootOpts, opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file")
	cmd.Flags().StringVar(&opts.Job, "job", "", "YAML job file describing the merge")
	cmd.Flags().StringVar(&opts.From, "from", "", "input format (json|xml|store)")
	cmd.Flags().StringVar(&opts.To, "to", "", "output format (json|xml|store)")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "human-readable indentation")
	cmd.Flags().BoolVar(&opts.Validate, "validate", false, "schema-validate inputs and output")
	cmd.Flags().BoolVar(&opts.Repair, "repair", false, "remove dangling object references after merging")
	cmd.Flags().BoolVar(&opts.StampID, "stamp-id", true, "stamp the output with a merge id global attribute")

	return cmd
}

func runMerge(rootOpts *RootOptions, opts *MergeOptions, inputs []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	output := opts.Output
	if opts.Job != "" {
		job, err := LoadMergeJob(opts.Job)
		if err != nil {
			formatter.Error(ErrCodeJob, err.Error(), nil)
			return WrapExitError(ExitCommandError, "bad job file", err)
		}
		inputs = job.Inputs
		output = job.Output
		opts.From = job.From
		opts.To = job.To
		opts.Pretty = job.Pretty
		opts.Validate = job.Validate
		opts.Repair = job.Repair
	}
	if len(inputs) == 0 {
		formatter.Error(ErrCodeIO, "no inputs given", nil)
		return NewExitError(ExitCommandError, "no inputs given")
	}
	if output == "" {
		formatter.Error(ErrCodeIO, "no output given (use -o or a job file)", nil)
		return NewExitError(ExitCommandError, "no output given")
	}

	codecOpts := codec.Options{Pretty: opts.Pretty, Validate: opts.Validate}

	// Decodes are independent per file; the fold below is what is order
	// sensitive, so progress over inputs is safe to show as they load.
	var bar *progressbar.ProgressBar
	if rootOpts.Format == "text" && len(inputs) > 1 {
		bar = progressbar.NewOptions(len(inputs),
			progressbar.OptionSetWriter(formatter.GetErrWriter()),
			progressbar.OptionSetDescription("decoding"),
			progressbar.OptionClearOnFinish(),
		)
	}

	logs := make([]*ocel.Log, 0, len(inputs))
	for _, input := range inputs {
		from, err := resolveFormat(opts.From, input)
		if err != nil {
			formatter.Error(ErrCodeBadFormat, err.Error(), nil)
			return WrapExitError(ExitCommandError, "bad input format", err)
		}
		log, err := loadLog(input, from, codecOpts)
		if err != nil {
			return reportLogError(formatter, "decode failed", err)
		}
		logs = append(logs, log)
		if bar != nil {
			bar.Add(1)
		}
	}

	merged, err := merge.Merge(logs)
	if err != nil {
		var conflict *merge.ConflictError
		if errors.As(err, &conflict) {
			formatter.Error(ErrCodeConflict, err.Error(), conflict)
			return WrapExitError(ExitFailure, "merge conflict", err)
		}
		formatter.Error(ErrCodeIO, err.Error(), nil)
		return WrapExitError(ExitCommandError, "merge failed", err)
	}

	if opts.Repair {
		merged = integrity.RemoveUnknownObjectReferences(merged)
	}
	if opts.StampID {
		merged.Globals["ocel:merge-id"] = ocel.String(ocel.NewLogID())
	}

	to, err := resolveFormat(opts.To, output)
	if err != nil {
		formatter.Error(ErrCodeBadFormat, err.Error(), nil)
		return WrapExitError(ExitCommandError, "bad output format", err)
	}
	if err := saveLog(output, to, merged, codecOpts); err != nil {
		return reportLogError(formatter, "encode failed", err)
	}

	formatter.Success(map[string]interface{}{
		"inputs":  len(inputs),
		"output":  output,
		"events":  len(merged.Events),
		"objects": len(merged.Objects),
	})
	return nil
}
