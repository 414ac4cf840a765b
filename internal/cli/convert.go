package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ocelkit/ocelkit/internal/codec"
	"github.com/ocelkit/ocelkit/internal/integrity"
	"github.com/ocelkit/ocelkit/internal/ocel"
	"github.com/ocelkit/ocelkit/internal/validate"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	From     string
	To       string
	Pretty   bool
	Validate bool
	Repair   bool
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a log between formats",
		Long: `Convert an object-centric event log from one format to another.

Formats are inferred from file extensions (.json, .xml, .db/.sqlite/.store)
unless --from/--to name them explicitly. With --repair, dangling object
references are removed before encoding. With --validate, the input and the
output are schema-validated and the command fails closed on violations.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(rootOpts, opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "input format (json|xml|store)")
	cmd.Flags().StringVar(&opts.To, "to", "", "output format (json|xml|store)")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "human-readable indentation")
	cmd.Flags().BoolVar(&opts.Validate, "validate", false, "schema-validate input and output")
	cmd.Flags().BoolVar(&opts.Repair, "repair", false, "remove dangling object references")

	return cmd
}

func runConvert(rootOpts *RootOptions, opts *ConvertOptions, input, output string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	from, err := resolveFormat(opts.From, input)
	if err != nil {
		formatter.Error(ErrCodeBadFormat, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	to, err := resolveFormat(opts.To, output)
	if err != nil {
		formatter.Error(ErrCodeBadFormat, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	codecOpts := codec.Options{Pretty: opts.Pretty, Validate: opts.Validate}
	log, err := loadLog(input, from, codecOpts)
	if err != nil {
		return reportLogError(formatter, "decode failed", err)
	}
	formatter.VerboseLog("decoded %s: %d events, %d objects", input, len(log.Events), len(log.Objects))

	if opts.Repair {
		before := len(integrity.CheckReferences(log))
		log = integrity.RemoveUnknownObjectReferences(log)
		formatter.VerboseLog("repair removed %d dangling reference(s)", before)
	}

	if rootOpts.Verbose {
		if digest, err := ocel.Digest(log); err == nil {
			formatter.VerboseLog("log digest: %s", digest)
		}
	}

	if err := saveLog(output, to, log, codecOpts); err != nil {
		return reportLogError(formatter, "encode failed", err)
	}

	formatter.Success(map[string]interface{}{
		"input":   input,
		"output":  output,
		"events":  len(log.Events),
		"objects": len(log.Objects),
	})
	return nil
}

// reportLogError formats a core error, mapping validation violations to the
// findings exit code and everything else to a command error.
func reportLogError(formatter *OutputFormatter, message string, err error) error {
	var validationErr *validate.ValidationError
	if errors.As(err, &validationErr) {
		formatter.Error(ErrCodeInvalid, err.Error(), validationErr.Violations)
		return WrapExitError(ExitFailure, message, err)
	}
	formatter.Error(ErrCodeIO, err.Error(), nil)
	return WrapExitError(ExitCommandError, message, err)
}
