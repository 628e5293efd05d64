package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/causimlabs/causim/internal/cldfile"
	"github.com/causimlabs/causim/internal/nodes"
)

// ValidationResult holds validation results for one diagram directory.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <diagram-dir>",
		Short: "Validate a diagram without executing it",
		Long: `Load a diagram document, resolve node kinds, and run the structural
validation pass, collecting every problem found instead of stopping at the
first one.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, diagramDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var problems []string

	loadResult, loadErrs := cldfile.Load(diagramDir, cldfile.LoadModeCollectAll)
	for _, err := range loadErrs {
		problems = append(problems, err.Error())
	}

	if loadResult != nil && loadResult.Document != nil && len(loadErrs) == 0 {
		formatter.VerboseLog("loaded %d CUE file(s) from %s", loadResult.FileCount, diagramDir)
		if _, _, err := cldfile.Compile(loadResult.Document, nodes.Default()); err != nil {
			problems = append(problems, err.Error())
		}
	}

	return printValidation(formatter, problems)
}

func printValidation(f *OutputFormatter, problems []string) error {
	result := ValidationResult{Valid: len(problems) == 0, Errors: problems}

	if f.Format == "json" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return WrapExitError(ExitFailure, "encoding validation result", err)
		}
		f.Printf("%s\n", data)
	} else if result.Valid {
		f.Printf("diagram is valid\n")
	} else {
		f.Printf("diagram is invalid:\n")
		for _, p := range problems {
			f.Printf("  - %s\n", p)
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}
