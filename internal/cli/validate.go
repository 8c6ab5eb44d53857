package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tessera-db/tessera/internal/compiler"
)

// ValidateResult holds validation results for JSON output.
type ValidateResult struct {
	Valid      bool     `json:"valid"`
	Kinds      []string `json:"kinds,omitempty"`
	Morphisms  int      `json:"morphisms"`
	Attributes int      `json:"attributes"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema.cue>",
		Short: "Validate a CUE schema declaration",
		Long: `Compile and validate a CUE schema declaration.

Checks syntax, kind references, the shared morphism/attribute namespace,
value domains, and that indexed morphisms admit a dependency order.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	sch, err := compiler.CompileFile(path)
	if err != nil {
		return formatter.Failure(ExitFailure, err)
	}

	result := ValidateResult{
		Valid:      true,
		Kinds:      sch.Kinds,
		Morphisms:  len(sch.Morphisms),
		Attributes: len(sch.Attributes),
	}
	return formatter.Success(result, func(w io.Writer) error {
		fmt.Fprintf(w, "valid: %d kinds, %d morphisms, %d attributes\n",
			len(sch.Kinds), len(sch.Morphisms), len(sch.Attributes))
		return nil
	})
}
