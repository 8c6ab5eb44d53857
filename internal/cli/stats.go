package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tessera-db/tessera/internal/compiler"
	"github.com/tessera-db/tessera/internal/dataset"
	"github.com/tessera-db/tessera/internal/store"
)

// KindStat is the per-kind row of the stats output.
type KindStat struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var schemaPath, dataPath string
	var dump bool

	cmd := &cobra.Command{
		Use:           "stats",
		Short:         "Load a dataset and report per-kind part counts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, schemaPath, dataPath, dump, cmd)
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "CUE schema file (required)")
	cmd.Flags().StringVar(&dataPath, "data", "", "YAML dataset file (required)")
	cmd.Flags().BoolVar(&dump, "dump", false, "print the full store dump instead of counts")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func runStats(opts *RootOptions, schemaPath, dataPath string, dump bool, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	st, err := buildStore(schemaPath, dataPath)
	if err != nil {
		return formatter.Failure(ExitCommandError, err)
	}

	if dump {
		return formatter.Success(nil, st.Dump)
	}

	stats := make([]KindStat, 0, len(st.Schema().Kinds))
	for _, kind := range st.Schema().Kinds {
		n, err := st.Count(kind)
		if err != nil {
			return formatter.Failure(ExitFailure, err)
		}
		stats = append(stats, KindStat{Kind: kind, Count: n})
	}
	return formatter.Success(stats, func(w io.Writer) error {
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\n", s.Kind, s.Count)
		}
		return nil
	})
}

// buildStore compiles the schema, creates a store, and loads the dataset.
func buildStore(schemaPath, dataPath string) (*store.Store, error) {
	sch, err := compiler.CompileFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	st, err := store.New(sch)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if _, err := dataset.LoadFile(st, dataPath); err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	return st, nil
}
