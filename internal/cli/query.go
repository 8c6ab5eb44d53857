package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tessera-db/tessera/internal/geom"
	"github.com/tessera-db/tessera/internal/spatial"
	"github.com/tessera-db/tessera/internal/traverse"
	"github.com/tessera-db/tessera/internal/value"
)

// QueryResult holds query results for JSON output.
type QueryResult struct {
	IDs  []int  `json:"ids"`
	Cost string `json:"cost,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	var schemaPath, dataPath string
	var chain []string
	var gt, lt float64

	cmd := &cobra.Command{
		Use:   "query <incident|up|down|filter> <args...>",
		Short: "Run an incidence lookup, a chain traversal, or an attribute filter",
		Long: `Run a read-only query against a store loaded from --schema and --data.

Modes:
  incident <target-id> <morphism>   sources whose morphism value is the target
  up       <id> --chain m1,m2,...   compose morphism values upward
  down     <id> --chain m1,m2,...   expand incidence lookups downward
  filter   <kind> <attribute>       numeric threshold scan (--gt / --lt)

The incident mode reports whether the lookup was served by the incidence
index or by a full scan. The filter mode is always a full scan. Prefer
indexed morphisms over filters and spatial joins when the relationship is
structural.`,
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, queryFlags{
				schemaPath: schemaPath,
				dataPath:   dataPath,
				chain:      chain,
				gt:         gt,
				gtSet:      cmd.Flags().Changed("gt"),
				lt:         lt,
				ltSet:      cmd.Flags().Changed("lt"),
			}, args, cmd)
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "CUE schema file (required)")
	cmd.Flags().StringVar(&dataPath, "data", "", "YAML dataset file (required)")
	cmd.Flags().StringSliceVar(&chain, "chain", nil, "morphism chain for up/down modes")
	cmd.Flags().Float64Var(&gt, "gt", 0, "filter mode: keep values greater than this")
	cmd.Flags().Float64Var(&lt, "lt", 0, "filter mode: keep values less than this")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

type queryFlags struct {
	schemaPath string
	dataPath   string
	chain      []string
	gt, lt     float64
	gtSet      bool
	ltSet      bool
}

func runQuery(opts *RootOptions, flags queryFlags, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	st, err := buildStore(flags.schemaPath, flags.dataPath)
	if err != nil {
		return formatter.Failure(ExitCommandError, err)
	}

	var result QueryResult
	switch mode := args[0]; mode {
	case "incident":
		if len(args) != 3 {
			return formatter.Failure(ExitCommandError, fmt.Errorf("incident mode needs <target-id> <morphism>"))
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return formatter.Failure(ExitCommandError, fmt.Errorf("invalid id %q", args[1]))
		}
		ids, cost, err := st.Incident(id, args[2])
		if err != nil {
			return formatter.Failure(ExitFailure, err)
		}
		result = QueryResult{IDs: ids, Cost: cost.String()}
	case "up":
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return formatter.Failure(ExitCommandError, fmt.Errorf("invalid id %q", args[1]))
		}
		target, err := traverse.Up(st, id, flags.chain)
		if err != nil {
			return formatter.Failure(ExitFailure, err)
		}
		result = QueryResult{IDs: []int{target}}
	case "down":
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return formatter.Failure(ExitCommandError, fmt.Errorf("invalid id %q", args[1]))
		}
		ids, err := traverse.Down(st, id, flags.chain)
		if err != nil {
			return formatter.Failure(ExitFailure, err)
		}
		result = QueryResult{IDs: ids}
	case "filter":
		if len(args) != 3 {
			return formatter.Failure(ExitCommandError, fmt.Errorf("filter mode needs <kind> <attribute>"))
		}
		if flags.gtSet == flags.ltSet {
			return formatter.Failure(ExitCommandError, fmt.Errorf("filter mode needs exactly one of --gt or --lt"))
		}
		rel, threshold := geom.GreaterThan, flags.gt
		if flags.ltSet {
			rel, threshold = geom.LessThan, flags.lt
		}
		ids, err := spatial.FilterRelation(st, args[1], args[2], rel, value.Float(threshold))
		if err != nil {
			return formatter.Failure(ExitFailure, err)
		}
		result = QueryResult{IDs: ids, Cost: "scan"}
	default:
		return formatter.Failure(ExitCommandError, fmt.Errorf("unknown mode %q", mode))
	}

	return formatter.Success(result, func(w io.Writer) error {
		for _, got := range result.IDs {
			fmt.Fprintln(w, got)
		}
		if result.Cost != "" && opts.Verbose {
			fmt.Fprintf(w, "cost: %s\n", result.Cost)
		}
		return nil
	})
}
