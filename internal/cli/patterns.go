package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/hotpath/internal/pattern"
)

// PatternInfo is one dispatch-table row in CLI output.
type PatternInfo struct {
	ID              uint8  `json:"id"`
	Name            string `json:"name"`
	TickCost        uint8  `json:"tick_cost"`
	TickBudget      uint8  `json:"tick_budget"`
	HotPathEligible bool   `json:"hot_path_eligible"`
	Reserved        bool   `json:"reserved,omitempty"`
}

// PatternsData is the payload for the patterns command.
type PatternsData struct {
	HotPathBudget   int           `json:"hot_path_budget"`
	EligibleCount   int           `json:"eligible_count"`
	Patterns        []PatternInfo `json:"patterns"`
	IncludeReserved bool          `json:"include_reserved,omitempty"`
}

// NewPatternsCommand creates the patterns command.
func NewPatternsCommand(rootOpts *RootOptions) *cobra.Command {
	var includeReserved bool

	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List the dispatch table",
		Long: `List every workflow pattern with its tick cost, dispatch budget,
and hot-path eligibility under the 8-tick constraint.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}
			return runPatterns(formatter, includeReserved)
		},
	}

	cmd.Flags().BoolVar(&includeReserved, "reserved", false, "include reserved table slots")
	return cmd
}

func runPatterns(formatter *OutputFormatter, includeReserved bool) error {
	table := pattern.NewDispatchTable()

	data := PatternsData{
		HotPathBudget:   pattern.HotPathTickBudget,
		EligibleCount:   pattern.HotPathEligibleCount(),
		IncludeReserved: includeReserved,
	}
	ids := pattern.All()
	if includeReserved {
		ids = ids[:0:0]
		for i := 0; i < pattern.NumPatterns; i++ {
			ids = append(ids, pattern.ID(i))
		}
	}

	for _, id := range ids {
		info := PatternInfo{
			ID:              uint8(id),
			Name:            id.String(),
			TickCost:        id.TickCost(),
			HotPathEligible: id.IsHotPathEligible(),
			Reserved:        id.Reserved(),
		}
		if entry := table.Get(id); entry != nil {
			info.TickBudget = entry.TickBudget
		}
		data.Patterns = append(data.Patterns, info)
	}

	return formatter.Success(data, func(w io.Writer) {
		fmt.Fprintf(w, "hot-path budget: %d ticks, %d of %d patterns eligible\n\n",
			data.HotPathBudget, data.EligibleCount, len(data.Patterns))

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCOST\tBUDGET\tHOT-PATH")
		for _, p := range data.Patterns {
			eligible := ""
			if p.HotPathEligible {
				eligible = "yes"
			}
			fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", p.ID, p.Name, p.TickCost, p.TickBudget, eligible)
		}
		tw.Flush()
	})
}
