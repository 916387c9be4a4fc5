package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"medvault/pkg/domain"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print current per-store record counts",
		Long: `Count records in all three stores. Counts are computed from store contents
on every call, so an identity count observed after an erasure reflects it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.gw.Statistics(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "identities: %d\n", stats.Identity.Total)
			for _, region := range domain.Regions() {
				fmt.Fprintf(out, "  %s: %d\n", region, stats.Identity.ByRegion[region])
			}
			fmt.Fprintf(out, "clinical records: %d\n", stats.Clinical.Total)
			fmt.Fprintf(out, "audit entries: %d\n", stats.Audit.Total)
			return nil
		},
	}
	return cmd
}
