package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"medvault/internal/seed"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		patients  int
		seedValue int64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the stores with synthetic patients",
		Long: `Generate synthetic patients through the gateway, including access history
and a handful of erasures so the data shows the post-erasure state. Runs are
reproducible for a given seed value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := seed.New(a.gw, seedValue).Populate(cmd.Context(), patients)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d patients (%d identities erased, %d access entries)\n",
				summary.PatientsCreated, summary.IdentitiesErased, summary.AccessEntries)
			return nil
		},
	}

	cmd.Flags().IntVar(&patients, "patients", 25, "number of patients to create")
	cmd.Flags().Int64Var(&seedValue, "seed", 42, "random seed")

	return cmd
}
