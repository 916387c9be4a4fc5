package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Scan the stores for cross-store anomalies",
		Long: `Report integrity warnings such as identities without a clinical record or
pseudonyms matched by more than one clinical record. The scan is diagnostic:
nothing is repaired or deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			warnings, err := a.gw.VerifyIntegrity(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(warnings) == 0 {
				fmt.Fprintln(out, "no anomalies found")
				return nil
			}
			for _, w := range warnings {
				fmt.Fprintf(out, "%-20s %s\n", w.Kind, w.Detail)
			}
			fmt.Fprintf(out, "%d warnings\n", len(warnings))
			return nil
		},
	}
	return cmd
}
