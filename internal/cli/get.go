package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <identity-id>",
		Short: "Print the composite record for an identity",
		Long: `Resolve the identity by id, follow its pseudonym into the clinical store,
and print the merged view. Integrity warnings are included in the output but
never fail the read.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			composite, err := a.gw.GetComposite(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			encoded, err := json.MarshalIndent(composite, "", "  ")
			if err != nil {
				return fmt.Errorf("encode composite record: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}
	return cmd
}
