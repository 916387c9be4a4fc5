package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewEraseCommand creates the erase command.
func NewEraseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "erase <identity-id>",
		Short: "Erase an identity record",
		Long: `Delete the identity record for a data-subject erasure request. The clinical
record and the audit trail are left untouched; only the link from the person
to their pseudonym disappears. Erasing an already absent identity succeeds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.gw.EraseIdentity(actorContext(cmd.Context(), rootOpts), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "identity %s erased\n", args[0])
			return nil
		},
	}
	return cmd
}
