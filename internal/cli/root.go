// Package cli implements the medvault command tree. Commands only wire and
// present; every store access goes through the gateway.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	DataDir  string
	LogLevel string

	// Operator identity attached to the context so gateway mutations
	// produce attributable audit entries.
	UserID   string
	UserRole string
	Purpose  string
}

// NewRootCommand builds the medvault command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "medvault",
		Short: "Privacy-first patient record vault",
		Long: `medvault keeps patient identity (PII), clinical data (PHI), and the audit
trail in three separate stores joined only by a one-way pseudonym. All access
goes through the storage gateway, so erasing an identity never touches the
medical record or the audit history.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "directory for the three store files (default $MEDVAULT_DATA_DIR or ./data)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (default $MEDVAULT_LOG_LEVEL or info)")
	cmd.PersistentFlags().StringVar(&opts.UserID, "user", "cli-operator", "operator id recorded in audit entries")
	cmd.PersistentFlags().StringVar(&opts.UserRole, "role", "admin", "operator role recorded in audit entries")
	cmd.PersistentFlags().StringVar(&opts.Purpose, "purpose", "administration", "purpose recorded in audit entries")

	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewAuditCommand(opts))
	cmd.AddCommand(NewEraseCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))

	return cmd
}
