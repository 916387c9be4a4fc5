package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"medvault/internal/audit"
	"medvault/pkg/domain"
	dErrors "medvault/pkg/domain-errors"
)

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		action    string
		pseudonym string
		userID    string
		resource  string
		since     time.Duration
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query the audit trail",
		Long: `List audit entries newest first. All filters are optional and combine
with AND semantics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := audit.Filter{
				ResourceID: resource,
				UserID:     userID,
				Limit:      limit,
			}
			if action != "" {
				filter.Action = audit.Action(action)
				if !filter.Action.IsValid() {
					return dErrors.Newf(dErrors.CodeInvalidInput, "unknown audit action %q", action)
				}
			}
			if pseudonym != "" {
				p, err := domain.ParsePseudonym(pseudonym)
				if err != nil {
					return err
				}
				filter.Pseudonym = p
			}
			if since > 0 {
				from := time.Now().Add(-since)
				filter.From = &from
			}

			a, err := newApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.gw.QueryAudit(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				outcome := "ok"
				if !e.Success {
					outcome = "FAILED: " + e.ErrorMessage
				}
				fmt.Fprintf(out, "%s  %-14s %-8s %-36s %s  %s\n",
					e.Timestamp.Format(time.RFC3339), e.Action, e.ResourceType, e.ResourceID, e.UserID, outcome)
			}
			fmt.Fprintf(out, "%d entries\n", len(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&action, "action", "", "filter by action (access|create|update|erasure|consent_change)")
	cmd.Flags().StringVar(&pseudonym, "pseudonym", "", "filter by pseudonym")
	cmd.Flags().StringVar(&userID, "by-user", "", "filter by acting user id")
	cmd.Flags().StringVar(&resource, "resource", "", "filter by resource id")
	cmd.Flags().DurationVar(&since, "since", 0, "only entries newer than this duration (e.g. 24h)")
	cmd.Flags().IntVar(&limit, "limit", 0, "cap the result set (0 uses the configured cap)")

	return cmd
}
