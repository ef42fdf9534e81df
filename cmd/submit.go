// =============================================================================
// Revenue Guard - Submit and Reset Commands
// =============================================================================
//
// COMMAND USAGE:
//   revguard submit    Send the audit to the service manager
//   revguard reset     Discard the dashboard session of the repair order
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/revenue-guard/internal/session"
	"github.com/ginjaninja78/revenue-guard/pkg/logging"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Send the audit to the service manager",
	RunE: func(cmd *cobra.Command, _ []string) error {
		state, err := loadSession()
		if err != nil {
			return err
		}

		if !state.BillingComplete {
			logging.Warn().Str("ro_id", repairOrderID).Msg("Submitting before the technician completed billing")
		}

		if err := saveSession(session.Submit(state)); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Audit for %s sent to the service manager\n", repairOrderID)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start the repair order over with a fresh dashboard",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := session.Remove(appConfig.SessionFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Session reset for %s\n", repairOrderID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(submitCmd, resetCmd)
}
