// =============================================================================
// Revenue Guard - Reconcile Command
// =============================================================================
//
// COMMAND USAGE:
//   revguard reconcile --finding "PART:Front Bumper|CONF:0.8" [--json]
//
// The verdict is always printed and the command exits 0, whatever the
// verdict. Scripts read the status from the --json output.
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/revenue-guard/internal/reconcile"
	"github.com/ginjaninja78/revenue-guard/internal/types"
)

var (
	reconcileFinding string
	reconcileJSON    bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile an analyzer finding against the billed invoice",
	RunE:  runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileFinding, "finding", "", "Analyzer finding, e.g. \"PART:Front Bumper|CONF:0.8\"")
	reconcileCmd.Flags().BoolVar(&reconcileJSON, "json", false, "Print the verdict as JSON")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	if !cmd.Flags().Changed("finding") {
		return errors.New("--finding is required")
	}

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	var verdict reconcile.Verdict
	lg, closeLedger, err := openLedger()
	if err != nil {
		verdict = reconcile.ErrorVerdict(repairOrderID, err)
	} else {
		defer closeLedger()
		verdict = reconcile.New(lg).Reconcile(ctx, types.Finding(reconcileFinding), repairOrderID)
	}

	if reconcileJSON {
		data, err := json.MarshalIndent(verdict, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode verdict: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	printBanner(out, "RECONCILIATION")
	fmt.Fprintf(out, "  Repair Order:    %s\n", verdict.RepairOrderID)
	fmt.Fprintf(out, "  Detected Part:   %s\n", verdict.DetectedPart)
	fmt.Fprintf(out, "  Items Checked:   %d\n", verdict.RecordsChecked)
	printVerdict(out, verdict)
	fmt.Fprintln(out, rule)
	return nil
}
