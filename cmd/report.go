// =============================================================================
// Revenue Guard - Report Command
// =============================================================================
//
// COMMAND USAGE:
//   revguard report
//
// Prints the final audit and revenue report of the current repair order and
// writes it as a text file with a unique id to the output directory.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/revenue-guard/internal/analyzer"
	"github.com/ginjaninja78/revenue-guard/internal/reconcile"
	"github.com/ginjaninja78/revenue-guard/pkg/logging"
	"github.com/ginjaninja78/revenue-guard/pkg/utils"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print and save the final audit report",
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	log := logging.FromContext(ctx)

	state, err := loadSession()
	if err != nil {
		return err
	}

	lg, closeLedger, err := openLedger()
	if err != nil {
		return err
	}
	defer closeLedger()

	report := utils.NewAuditReport(repairOrderID)
	report.Submitted = state.Submitted
	report.InvoiceScanned = state.InvoiceScanned
	report.DigitalErrors = state.Errors

	if note, err := lg.LoadNote(ctx); err != nil {
		log.Debug().Err(err).Msg("No mechanic note")
	} else if note.RepairOrderID == repairOrderID {
		report.MechanicNote = note.NoteText
	}

	if state.VisualFindings != "" {
		verdict := reconcile.New(lg).Reconcile(ctx, state.VisualFindings, repairOrderID)
		report.VisualFinding = string(state.VisualFindings)
		report.VisualVerdict = verdict.Message
		report.VisualMatched = verdict.Matched
	}

	if state.AIDiagnosis != "" {
		diagnosis := analyzer.ParseDiagnosis(state.AIDiagnosis)
		report.AcousticDiagnosis = diagnosis.Text
		report.AcousticParts = diagnosis.Parts
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, report.Format())

	path, err := utils.WriteAuditReport(report, appConfig.OutputDir, appConfig.UUIDFormat)
	if err != nil {
		return err
	}

	log.Info().Str("report_id", report.ID).Str("path", path).Msg("Audit report written")
	fmt.Fprintf(out, "\nReport saved to: %s\n", path)
	return nil
}
