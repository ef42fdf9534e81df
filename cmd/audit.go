// =============================================================================
// Revenue Guard - Audit Commands (Service Manager Dashboard)
// =============================================================================
//
// COMMAND USAGE:
//   revguard audit invoice                          Step 1: digital audit
//   revguard audit visual --before B --after A      Step 2: visual audit
//   revguard audit visual --finding "PART:..."
//   revguard audit audio --audio engine.wav         Step 3: acoustic audit
//   revguard audit audio --finding "DIAGNOSIS:..|PARTS:.."
//
// Every step stores its result in the dashboard session so that
// 'revguard report' can summarize them.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/revenue-guard/internal/analyzer"
	"github.com/ginjaninja78/revenue-guard/internal/reconcile"
	"github.com/ginjaninja78/revenue-guard/internal/session"
	"github.com/ginjaninja78/revenue-guard/internal/types"
	"github.com/ginjaninja78/revenue-guard/internal/validation"
	"github.com/ginjaninja78/revenue-guard/pkg/logging"
	"github.com/ginjaninja78/revenue-guard/pkg/utils"
)

var (
	visualBefore  string
	visualAfter   string
	visualFinding string
	audioPath     string
	audioFinding  string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run the digital, visual or acoustic audit of a repair order",
}

var auditInvoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Step 1: scan the billed invoice for data errors",
	RunE:  runAuditInvoice,
}

var auditVisualCmd = &cobra.Command{
	Use:   "visual",
	Short: "Step 2: compare before/after photos and reconcile the finding",
	RunE:  runAuditVisual,
}

var auditAudioCmd = &cobra.Command{
	Use:   "audio",
	Short: "Step 3: diagnose an engine recording",
	RunE:  runAuditAudio,
}

func init() {
	auditVisualCmd.Flags().StringVar(&visualBefore, "before", "", "Photo taken before the repair")
	auditVisualCmd.Flags().StringVar(&visualAfter, "after", "", "Photo taken after the repair")
	auditVisualCmd.Flags().StringVar(&visualFinding, "finding", "", "Use this finding instead of calling the analyzer")

	auditAudioCmd.Flags().StringVar(&audioPath, "audio", "", "Engine recording")
	auditAudioCmd.Flags().StringVar(&audioFinding, "finding", "", "Use this diagnosis instead of calling the analyzer")

	auditCmd.AddCommand(auditInvoiceCmd, auditVisualCmd, auditAudioCmd)
	rootCmd.AddCommand(auditCmd)
}

// =============================================================================
// STEP 1: DIGITAL AUDIT
// =============================================================================

func runAuditInvoice(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	lg, closeLedger, err := openLedger()
	if err != nil {
		return err
	}
	defer closeLedger()

	records, err := lg.LoadRO(ctx, repairOrderID)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	result := validation.NewCatalogValidator(catalog).ValidateInvoice(repairOrderID, records)

	state, err := loadSession()
	if err != nil {
		return err
	}
	state = session.RecordInvoiceScan(state, result.Messages())
	if err := saveSession(state); err != nil {
		return err
	}

	logging.FromContext(ctx).Info().
		Int("records", result.RecordsValidated).
		Int("errors", result.ErrorCount).
		Int("warnings", result.WarningCount).
		Msg("Invoice scanned")

	out := cmd.OutOrStdout()
	printBanner(out, "STEP 1: DIGITAL AUDIT")
	fmt.Fprintf(out, "  Repair Order:    %s\n", repairOrderID)
	fmt.Fprintf(out, "  Items Scanned:   %d\n", len(records))
	printList(out, "✗", state.Errors, "✓ No issues found")
	fmt.Fprintln(out, rule)
	return nil
}

// =============================================================================
// STEP 2: VISUAL AUDIT
// =============================================================================

func runAuditVisual(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	if visualFinding == "" {
		if visualBefore == "" || visualAfter == "" {
			return errors.New("either --before and --after, or --finding is required")
		}
		if err := requireEvidence(visualBefore, visualAfter); err != nil {
			return err
		}
	}

	az, err := newAnalyzer(ctx, types.Finding(visualFinding), "")
	if err != nil {
		return err
	}

	finding, box, err := az.AnalyzeVisual(ctx, visualBefore, visualAfter, filepath.Base(visualAfter))
	if err != nil {
		return fmt.Errorf("visual analysis failed: %w", err)
	}

	lg, closeLedger, err := openLedger()
	if err != nil {
		return err
	}
	defer closeLedger()

	verdict := reconcile.New(lg).Reconcile(ctx, finding, repairOrderID)

	state, err := loadSession()
	if err != nil {
		return err
	}
	state = session.RecordVisual(state, finding, box)
	if err := saveSession(state); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printBanner(out, "STEP 2: VISUAL AUDIT")
	fmt.Fprintf(out, "  Finding:  %s\n", finding)
	if box != nil {
		fmt.Fprintf(out, "  Box:      ymin=%d xmin=%d ymax=%d xmax=%d\n", box.YMin, box.XMin, box.YMax, box.XMax)
	}
	printVerdict(out, verdict)
	fmt.Fprintln(out, rule)
	return nil
}

// =============================================================================
// STEP 3: ACOUSTIC AUDIT
// =============================================================================

func runAuditAudio(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	if audioFinding == "" {
		if audioPath == "" {
			return errors.New("either --audio or --finding is required")
		}
		if err := requireEvidence(audioPath); err != nil {
			return err
		}
	}

	az, err := newAnalyzer(ctx, "", audioFinding)
	if err != nil {
		return err
	}

	raw, finding, err := az.AnalyzeAudio(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("acoustic analysis failed: %w", err)
	}

	state, err := loadSession()
	if err != nil {
		return err
	}
	state = session.RecordAudio(state, raw)
	if err := saveSession(state); err != nil {
		return err
	}

	diagnosis := analyzer.ParseDiagnosis(raw)

	out := cmd.OutOrStdout()
	printBanner(out, "STEP 3: ACOUSTIC AUDIT")
	fmt.Fprintf(out, "  Diagnosis:         %s\n", diagnosis.Text)
	if diagnosis.Structured {
		fmt.Fprintf(out, "  Responsible Parts: %s\n", diagnosis.Parts)
	}

	if finding != "" {
		lg, closeLedger, err := openLedger()
		if err != nil {
			return err
		}
		defer closeLedger()
		printVerdict(out, reconcile.New(lg).Reconcile(ctx, finding, repairOrderID))
	}
	fmt.Fprintln(out, rule)
	return nil
}

// requireEvidence fails when an evidence file is missing.
func requireEvidence(paths ...string) error {
	for _, path := range paths {
		if !utils.FileExists(path) {
			return fmt.Errorf("evidence file not found: %s", path)
		}
	}
	return nil
}
