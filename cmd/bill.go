// =============================================================================
// Revenue Guard - Bill Command (Technician Portal)
// =============================================================================
//
// COMMAND USAGE:
//   revguard bill --part "Oil Filter" --part "Brake Pads" --note "..."
//
// PIPELINE:
//   1. Load the parts catalog and the dashboard session
//   2. Map the selected part names to billing records
//   3. Validate the records
//   4. Overwrite the ledger and the mechanic note
//   5. Mark billing complete
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/revenue-guard/internal/ledger"
	"github.com/ginjaninja78/revenue-guard/internal/session"
	"github.com/ginjaninja78/revenue-guard/internal/validation"
	"github.com/ginjaninja78/revenue-guard/pkg/logging"
	"github.com/ginjaninja78/revenue-guard/pkg/utils"
)

var (
	billParts []string
	billNote  string
)

var billCmd = &cobra.Command{
	Use:   "bill",
	Short: "Record the parts used and the work note for a repair order",
	Long: `The bill command is the technician portal. The selected parts are looked
up in the inventory catalog and written to the ledger together with the work
note. Every submission replaces the previous ledger contents.`,
	RunE: runBill,
}

func init() {
	billCmd.Flags().StringArrayVar(&billParts, "part", nil, "Part name from the inventory (repeatable)")
	billCmd.Flags().StringVar(&billNote, "note", "", "Description of the work performed")
	rootCmd.AddCommand(billCmd)
}

func runBill(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	log := logging.FromContext(ctx)

	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	state, err := loadSession()
	if err != nil {
		return err
	}

	state, records, note, err := session.SubmitBilling(state, session.BillingInput{
		RepairOrderID: repairOrderID,
		PartNames:     billParts,
		Note:          billNote,
	}, catalog)
	if errors.Is(err, session.ErrUnknownPart) {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(catalog.Names(), ", "))
	}
	if err != nil {
		return err
	}

	// ==========================================================================
	// VALIDATE
	// ==========================================================================
	result := validation.NewValidator().ValidateAll(records)
	if !result.IsValid {
		fmt.Fprint(cmd.ErrOrStderr(), validation.FormatErrors(result.Errors))

		logPath, err := writeValidationLog(result.Errors)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to write validation log")
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Validation log saved to: %s\n", logPath)
		}
		return fmt.Errorf("billing rejected: %d validation errors", result.ErrorCount)
	}

	// ==========================================================================
	// WRITE LEDGER
	// ==========================================================================
	lg, closeLedger, err := openLedger()
	if err != nil {
		return err
	}
	defer closeLedger()

	if err := lg.Save(ctx, records); err != nil {
		return err
	}
	if err := lg.SaveNote(ctx, note); err != nil {
		return err
	}
	if err := saveSession(state); err != nil {
		return err
	}

	log.Info().Int("items", len(records)).Msg("Billing submitted")

	out := cmd.OutOrStdout()
	printBanner(out, "BILLING SUBMITTED")
	fmt.Fprintf(out, "  Repair Order: %s\n", repairOrderID)
	for _, r := range records {
		fmt.Fprintf(out, "  ✓ %-6s %-24s $%s\n", r.ItemID, r.ItemName, r.BilledPrice.StringFixed(2))
	}
	fmt.Fprintf(out, "  Total:        $%s\n", ledger.Total(records).StringFixed(2))
	if note.NoteText != "" {
		fmt.Fprintf(out, "  Note:         %s\n", note.NoteText)
	}
	fmt.Fprintln(out, rule)

	return nil
}

// writeValidationLog writes rejected billing errors to the output directory.
func writeValidationLog(errs []*validation.ValidationError) (string, error) {
	if err := utils.EnsureDir(appConfig.OutputDir); err != nil {
		return "", err
	}

	name := utils.GenerateOutputFileName(appConfig.UUIDFormat, map[string]string{"ro": repairOrderID}, ".log")
	path := filepath.Join(appConfig.OutputDir, "validation_"+name)
	if err := validation.WriteErrorLog(errs, path); err != nil {
		return "", err
	}
	return path, nil
}
