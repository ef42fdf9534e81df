// =============================================================================
// Revenue Guard - Invoice Command
// =============================================================================
//
// COMMAND USAGE:
//   revguard invoice                  Print the customer invoice
//   revguard invoice --export xml     Also write it to the output directory
//   revguard invoice --export xlsx
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/revenue-guard/internal/invoice"
	"github.com/ginjaninja78/revenue-guard/internal/ledger"
	"github.com/ginjaninja78/revenue-guard/pkg/logging"
	"github.com/ginjaninja78/revenue-guard/pkg/utils"
)

var invoiceExport string

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Show the final customer invoice",
	RunE:  runInvoice,
}

func init() {
	invoiceCmd.Flags().StringVar(&invoiceExport, "export", "", "Export format: xml or xlsx")
	rootCmd.AddCommand(invoiceCmd)
}

func runInvoice(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	format := strings.ToLower(invoiceExport)
	switch format {
	case "", "xml", "xlsx":
	default:
		return fmt.Errorf("unsupported export format %q (expected xml or xlsx)", invoiceExport)
	}

	lg, closeLedger, err := openLedger()
	if err != nil {
		return err
	}
	defer closeLedger()

	out := cmd.OutOrStdout()

	records, err := lg.LoadRO(ctx, repairOrderID)
	if errors.Is(err, ledger.ErrLedgerUnavailable) {
		logging.FromContext(ctx).Debug().Err(err).Msg("No ledger for invoice")
		fmt.Fprintf(out, "No invoice recorded for %s\n", repairOrderID)
		return nil
	}
	if err != nil {
		return err
	}

	inv := invoice.Build(appConfig.ShopName, repairOrderID, records, time.Now())

	printBanner(out, "FINAL INVOICE")
	if err := inv.Render(out); err != nil {
		return err
	}

	if format == "" {
		return nil
	}

	if err := utils.EnsureDir(appConfig.OutputDir); err != nil {
		return err
	}
	name := utils.GenerateOutputFileName(appConfig.UUIDFormat, map[string]string{"ro": repairOrderID}, "."+format)
	path := filepath.Join(appConfig.OutputDir, "invoice_"+name)

	if format == "xml" {
		err = inv.WriteXML(path)
	} else {
		err = inv.WriteXLSX(path)
	}
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info().Str("path", path).Msg("Invoice exported")
	fmt.Fprintf(out, "\nInvoice saved to: %s\n", path)
	return nil
}
