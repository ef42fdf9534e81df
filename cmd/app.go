// =============================================================================
// Revenue Guard - Shared Command Helpers
// =============================================================================
//
// Helpers used by several subcommands: opening the ledger, loading the parts
// catalog and the dashboard session, choosing an analyzer and printing the
// console banners.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/revenue-guard/internal/analyzer"
	"github.com/ginjaninja78/revenue-guard/internal/inventory"
	"github.com/ginjaninja78/revenue-guard/internal/ledger"
	"github.com/ginjaninja78/revenue-guard/internal/reconcile"
	"github.com/ginjaninja78/revenue-guard/internal/session"
	"github.com/ginjaninja78/revenue-guard/internal/types"
	"github.com/ginjaninja78/revenue-guard/pkg/logging"
)

// =============================================================================
// CONTEXT AND RESOURCES
// =============================================================================

// commandContext returns the command context carrying a logger tagged with
// the current repair order.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, logging.Default())
	return logging.WithRepairOrder(ctx, repairOrderID)
}

// openLedger opens the configured ledger backend. The returned function
// releases it.
func openLedger() (ledger.Ledger, func(), error) {
	lg, err := ledger.Open(appConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	closeFn := func() {
		if c, ok := lg.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logging.Warn().Err(err).Msg("Failed to close ledger")
			}
		}
	}
	return lg, closeFn, nil
}

// loadCatalog loads the configured parts catalog.
func loadCatalog() (*inventory.Catalog, error) {
	catalog, err := inventory.Load(appConfig.InventoryFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	logging.Debug().Str("source", catalog.Source).Int("parts", catalog.Len()).Msg("Inventory loaded")
	return catalog, nil
}

// loadSession reads the dashboard state of the current repair order.
func loadSession() (session.State, error) {
	return session.Load(appConfig.SessionFile, repairOrderID)
}

// saveSession persists the dashboard state.
func saveSession(state session.State) error {
	return session.Save(appConfig.SessionFile, state)
}

// newAnalyzer returns a StaticAnalyzer when a finding was given on the
// command line and the hosted analyzer otherwise.
func newAnalyzer(ctx context.Context, visual types.Finding, audio string) (analyzer.Analyzer, error) {
	if visual != "" || audio != "" {
		return analyzer.StaticAnalyzer{Visual: visual, Audio: audio}, nil
	}
	return analyzer.NewGeminiAnalyzer(ctx, appConfig.Analyzer)
}

// =============================================================================
// CONSOLE OUTPUT
// =============================================================================

const rule = "================================================================================"

// printBanner prints a section title in the console report style.
func printBanner(w io.Writer, title string) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, rule)
}

// printVerdict prints a reconciliation verdict as a ✓ or ✗ line.
func printVerdict(w io.Writer, verdict reconcile.Verdict) {
	switch verdict.Status {
	case reconcile.StatusMatch:
		fmt.Fprintf(w, "  ✓ %s\n", verdict.Message)
	case reconcile.StatusMismatch:
		fmt.Fprintf(w, "  ✗ %s\n", verdict.Message)
	default:
		fmt.Fprintf(w, "  ⚠ %s\n", verdict.Message)
	}
	if verdict.Code != reconcile.CodeNone {
		fmt.Fprintf(w, "    (%s)\n", verdict.Code)
	}
}

// printList prints lines with a leading mark, or a placeholder when empty.
func printList(w io.Writer, mark string, lines []string, empty string) {
	if len(lines) == 0 {
		fmt.Fprintf(w, "  %s\n", empty)
		return
	}
	for _, line := range lines {
		fmt.Fprintf(w, "  %s %s\n", mark, strings.TrimSpace(line))
	}
}
