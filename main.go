// =============================================================================
// Revenue Guard - Main Entry Point
// =============================================================================
//
// Revenue Guard reconciles repair evidence (photos, engine recordings) against
// the parts billed on a repair order.
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core logic: ledger, reconcile, analyzer, session, ...
//   - pkg/           : Shared logging and file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/revenue-guard/cmd"
)

func main() {
	cmd.Execute()
}
