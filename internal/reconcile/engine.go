// =============================================================================
// Revenue Guard - Reconciliation Engine
// =============================================================================
//
// This module decides whether a part reported by evidence analysis appears on
// the final invoice of a repair order.
//
// RECONCILIATION PIPELINE:
//   1. Load all billing records from the ledger
//   2. Keep the records of the requested repair order
//   3. Extract the claimed part name from the finding
//   4. Build the haystack from the billed item names
//   5. Decide: match when the part is a substring of the haystack
//
// ERROR HANDLING:
//   Reconcile never returns an error and never panics. A ledger that cannot
//   be read becomes an error Verdict tagged LedgerUnavailable.
//
// =============================================================================

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/revenue-guard/internal/ledger"
	"github.com/ginjaninja78/revenue-guard/internal/types"
	"github.com/ginjaninja78/revenue-guard/pkg/logging"
)

// =============================================================================
// VERDICT
// =============================================================================

// Status is the outcome class of a reconciliation.
type Status string

// Verdict statuses.
const (
	StatusMatch    Status = "match"
	StatusMismatch Status = "mismatch"
	StatusError    Status = "error"
)

// Code tags the reason behind a non-trivial Verdict.
type Code string

// Verdict codes. CodeNone is used for ordinary matches and mismatches.
const (
	CodeNone              Code = ""
	CodeLedgerUnavailable Code = "LedgerUnavailable"
	CodeNoMatchingRecords Code = "NoMatchingRecords"
	CodeMalformedFinding  Code = "MalformedFinding"
)

// Verdict is the result of reconciling one finding against one repair order.
type Verdict struct {
	// Matched is true only for StatusMatch.
	Matched bool `json:"matched"`

	// Message is the user-facing sentence describing the outcome.
	Message string `json:"message"`

	Status        Status `json:"status"`
	Code          Code   `json:"code,omitempty"`
	DetectedPart  string `json:"detected_part"`
	RepairOrderID string `json:"ro_id"`

	// RecordsChecked is the number of billed items of the repair order.
	RecordsChecked int `json:"records_checked"`

	// Err is the cause of a StatusError verdict.
	Err error `json:"-"`
}

// MismatchMessage is the technician flag shown when a part is not billed.
func MismatchMessage(part string) string {
	return fmt.Sprintf("Technician has not mentioned the %s in the final invoice. Please check again.", strings.ToUpper(part))
}

// MatchMessage is shown when a detected part is on the invoice.
func MatchMessage(part string) string {
	return fmt.Sprintf("Verified: %s is documented.", strings.ToUpper(part))
}

// ErrorMessage describes a reconciliation that could not be carried out.
func ErrorMessage(err error) string {
	return fmt.Sprintf("Reconciliation Error: %v", err)
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine reconciles findings against a ledger store.
type Engine struct {
	store ledger.Store
}

// New creates an Engine reading from store.
func New(store ledger.Store) *Engine {
	return &Engine{store: store}
}

// Reconcile checks whether the part named by finding was billed on repair
// order roID.
//
// PARAMETERS:
//   - ctx: Carries cancellation and the request logger.
//   - finding: Analyzer output, e.g. "PART:Front Bumper|CONF:0.8".
//   - roID: The repair order to check.
//
// RETURNS:
//   - A Verdict. Reconcile has no error return; failures are reported as
//     StatusError verdicts.
//
// The ledger and the finding are never modified.
func (e *Engine) Reconcile(ctx context.Context, finding types.Finding, roID string) (verdict Verdict) {
	startTime := time.Now()
	ctx = logging.WithRepairOrder(ctx, roID)
	logger := logging.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			verdict = ErrorVerdict(roID, fmt.Errorf("panic during reconciliation: %v", r))
		}
		logger.Debug().
			Str("status", string(verdict.Status)).
			Str("code", string(verdict.Code)).
			Str("part", verdict.DetectedPart).
			Dur("duration", time.Since(startTime)).
			Msg("Reconciliation finished")
	}()

	// =========================================================================
	// STEP 1: LOAD LEDGER
	// =========================================================================

	if e.store == nil {
		return ErrorVerdict(roID, &ledger.UnavailableError{Path: "<none>", Err: errors.New("no ledger configured")})
	}

	all, err := e.store.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Ledger unavailable")
		return ErrorVerdict(roID, err)
	}

	// =========================================================================
	// STEP 2: FILTER BY REPAIR ORDER
	// =========================================================================

	records := ledger.FilterByRO(all, roID)

	// =========================================================================
	// STEP 3: EXTRACT CLAIMED PART
	// =========================================================================

	part, marked := ExtractPart(finding)

	verdict = Verdict{
		DetectedPart:   part,
		RepairOrderID:  roID,
		RecordsChecked: len(records),
	}

	if !marked {
		logger.Debug().Str("finding", string(finding)).Msg("Finding has no PART: marker, using first segment")
		verdict.Code = CodeMalformedFinding
	}

	// =========================================================================
	// STEP 4 + 5: MATCH AGAINST BILLED ITEMS
	// =========================================================================

	switch {
	case len(records) == 0:
		verdict.Code = CodeNoMatchingRecords
		verdict.Status = StatusMismatch
	case part == "":
		// An empty name is a substring of everything; never count it as billed.
		verdict.Code = CodeMalformedFinding
		verdict.Status = StatusMismatch
	case strings.Contains(billedHaystack(records), part):
		verdict.Status = StatusMatch
		verdict.Matched = true
	default:
		verdict.Status = StatusMismatch
	}

	if verdict.Matched {
		verdict.Message = MatchMessage(part)
	} else {
		verdict.Message = MismatchMessage(part)
	}

	return verdict
}

// ErrorVerdict reports a failure to read the ledger. Every error verdict
// carries CodeLedgerUnavailable, including recovered panics and cancellation.
func ErrorVerdict(roID string, err error) Verdict {
	return Verdict{
		Status:        StatusError,
		Code:          CodeLedgerUnavailable,
		RepairOrderID: roID,
		Message:       ErrorMessage(err),
		Err:           err,
	}
}
