// =============================================================================
// Revenue Guard - Ledger Store
// =============================================================================
//
// The ledger is the persisted table of billed items for the current repair
// order plus a single mechanic note. It is a single-record store: every
// technician submission overwrites the whole table.
//
// BACKENDS:
//   - csv    - final_invoice.csv / mechanic_notes.csv (default)
//   - sqlite - billing_records / mechanic_notes tables in one database file
//
// ERROR HANDLING:
//   Any condition that makes the ledger unreadable (missing file, empty file,
//   missing column, unparsable price, database error) is reported as an
//   *UnavailableError, which matches ErrLedgerUnavailable with errors.Is.
//
// =============================================================================

package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/revenue-guard/internal/config"
	"github.com/ginjaninja78/revenue-guard/internal/types"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrLedgerUnavailable indicates the ledger cannot be read.
var ErrLedgerUnavailable = errors.New("ledger unavailable")

// UnavailableError describes why the ledger at Path could not be read.
type UnavailableError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("ledger %s unavailable: %v", e.Path, e.Err)
}

// Is implements errors.Is support
func (e *UnavailableError) Is(target error) bool {
	return target == ErrLedgerUnavailable
}

// Unwrap returns the underlying error
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func unavailable(path string, err error) error {
	return &UnavailableError{Path: path, Err: err}
}

// =============================================================================
// INTERFACES
// =============================================================================

// Store persists billing records.
type Store interface {
	// Load returns every billing record in the ledger.
	Load(ctx context.Context) ([]types.BillingRecord, error)

	// LoadRO returns the records of a single repair order.
	LoadRO(ctx context.Context, roID string) ([]types.BillingRecord, error)

	// Save replaces the whole ledger with records.
	Save(ctx context.Context, records []types.BillingRecord) error
}

// NoteStore persists the mechanic note.
type NoteStore interface {
	LoadNote(ctx context.Context) (*types.MechanicNote, error)
	SaveNote(ctx context.Context, note types.MechanicNote) error
}

// Ledger is a store for both billing records and the mechanic note.
type Ledger interface {
	Store
	NoteStore
}

// =============================================================================
// FACTORY
// =============================================================================

// Open returns the ledger backend selected by cfg.LedgerBackend.
// The caller must Close the returned ledger when it implements io.Closer.
func Open(cfg *config.MainConfig) (Ledger, error) {
	switch cfg.LedgerBackend {
	case config.BackendCSV, "":
		return NewCSVStore(cfg.LedgerFile, cfg.NotesFile, cfg.CSVSettings), nil
	case config.BackendSQLite:
		return OpenSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// FilterByRO returns the records whose RepairOrderID equals roID.
func FilterByRO(records []types.BillingRecord, roID string) []types.BillingRecord {
	var filtered []types.BillingRecord
	for _, r := range records {
		if r.RepairOrderID == roID {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Total sums the billed prices.
func Total(records []types.BillingRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.BilledPrice)
	}
	return total
}
