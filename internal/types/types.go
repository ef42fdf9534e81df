// =============================================================================
// Revenue Guard - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - ledger
//   - reconcile
//   - validation
//   - session
//   - invoice
//   - analyzer
//
// =============================================================================

package types

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER TYPES
// =============================================================================

// Ledger column headers. These match the header row of the ledger CSV file
// and the column names of the SQL backend.
const (
	ColumnRepairOrderID = "ro_id"
	ColumnItemID        = "item_id"
	ColumnItemName      = "item_name"
	ColumnBilledPrice   = "billed_price"
	ColumnNoteText      = "note_text"
)

// LedgerColumns is the column order used when writing the billing ledger.
var LedgerColumns = []string{
	ColumnRepairOrderID,
	ColumnItemID,
	ColumnItemName,
	ColumnBilledPrice,
}

// NoteColumns is the column order used when writing the mechanic notes file.
var NoteColumns = []string{
	ColumnRepairOrderID,
	ColumnNoteText,
}

// BillingRecord is a single billed line item on a repair order invoice.
// One invoice is the set of records sharing a RepairOrderID.
type BillingRecord struct {
	// RepairOrderID identifies the vehicle service transaction.
	RepairOrderID string `db:"ro_id" json:"ro_id" yaml:"ro_id"`

	// ItemID is the inventory id of the billed part (e.g. "P101").
	ItemID string `db:"item_id" json:"item_id" yaml:"item_id"`

	// ItemName is the human-readable part name as billed.
	ItemName string `db:"item_name" json:"item_name" yaml:"item_name"`

	// BilledPrice is the price charged for the item.
	BilledPrice decimal.Decimal `db:"billed_price" json:"billed_price" yaml:"billed_price"`
}

// MechanicNote is the free-text work description entered by the technician.
type MechanicNote struct {
	RepairOrderID string `db:"ro_id" json:"ro_id" yaml:"ro_id"`
	NoteText      string `db:"note_text" json:"note_text" yaml:"note_text"`
}

// =============================================================================
// EVIDENCE TYPES
// =============================================================================

// Finding is the free-text output of the evidence analyzer.
// It is informally structured as KEY:value segments joined by "|",
// for example "PART:Front Bumper|CONF:0.8".
type Finding string

// BoundingBox locates a detected part on the "after" photo.
// Coordinates are normalized to 0-1000 in the order the analyzer reports them.
type BoundingBox struct {
	YMin int `json:"ymin" yaml:"ymin"`
	XMin int `json:"xmin" yaml:"xmin"`
	YMax int `json:"ymax" yaml:"ymax"`
	XMax int `json:"xmax" yaml:"xmax"`
}
