// =============================================================================
// Revenue Guard - Customer Invoice
// =============================================================================
//
// This module builds the final customer invoice of a repair order from the
// ledger and writes it to the terminal, to XML or to an XLSX workbook.
//
// XML STRUCTURE:
//
//   <invoice ro="RO-500">
//     <shop>Revenue Guard Garage</shop>
//     <date>2026-10-18 09:30</date>
//     <status>PAID &amp; VERIFIED</status>
//     <lineItem n="1">
//       <ID>P101</ID>
//       <Part>Oil Filter</Part>
//       <Price>85.00</Price>
//     </lineItem>
//     <total>85.00</total>
//   </invoice>
//
// =============================================================================

package invoice

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/revenue-guard/internal/ledger"
	"github.com/ginjaninja78/revenue-guard/internal/types"
)

// StatusPaidVerified is the status printed on a submitted invoice.
const StatusPaidVerified = "PAID & VERIFIED"

// DateLayout is the invoice date format.
const DateLayout = "2006-01-02 15:04"

// Line is one billed item on the invoice.
type Line struct {
	N      int
	ItemID string
	Part   string
	Price  decimal.Decimal
}

// Invoice is the final customer invoice of a repair order.
type Invoice struct {
	Shop          string
	RepairOrderID string
	Date          time.Time
	Status        string
	Lines         []Line
	Total         decimal.Decimal
}

// Build creates the invoice of roID from the ledger records.
// Records of other repair orders are ignored.
func Build(shop, roID string, records []types.BillingRecord, now time.Time) *Invoice {
	billed := ledger.FilterByRO(records, roID)

	inv := &Invoice{
		Shop:          shop,
		RepairOrderID: roID,
		Date:          now,
		Status:        StatusPaidVerified,
		Lines:         make([]Line, 0, len(billed)),
		Total:         ledger.Total(billed),
	}

	for i, r := range billed {
		inv.Lines = append(inv.Lines, Line{
			N:      i + 1,
			ItemID: r.ItemID,
			Part:   r.ItemName,
			Price:  r.BilledPrice,
		})
	}

	return inv
}

// Render writes the invoice as a text table.
func (inv *Invoice) Render(w io.Writer) error {
	fmt.Fprintf(w, "Shop:   %-28s Date:   %s\n", inv.Shop, inv.Date.Format(DateLayout))
	fmt.Fprintf(w, "RO ID:  %-28s Status: %s\n\n", inv.RepairOrderID, inv.Status)

	align := []tw.Align{tw.AlignLeft, tw.AlignLeft, tw.AlignRight}
	config := tablewriter.Config{}
	config.Header.Alignment = tw.CellAlignment{PerColumn: align}
	config.Row.Alignment = tw.CellAlignment{PerColumn: align}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(config))
	table.Header("ID", "Part", "Price ($)")

	for _, line := range inv.Lines {
		if err := table.Append(line.ItemID, line.Part, line.Price.StringFixed(2)); err != nil {
			return fmt.Errorf("failed to render invoice line %d: %w", line.N, err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render invoice: %w", err)
	}

	_, err := fmt.Fprintf(w, "\nTotal Amount: $%s\n", inv.Total.StringFixed(2))
	return err
}
