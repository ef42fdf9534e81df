package invoice

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const invoiceSheet = "Invoice"

// WriteXLSX writes the invoice to a workbook with a header block, the line
// table and a total row.
func (inv *Invoice) WriteXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), invoiceSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Shop", inv.Shop},
		{"RO ID", inv.RepairOrderID},
		{"Date", inv.Date.Format(DateLayout)},
		{"Status", inv.Status},
		{},
		{"ID", "Part", "Price ($)"},
	}
	for _, line := range inv.Lines {
		price, _ := line.Price.Round(2).Float64()
		rows = append(rows, []interface{}{line.ItemID, line.Part, price})
	}
	total, _ := inv.Total.Round(2).Float64()
	rows = append(rows, []interface{}{"", "Total Amount", total})

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(invoiceSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("failed to create price style: %w", err)
	}
	first, _ := excelize.CoordinatesToCellName(3, 7)
	last, _ := excelize.CoordinatesToCellName(3, len(rows))
	if err := f.SetCellStyle(invoiceSheet, first, last, style); err != nil {
		return fmt.Errorf("failed to style prices: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save invoice workbook: %w", err)
	}
	return nil
}
