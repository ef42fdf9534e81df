package inventory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// CatalogColumns defines which columns of the inventory workbook hold which
// data. Column indices are 0-based (A=0, B=1, C=2).
type CatalogColumns struct {
	// IDColumn is the column containing the item id.
	// Default: 0 (Column A)
	IDColumn int

	// NameColumn is the column containing the part name.
	// Default: 1 (Column B)
	NameColumn int

	// PriceColumn is the column containing the list price.
	// Default: 2 (Column C)
	PriceColumn int

	// DataStartRow is the row number where data begins (0-based).
	// Default: 1 (Row 2, below the header row)
	DataStartRow int
}

// DefaultCatalogColumns returns the default column configuration.
func DefaultCatalogColumns() CatalogColumns {
	return CatalogColumns{
		IDColumn:     0, // Column A
		NameColumn:   1, // Column B
		PriceColumn:  2, // Column C
		DataStartRow: 1, // Row 2
	}
}

// catalogHeaders is the header row written by WriteXLSX.
var catalogHeaders = []string{"Item ID", "Item Name", "Price"}

// LoadXLSX reads a catalog from the first sheet of an XLSX workbook.
//
// PARAMETERS:
//   - path: The path to the workbook.
//   - columns: The column configuration.
//
// RETURNS:
//   - The catalog.
//   - An error if the file cannot be read, a price cannot be parsed or an
//     id appears twice.
func LoadXLSX(path string, columns CatalogColumns) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("inventory workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var parts []Part
	for i := columns.DataStartRow; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		getCell := func(index int) string {
			if index < len(row) {
				return strings.TrimSpace(row[index])
			}
			return ""
		}

		priceStr := strings.TrimPrefix(getCell(columns.PriceColumn), "$")
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("error parsing row %d: invalid price %q", i+1, priceStr)
		}

		parts = append(parts, Part{
			ID:    getCell(columns.IDColumn),
			Name:  getCell(columns.NameColumn),
			Price: price,
		})
	}

	catalog, err := NewCatalog(path, parts)
	if err != nil {
		return nil, fmt.Errorf("invalid inventory workbook: %w", err)
	}
	return catalog, nil
}

// WriteXLSX writes the catalog to an XLSX workbook that LoadXLSX can read
// back with the default columns.
func (c *Catalog) WriteXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	for col, header := range catalogHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, p := range c.parts {
		row := i + 2
		values := []interface{}{p.ID, p.Name, p.Price.StringFixed(2)}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write part %s: %w", p.ID, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save inventory workbook: %w", err)
	}
	return nil
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
