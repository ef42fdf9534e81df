package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/revenue-guard/internal/config"
	"github.com/ginjaninja78/revenue-guard/internal/csvparser"
	"github.com/ginjaninja78/revenue-guard/internal/types"
	"github.com/ginjaninja78/revenue-guard/pkg/logging"
)

// CSVStore keeps the ledger and the mechanic note in two CSV files.
type CSVStore struct {
	Path      string
	NotesPath string
	Settings  config.CSVSettings
}

// NewCSVStore creates a CSV-backed ledger.
func NewCSVStore(path, notesPath string, settings config.CSVSettings) *CSVStore {
	return &CSVStore{
		Path:      path,
		NotesPath: notesPath,
		Settings:  settings,
	}
}

// Load reads every billing record from the ledger file.
func (s *CSVStore) Load(ctx context.Context) ([]types.BillingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.parse(s.Path, types.LedgerColumns)
	if err != nil {
		return nil, err
	}

	records := make([]types.BillingRecord, 0, len(data.Rows))
	for i, row := range data.Rows {
		price, err := decimal.NewFromString(row[types.ColumnBilledPrice])
		if err != nil {
			// Row numbers are 1-based and the header is row 1.
			return nil, unavailable(s.Path, fmt.Errorf("row %d: invalid %s %q: %w",
				i+2, types.ColumnBilledPrice, row[types.ColumnBilledPrice], err))
		}

		records = append(records, types.BillingRecord{
			RepairOrderID: row[types.ColumnRepairOrderID],
			ItemID:        row[types.ColumnItemID],
			ItemName:      row[types.ColumnItemName],
			BilledPrice:   price,
		})
	}

	logging.FromContext(ctx).Debug().
		Str("path", s.Path).
		Int("records", len(records)).
		Msg("Ledger loaded")

	return records, nil
}

// LoadRO reads the records of one repair order.
func (s *CSVStore) LoadRO(ctx context.Context, roID string) ([]types.BillingRecord, error) {
	records, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByRO(records, roID), nil
}

// Save overwrites the ledger file with records.
// An empty slice leaves a header-only file.
func (s *CSVStore) Save(ctx context.Context, records []types.BillingRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, map[string]string{
			types.ColumnRepairOrderID: r.RepairOrderID,
			types.ColumnItemID:        r.ItemID,
			types.ColumnItemName:      r.ItemName,
			types.ColumnBilledPrice:   r.BilledPrice.StringFixed(2),
		})
	}

	if err := csvparser.Write(s.Path, types.LedgerColumns, rows, s.Settings); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}

	logging.FromContext(ctx).Info().
		Str("path", s.Path).
		Int("records", len(records)).
		Msg("Ledger saved")

	return nil
}

// LoadNote reads the mechanic note. When the file holds several rows the
// last one wins.
func (s *CSVStore) LoadNote(ctx context.Context) (*types.MechanicNote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.parse(s.NotesPath, types.NoteColumns)
	if err != nil {
		return nil, err
	}
	if len(data.Rows) == 0 {
		return nil, unavailable(s.NotesPath, errors.New("no note recorded"))
	}

	row := data.Rows[len(data.Rows)-1]
	return &types.MechanicNote{
		RepairOrderID: row[types.ColumnRepairOrderID],
		NoteText:      row[types.ColumnNoteText],
	}, nil
}

// SaveNote overwrites the notes file with a single note.
func (s *CSVStore) SaveNote(ctx context.Context, note types.MechanicNote) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rows := []map[string]string{{
		types.ColumnRepairOrderID: note.RepairOrderID,
		types.ColumnNoteText:      note.NoteText,
	}}

	if err := csvparser.Write(s.NotesPath, types.NoteColumns, rows, s.Settings); err != nil {
		return fmt.Errorf("failed to save mechanic note: %w", err)
	}
	return nil
}

// parse reads a ledger file and checks that every required column exists.
func (s *CSVStore) parse(path string, required []string) (*csvparser.CSVData, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, unavailable(path, err)
	}

	data, err := csvparser.Parse(path, s.Settings)
	if err != nil {
		return nil, unavailable(path, err)
	}

	var missing []string
	for _, column := range required {
		if !data.HasColumn(column) {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, unavailable(path, fmt.Errorf("missing column(s): %s", strings.Join(missing, ", ")))
	}

	return data, nil
}
