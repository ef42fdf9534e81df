package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/revenue-guard/internal/types"
)

func validRecord() types.BillingRecord {
	return types.BillingRecord{
		RepairOrderID: "RO-500",
		ItemID:        "P101",
		ItemName:      "Oil Filter",
		BilledPrice:   decimal.RequireFromString("85.00"),
	}
}

func TestValidateAll(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *types.BillingRecord)
		field  string
		rule   string
	}{
		{name: "missing ro", mutate: func(r *types.BillingRecord) { r.RepairOrderID = "" }, field: types.ColumnRepairOrderID, rule: "required"},
		{name: "missing item id", mutate: func(r *types.BillingRecord) { r.ItemID = " " }, field: types.ColumnItemID, rule: "required"},
		{name: "item id punctuation", mutate: func(r *types.BillingRecord) { r.ItemID = "P-101" }, field: types.ColumnItemID, rule: "data_type"},
		{name: "missing name", mutate: func(r *types.BillingRecord) { r.ItemName = "" }, field: types.ColumnItemName, rule: "required"},
		{name: "long name", mutate: func(r *types.BillingRecord) { r.ItemName = strings.Repeat("x", 101) }, field: types.ColumnItemName, rule: "max_length"},
		{name: "three decimal places", mutate: func(r *types.BillingRecord) { r.BilledPrice = decimal.RequireFromString("85.125") }, field: types.ColumnBilledPrice, rule: "data_type"},
		{name: "negative price", mutate: func(r *types.BillingRecord) { r.BilledPrice = decimal.RequireFromString("-5.00") }, field: types.ColumnBilledPrice, rule: "non_negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := validRecord()
			tt.mutate(&record)

			result := NewValidator().ValidateAll([]types.BillingRecord{validRecord(), record})

			assert.False(t, result.IsValid)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, 1, result.ErrorCount)
			assert.Equal(t, 2, result.RecordsValidated)

			err := result.Errors[0]
			assert.Equal(t, tt.field, err.Field)
			assert.Equal(t, tt.rule, err.Rule)
			assert.Equal(t, 2, err.RowNumber)
			assert.Equal(t, SeverityError, err.Severity)
		})
	}
}

func TestValidateAllValid(t *testing.T) {
	record := validRecord()
	record.BilledPrice = decimal.RequireFromString("1200.50")

	result := NewValidator().ValidateAll([]types.BillingRecord{validRecord(), record})
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 8, result.FieldsValidated)
}

func TestValidateInvoice(t *testing.T) {
	records := []types.BillingRecord{validRecord()}

	t.Run("no billed items warns", func(t *testing.T) {
		result := NewValidator().ValidateInvoice("RO-600", records)
		assert.True(t, result.IsValid)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, SeverityWarning, result.Errors[0].Severity)
		assert.Equal(t, 1, result.WarningCount)
		assert.Contains(t, result.Messages()[0], "no billed items for repair order")
		assert.Contains(t, result.Messages()[0], "RO-600")
	})

	t.Run("warnings as errors", func(t *testing.T) {
		v := NewValidatorWithOptions(ValidationOptions{TreatWarningsAsErrors: true})
		assert.False(t, v.ValidateInvoice("RO-600", records).IsValid)
	})

	t.Run("only the requested repair order is checked", func(t *testing.T) {
		bad := validRecord()
		bad.RepairOrderID = "RO-700"
		bad.ItemName = ""

		result := NewValidator().ValidateInvoice("RO-500", append(records, bad))
		assert.True(t, result.IsValid)
		assert.Empty(t, result.Errors)
	})
}

func TestStopOnFirstError(t *testing.T) {
	bad := types.BillingRecord{}
	v := NewValidatorWithOptions(ValidationOptions{StopOnFirstError: true})

	result := v.ValidateAll([]types.BillingRecord{bad, bad})
	assert.Equal(t, 1, result.ErrorCount)
	assert.Equal(t, "required", result.Errors[0].Rule)
	assert.False(t, result.IsValid)
}

func TestCustomValidator(t *testing.T) {
	v := NewValidatorWithOptions(ValidationOptions{
		CustomValidators: map[string]CustomValidatorFunc{
			types.ColumnItemID: func(value string, _ types.BillingRecord) string {
				if !strings.HasPrefix(value, "P") {
					return "inventory ids start with P"
				}
				return ""
			},
		},
	})

	record := validRecord()
	record.ItemID = "X101"

	errs := v.ValidateRecord(record, 1)
	require.Len(t, errs, 1)
	assert.Equal(t, "custom", errs[0].Rule)
}

func TestValidateDecimal(t *testing.T) {
	assert.Empty(t, validateDecimal("85", "decimal(2)"))
	assert.Empty(t, validateDecimal("85.10", "decimal(2)"))
	assert.Empty(t, validateDecimal("85.100", "decimal(2)"))
	assert.NotEmpty(t, validateDecimal("85.101", "decimal(2)"))
	assert.NotEmpty(t, validateDecimal("abc", "decimal"))
	assert.Empty(t, validateDecimal("85.101", "decimal"))
}

func TestFormatErrorsAndLog(t *testing.T) {
	assert.Equal(t, "No validation errors.", FormatErrors(nil))

	record := validRecord()
	record.ItemName = ""
	errs := NewValidator().ValidateAll([]types.BillingRecord{record}).Errors
	require.Len(t, errs, 1)

	formatted := FormatErrors(errs)
	assert.Contains(t, formatted, "1 error(s)")
	assert.Contains(t, formatted, "[ERROR] RO RO-500, Row 1, Field 'item_name'")

	path := filepath.Join(t.TempDir(), "validation.log")
	require.NoError(t, WriteErrorLog(errs, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Revenue Guard validation log")
	assert.Contains(t, string(raw), formatted)
}
