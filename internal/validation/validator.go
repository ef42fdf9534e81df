// =============================================================================
// Revenue Guard - Validation Engine
// =============================================================================
//
// This module validates billing records before they are written to the
// ledger, and powers the digital invoice audit ("Scan Invoice").
//
// It checks:
//   - Required fields (ro_id, item_id, item_name, billed_price)
//   - Character length limits
//   - Data types (alphanumeric ids, decimal prices with 2 places)
//   - Non-negative prices
//   - Invoice-level rules (a repair order with no billed items)
//
// ERROR HANDLING:
//   - Errors are collected, not thrown immediately
//   - Each error includes its context (repair order, row, field, value)
//   - Errors are either warnings (continue) or errors (reject the submission)
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/revenue-guard/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation error.
type ValidationError struct {
	// Severity indicates the severity of the error.
	// "error" = the record must not be saved
	// "warning" = reported, processing can continue
	Severity string

	// Field is the name of the field that failed validation.
	Field string

	// Value is the actual value that failed validation.
	Value string

	// Rule is the validation rule that was violated.
	Rule string

	// Message is a human-readable error message.
	Message string

	// RepairOrderID is the repair order the record belongs to.
	RepairOrderID string

	// RowNumber is the 1-based position of the record in the ledger.
	// Zero for invoice-level errors.
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.RowNumber == 0 {
		return fmt.Sprintf("[%s] RO %s: %s", strings.ToUpper(e.Severity), e.RepairOrderID, e.Message)
	}
	return fmt.Sprintf("[%s] RO %s, Row %d, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.RepairOrderID,
		e.RowNumber,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all validation errors (including warnings).
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// FieldsValidated is the total number of fields validated.
	FieldsValidated int

	// RecordsValidated is the total number of records validated.
	RecordsValidated int
}

// Messages returns the formatted error strings, in order.
func (r *ValidationResult) Messages() []string {
	messages := make([]string, len(r.Errors))
	for i, err := range r.Errors {
		messages[i] = err.Error()
	}
	return messages
}

func (r *ValidationResult) add(err *ValidationError, options ValidationOptions) {
	r.Errors = append(r.Errors, err)

	if err.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
		return
	}

	r.WarningCount++
	if options.TreatWarningsAsErrors {
		r.IsValid = false
	}
}

// =============================================================================
// FIELD RULES
// =============================================================================

// FieldRule describes how one BillingRecord field is validated.
type FieldRule struct {
	// Field is the ledger column name.
	Field string

	// Required rejects empty values.
	Required bool

	// MaxLength limits the value length in characters. Zero means no limit.
	MaxLength int

	// DataType is one of "string", "alphanumeric", "decimal(N)".
	DataType string

	// NonNegative rejects prices below zero.
	NonNegative bool
}

// DefaultRules returns the rules applied to billing records.
func DefaultRules() []FieldRule {
	return []FieldRule{
		{Field: types.ColumnRepairOrderID, Required: true, MaxLength: 50},
		{Field: types.ColumnItemID, Required: true, MaxLength: 20, DataType: "alphanumeric"},
		{Field: types.ColumnItemName, Required: true, MaxLength: 100},
		{Field: types.ColumnBilledPrice, Required: true, DataType: "decimal(2)", NonNegative: true},
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator performs validation on billing records.
type Validator struct {
	rules   []FieldRule
	options ValidationOptions
}

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// StopOnFirstError stops validation after the first fatal error.
	// Default: false
	StopOnFirstError bool

	// TreatWarningsAsErrors treats warnings as fatal errors.
	// Default: false
	TreatWarningsAsErrors bool

	// CustomValidators is a map of custom validation functions.
	// Key is the field name, value is the validation function.
	CustomValidators map[string]CustomValidatorFunc
}

// CustomValidatorFunc is a function type for custom validators.
// It takes the field value and returns an error message if validation fails.
type CustomValidatorFunc func(value string, record types.BillingRecord) string

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		CustomValidators: make(map[string]CustomValidatorFunc),
	}
}

// NewValidator creates a new Validator with the default rules.
func NewValidator() *Validator {
	return &Validator{
		rules:   DefaultRules(),
		options: DefaultValidationOptions(),
	}
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	return &Validator{
		rules:   DefaultRules(),
		options: options,
	}
}

// =============================================================================
// MAIN VALIDATION FUNCTIONS
// =============================================================================

// ValidateAll validates every record and returns a detailed result.
func (v *Validator) ValidateAll(records []types.BillingRecord) *ValidationResult {
	result := &ValidationResult{
		IsValid:          true,
		RecordsValidated: len(records),
	}

	for i := range records {
		for _, err := range v.ValidateRecord(records[i], i+1) {
			result.add(err, v.options)
			if err.Severity == SeverityError && v.options.StopOnFirstError {
				return result
			}
		}
		result.FieldsValidated += len(v.rules)
	}

	return result
}

// ValidateInvoice runs the digital invoice audit for one repair order: the
// records of roID are validated, and an invoice without billed items is
// reported as a warning.
func (v *Validator) ValidateInvoice(roID string, records []types.BillingRecord) *ValidationResult {
	var invoice []types.BillingRecord
	for _, r := range records {
		if r.RepairOrderID == roID {
			invoice = append(invoice, r)
		}
	}

	result := v.ValidateAll(invoice)
	if len(invoice) == 0 {
		result.add(&ValidationError{
			Severity:      SeverityWarning,
			Field:         types.ColumnRepairOrderID,
			Value:         roID,
			Rule:          "invoice_items",
			Message:       "no billed items for repair order",
			RepairOrderID: roID,
		}, v.options)
	}

	return result
}

// ValidateRecord validates a single record. row is its 1-based position.
func (v *Validator) ValidateRecord(record types.BillingRecord, row int) []*ValidationError {
	var errors []*ValidationError

	values := fieldValues(record)
	for _, rule := range v.rules {
		value := values[rule.Field]

		for _, err := range v.ValidateField(value, rule) {
			err.RepairOrderID = record.RepairOrderID
			err.RowNumber = row
			errors = append(errors, err)
		}

		if customValidator, exists := v.options.CustomValidators[rule.Field]; exists {
			if errMsg := customValidator(value, record); errMsg != "" {
				errors = append(errors, &ValidationError{
					Severity:      SeverityError,
					Field:         rule.Field,
					Value:         value,
					Rule:          "custom",
					Message:       errMsg,
					RepairOrderID: record.RepairOrderID,
					RowNumber:     row,
				})
			}
		}
	}

	return errors
}

// ValidateField validates a single field value against its rule.
func (v *Validator) ValidateField(value string, rule FieldRule) []*ValidationError {
	var errors []*ValidationError

	newError := func(ruleName, message string) *ValidationError {
		return &ValidationError{
			Severity: SeverityError,
			Field:    rule.Field,
			Value:    value,
			Rule:     ruleName,
			Message:  message,
		}
	}

	// =========================================================================
	// REQUIRED FIELD VALIDATION
	// =========================================================================

	if strings.TrimSpace(value) == "" {
		if rule.Required {
			errors = append(errors, newError("required", fmt.Sprintf("Required field '%s' is empty", rule.Field)))
		}
		return errors
	}

	// =========================================================================
	// MAX LENGTH VALIDATION
	// =========================================================================

	if length := len([]rune(value)); rule.MaxLength > 0 && length > rule.MaxLength {
		errors = append(errors, newError("max_length",
			fmt.Sprintf("Value exceeds maximum length of %d characters (actual: %d)", rule.MaxLength, length)))
	}

	// =========================================================================
	// DATA TYPE VALIDATION
	// =========================================================================

	if typeError := validateDataType(value, rule.DataType); typeError != "" {
		errors = append(errors, newError("data_type", typeError))
		return errors
	}

	// =========================================================================
	// RANGE VALIDATION
	// =========================================================================

	if rule.NonNegative {
		if d, err := decimal.NewFromString(strings.TrimSpace(value)); err == nil && d.IsNegative() {
			errors = append(errors, newError("non_negative", fmt.Sprintf("Value '%s' must not be negative", value)))
		}
	}

	return errors
}

// fieldValues renders a record as ledger column values.
func fieldValues(record types.BillingRecord) map[string]string {
	return map[string]string{
		types.ColumnRepairOrderID: record.RepairOrderID,
		types.ColumnItemID:        record.ItemID,
		types.ColumnItemName:      record.ItemName,
		types.ColumnBilledPrice:   record.BilledPrice.String(),
	}
}

// =============================================================================
// DATA TYPE VALIDATORS
// =============================================================================

// validateDataType validates a value against a data type.
//
// SUPPORTED DATA TYPES:
//   - string: Any text value (always valid)
//   - alphanumeric: Letters and digits only
//   - decimal: Decimal numbers, optionally with a maximum number of places
func validateDataType(value, dataType string) string {
	switch {
	case dataType == "string" || dataType == "":
		return ""
	case dataType == "alphanumeric":
		return validateAlphanumeric(value)
	case strings.HasPrefix(dataType, "decimal"):
		return validateDecimal(value, dataType)
	default:
		// Unknown type, treat as string.
		return ""
	}
}

// validateDecimal validates that a value is a valid decimal number.
// The optional precision in parentheses, e.g. "decimal(2)", specifies the
// maximum number of decimal places.
func validateDecimal(value, dataType string) string {
	value = strings.TrimSpace(value)

	d, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Sprintf("Value '%s' is not a valid decimal number", value)
	}

	var precision int32
	if _, err := fmt.Sscanf(extractParenthesesContent(dataType), "%d", &precision); err == nil && precision >= 0 {
		// Exponent is -places for a value with trailing digits after the point.
		if -d.Exponent() > precision && !d.Equal(d.Round(precision)) {
			return fmt.Sprintf("Value '%s' has more than %d decimal places", value, precision)
		}
	}

	return ""
}

// validateAlphanumeric validates that a value contains only letters and digits.
func validateAlphanumeric(value string) string {
	for _, r := range value {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return fmt.Sprintf("Value '%s' contains non-alphanumeric characters", value)
		}
	}
	return ""
}

// extractParenthesesContent extracts content between parentheses.
// Example: "decimal(2)" -> "2"
func extractParenthesesContent(s string) string {
	start := strings.Index(s, "(")
	end := strings.Index(s, ")")

	if start != -1 && end != -1 && end > start {
		return s[start+1 : end]
	}

	return ""
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes validation errors to a log file, replacing any
// previous content.
//
// PARAMETERS:
//   - errors: The validation errors to write.
//   - filePath: The path to the output file.
//
// RETURNS:
//   - An error if writing fails.
func WriteErrorLog(errors []*ValidationError, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "Revenue Guard validation log\nGenerated: %s\n\n", time.Now().Format(time.RFC3339))
	writer.WriteString(FormatErrors(errors))

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return file.Close()
}
