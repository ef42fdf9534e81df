package validation

import (
	"fmt"

	"github.com/ginjaninja78/revenue-guard/internal/inventory"
	"github.com/ginjaninja78/revenue-guard/internal/types"
)

// CatalogValidators returns custom validators that check billed items
// against the parts catalog: the item id must exist, and the billed name
// and price must match the catalog entry.
func CatalogValidators(catalog *inventory.Catalog) map[string]CustomValidatorFunc {
	return map[string]CustomValidatorFunc{
		types.ColumnItemID: func(value string, _ types.BillingRecord) string {
			if _, ok := catalog.Lookup(value); !ok {
				return fmt.Sprintf("Item '%s' is not in the inventory", value)
			}
			return ""
		},
		types.ColumnItemName: func(value string, record types.BillingRecord) string {
			part, ok := catalog.Lookup(record.ItemID)
			if ok && part.Name != value {
				return fmt.Sprintf("Item %s is billed as '%s' but the inventory lists '%s'", record.ItemID, value, part.Name)
			}
			return ""
		},
		types.ColumnBilledPrice: func(value string, record types.BillingRecord) string {
			part, ok := catalog.Lookup(record.ItemID)
			if ok && !part.Price.Equal(record.BilledPrice) {
				return fmt.Sprintf("Item %s is billed at %s but the inventory price is %s",
					record.ItemID, record.BilledPrice.StringFixed(2), part.Price.StringFixed(2))
			}
			return ""
		},
	}
}

// NewCatalogValidator returns a validator with the default rules plus the
// catalog checks.
func NewCatalogValidator(catalog *inventory.Catalog) *Validator {
	options := DefaultValidationOptions()
	options.CustomValidators = CatalogValidators(catalog)
	return NewValidatorWithOptions(options)
}
