package ingest

import (
	"fmt"

	"github.com/wonny/salesdesk/backend/internal/contracts"
)

// Discount percent bounds (inclusive)
const (
	MinDiscountPercent = 0.0
	MaxDiscountPercent = 100.0
)

// Audit flags out-of-range values. Warnings are advisory: rows are never
// removed and the dataset is not modified.
func Audit(ds *contracts.Dataset) []string {
	var warnings []string

	if ds.Has(contracts.FieldDiscountPercent) {
		outOfRange := 0
		for i := range ds.Records {
			d := ds.Records[i].DiscountPercent
			if d.Valid && (d.Value < MinDiscountPercent || d.Value > MaxDiscountPercent) {
				outOfRange++
			}
		}
		if outOfRange > 0 {
			warnings = append(warnings, fmt.Sprintf("discount percent outside 0-100: %d rows", outOfRange))
		}
	}

	if ds.Has(contracts.FieldUnitPrice) && anyNegative(ds, func(r *contracts.Record) contracts.Number { return r.UnitPrice }) {
		warnings = append(warnings, "unit price contains negative values")
	}
	if ds.Has(contracts.FieldQuantity) && anyNegative(ds, func(r *contracts.Record) contracts.Number { return r.Quantity }) {
		warnings = append(warnings, "quantity contains negative values")
	}

	return warnings
}

func anyNegative(ds *contracts.Dataset, get func(*contracts.Record) contracts.Number) bool {
	for i := range ds.Records {
		if n := get(&ds.Records[i]); n.Valid && n.Value < 0 {
			return true
		}
	}
	return false
}
