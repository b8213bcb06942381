package ingest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/salesdesk/backend/internal/contracts"
)

// Sanitize drops rows that break critical invariants and standardizes soft
// fields. It returns a new dataset; the input is not modified.
//
// Passes, in order:
//  1. drop rows without transaction id
//  2. drop rows without final value
//  3. impute missing ages with the median age (0 when none parse)
//  4. trim + lowercase the designated text fields
func Sanitize(ds *contracts.Dataset) (*contracts.Dataset, []string, error) {
	if !ds.Has(contracts.FieldFinalValue) {
		return nil, nil, &DataIntegrityError{Field: string(contracts.FieldFinalValue)}
	}

	var warnings []string
	records := make([]contracts.Record, len(ds.Records))
	copy(records, ds.Records)

	if ds.Has(contracts.FieldTransactionID) {
		var removed int
		records, removed = dropWhere(records, func(r *contracts.Record) bool {
			return r.TransactionID == ""
		})
		if removed > 0 {
			warnings = append(warnings, fmt.Sprintf("removed %d rows without transaction id", removed))
		}
	}

	var removed int
	records, removed = dropWhere(records, func(r *contracts.Record) bool {
		return !r.FinalValue.Valid
	})
	if removed > 0 {
		warnings = append(warnings, fmt.Sprintf("removed %d rows without final value", removed))
	}

	if ds.Has(contracts.FieldCustomerAge) {
		imputeAge(records)
	}

	normalizeText(records, ds)

	cols := make(map[contracts.Field]bool, len(ds.Columns))
	for f, ok := range ds.Columns {
		cols[f] = ok
	}

	return &contracts.Dataset{Records: records, Columns: cols}, warnings, nil
}

// dropWhere filters in place and returns the number of removed rows
func dropWhere(records []contracts.Record, drop func(*contracts.Record) bool) ([]contracts.Record, int) {
	kept := records[:0]
	for i := range records {
		if !drop(&records[i]) {
			kept = append(kept, records[i])
		}
	}
	return kept, len(records) - len(kept)
}

// imputeAge fills missing ages with the median and truncates every age to
// an integer
func imputeAge(records []contracts.Record) {
	ages := make([]float64, 0, len(records))
	for i := range records {
		if records[i].CustomerAge.Valid {
			ages = append(ages, records[i].CustomerAge.Value)
		}
	}

	fill := 0.0
	if len(ages) > 0 {
		fill = truncate(median(ages))
	}

	for i := range records {
		age := &records[i].CustomerAge
		if age.Valid {
			age.Value = truncate(age.Value)
			continue
		}
		*age = contracts.Num(fill)
	}
}

// median sorts values in place
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

func truncate(v float64) float64 {
	return float64(int64(v))
}

// textFields are the columns standardized to trimmed lowercase
var textFields = []contracts.Field{
	contracts.FieldSaleChannel,
	contracts.FieldPaymentMethod,
	contracts.FieldCustomerCity,
	contracts.FieldCustomerState,
	contracts.FieldProductName,
	contracts.FieldCategory,
	contracts.FieldBrand,
}

func normalizeText(records []contracts.Record, ds *contracts.Dataset) {
	for _, f := range textFields {
		if !ds.Has(f) {
			continue
		}
		for i := range records {
			if p := textField(&records[i], f); p != nil {
				*p = strings.ToLower(strings.TrimSpace(*p))
			}
		}
	}
}

func textField(r *contracts.Record, f contracts.Field) *string {
	switch f {
	case contracts.FieldSaleChannel:
		return &r.SaleChannel
	case contracts.FieldPaymentMethod:
		return &r.PaymentMethod
	case contracts.FieldCustomerCity:
		return &r.City
	case contracts.FieldCustomerState:
		return &r.State
	case contracts.FieldProductName:
		return &r.ProductName
	case contracts.FieldCategory:
		return &r.Category
	case contracts.FieldBrand:
		return &r.Brand
	}
	return nil
}
