package analytics

import (
	"github.com/wonny/salesdesk/backend/internal/contracts"
)

// CostMethod names which branch of the cost estimation policy was used
type CostMethod string

const (
	CostDirect      CostMethod = "direct"      // custo_produto 합계
	CostMargin      CostMethod = "margin"      // 총액 × (1 - 평균 마진)
	CostGross       CostMethod = "gross"       // 단가 × 수량
	CostUnavailable CostMethod = "unavailable" // 추정 불가
)

// FinancialSummary derives revenue, total cost and gross profit.
// It never fails; every path yields a numeric triple and
// GrossProfit is always Revenue - TotalCost (it may be negative).
// ⭐ SSOT: 매출/원가/이익 계산은 여기서만
func FinancialSummary(ds *contracts.Dataset) contracts.FinancialSummary {
	revenue := 0.0
	if ds.Has(contracts.FieldFinalValue) {
		revenue = sum(ds, finalValue)
	}

	cost, _ := EstimateCost(ds)

	return contracts.FinancialSummary{
		Revenue:     revenue,
		TotalCost:   cost,
		GrossProfit: revenue - cost,
	}
}

// EstimateCost returns the total cost and the policy branch that produced it.
//
// Priority:
//  1. direct cost column present and not entirely missing: sum of it
//  2. unit price, quantity and margin present: gross × (1 - mean margin),
//     one dataset-wide mean applied to the dataset-wide gross value
//  3. unit price and quantity present: gross
//  4. otherwise 0
//
// Gross is Σ(unit price × quantity) with a missing factor counted as 0.
func EstimateCost(ds *contracts.Dataset) (float64, CostMethod) {
	if ds.Has(contracts.FieldProductCost) && anyValid(ds, productCost) {
		return sum(ds, productCost), CostDirect
	}

	hasGross := ds.Has(contracts.FieldUnitPrice) && ds.Has(contracts.FieldQuantity)

	if hasGross && ds.Has(contracts.FieldProfitMargin) {
		meanMargin, _ := mean(ds, profitMargin)
		return grossValue(ds) * (1.0 - meanMargin), CostMargin
	}

	if hasGross {
		return grossValue(ds), CostGross
	}

	return 0.0, CostUnavailable
}

// TransactionMetrics computes total sales, the transaction count (unique
// transaction ids, or rows when ids are absent) and the average per
// transaction (0 when there are no transactions).
func TransactionMetrics(ds *contracts.Dataset) contracts.TransactionMetrics {
	total := 0.0
	if ds.Has(contracts.FieldFinalValue) {
		total = sum(ds, finalValue)
	}

	count := ds.Len()
	if ds.Has(contracts.FieldTransactionID) {
		count = uniqueTransactions(ds.Records)
	}

	avg := 0.0
	if count > 0 {
		avg = total / float64(count)
	}

	return contracts.TransactionMetrics{
		TotalSales:        total,
		AvgPerTransaction: avg,
		TransactionCount:  count,
	}
}

// grossValue is Σ(unit price × quantity), missing factors counted as 0
func grossValue(ds *contracts.Dataset) float64 {
	gross := 0.0
	for i := range ds.Records {
		r := &ds.Records[i]
		gross += r.UnitPrice.Or(0) * r.Quantity.Or(0)
	}
	return gross
}

func uniqueTransactions(records []contracts.Record) int {
	seen := make(map[string]struct{}, len(records))
	for i := range records {
		if id := records[i].TransactionID; id != "" {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

// Column accessors
func finalValue(r *contracts.Record) contracts.Number   { return r.FinalValue }
func quantity(r *contracts.Record) contracts.Number     { return r.Quantity }
func productCost(r *contracts.Record) contracts.Number  { return r.ProductCost }
func profitMargin(r *contracts.Record) contracts.Number { return r.ProfitMargin }
func customerAge(r *contracts.Record) contracts.Number  { return r.CustomerAge }

// sum adds valid values; missing cells are skipped
func sum(ds *contracts.Dataset, get func(*contracts.Record) contracts.Number) float64 {
	total := 0.0
	for i := range ds.Records {
		if n := get(&ds.Records[i]); n.Valid {
			total += n.Value
		}
	}
	return total
}

// mean averages valid values; ok is false (and the mean 0) when none exist
func mean(ds *contracts.Dataset, get func(*contracts.Record) contracts.Number) (float64, bool) {
	total, n := 0.0, 0
	for i := range ds.Records {
		if v := get(&ds.Records[i]); v.Valid {
			total += v.Value
			n++
		}
	}
	if n == 0 {
		return 0.0, false
	}
	return total / float64(n), true
}

func anyValid(ds *contracts.Dataset, get func(*contracts.Record) contracts.Number) bool {
	for i := range ds.Records {
		if get(&ds.Records[i]).Valid {
			return true
		}
	}
	return false
}

func values(ds *contracts.Dataset, get func(*contracts.Record) contracts.Number) []float64 {
	out := make([]float64, 0, len(ds.Records))
	for i := range ds.Records {
		if n := get(&ds.Records[i]); n.Valid {
			out = append(out, n.Value)
		}
	}
	return out
}
