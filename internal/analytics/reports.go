package analytics

import (
	"sort"

	"github.com/wonny/salesdesk/backend/internal/contracts"
)

// Report defaults
const (
	DefaultTopN      = 10
	TopCustomerCount = 10
)

// SalesSummary is the headline report: financial triple, transaction
// metrics and total items sold
func SalesSummary(ds *contracts.Dataset) contracts.SalesSummary {
	fin := FinancialSummary(ds)
	trans := TransactionMetrics(ds)

	var items int64
	if ds.Has(contracts.FieldQuantity) {
		items = int64(sum(ds, quantity))
	}

	return contracts.SalesSummary{
		Revenue:           fin.Revenue,
		TotalCost:         fin.TotalCost,
		GrossProfit:       fin.GrossProfit,
		TransactionCount:  trans.TransactionCount,
		AvgPerTransaction: trans.AvgPerTransaction,
		TotalItems:        items,
	}
}

// RegionalPerformance sums final value and counts distinct transactions per
// region, highest value first. Rows without a region are not grouped.
func RegionalPerformance(ds *contracts.Dataset) contracts.RegionalPerformance {
	type acc struct {
		value float64
		ids   map[string]struct{}
	}

	groups := make(map[string]*acc)
	for i := range ds.Records {
		r := &ds.Records[i]
		if r.Region == "" {
			continue
		}
		g, ok := groups[r.Region]
		if !ok {
			g = &acc{ids: make(map[string]struct{})}
			groups[r.Region] = g
		}
		g.value += r.FinalValue.Or(0)
		if r.TransactionID != "" {
			g.ids[r.TransactionID] = struct{}{}
		}
	}

	stats := make([]contracts.RegionStat, 0, len(groups))
	for region, g := range groups {
		stats = append(stats, contracts.RegionStat{
			Region:     region,
			FinalValue: g.value,
			Orders:     len(g.ids),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].FinalValue != stats[j].FinalValue {
			return stats[i].FinalValue > stats[j].FinalValue
		}
		return stats[i].Region < stats[j].Region
	})

	return contracts.RegionalPerformance{ByRegion: stats}
}

// NormalizeSortKey validates a product sort key against the whitelist;
// anything unknown falls back to amount collected
func NormalizeSortKey(sortBy string) string {
	switch sortBy {
	case contracts.SortByAmountCollected, contracts.SortByUnitsSold, contracts.SortByProductName:
		return sortBy
	}
	return contracts.SortByAmountCollected
}

// ProductAnalysis groups sales by (product id, product name) and ranks them.
// Numeric keys sort descending, product name ascending. topN <= 0 means
// DefaultTopN.
func ProductAnalysis(ds *contracts.Dataset, topN int, sortBy string) contracts.ProductAnalysis {
	if topN <= 0 {
		topN = DefaultTopN
	}
	sortBy = NormalizeSortKey(sortBy)

	type key struct{ id, name string }
	index := make(map[key]int)
	var products []contracts.ProductStat

	for i := range ds.Records {
		r := &ds.Records[i]
		if r.ProductID == "" {
			continue
		}
		k := key{r.ProductID, r.ProductName}
		pos, ok := index[k]
		if !ok {
			pos = len(products)
			index[k] = pos
			products = append(products, contracts.ProductStat{ProductID: k.id, ProductName: k.name})
		}
		products[pos].AmountCollected += r.FinalValue.Or(0)
		products[pos].UnitsSold += r.Quantity.Or(0)
	}

	// 동률일 때 결과가 흔들리지 않도록 키 순서로 먼저 정렬
	sort.Slice(products, func(i, j int) bool {
		if products[i].ProductID != products[j].ProductID {
			return products[i].ProductID < products[j].ProductID
		}
		return products[i].ProductName < products[j].ProductName
	})

	sort.SliceStable(products, func(i, j int) bool {
		switch sortBy {
		case contracts.SortByUnitsSold:
			return products[i].UnitsSold > products[j].UnitsSold
		case contracts.SortByProductName:
			return products[i].ProductName < products[j].ProductName
		default:
			return products[i].AmountCollected > products[j].AmountCollected
		}
	})

	if len(products) > topN {
		products = products[:topN]
	}
	if products == nil {
		products = []contracts.ProductStat{}
	}

	return contracts.ProductAnalysis{Products: products}
}

// CustomerProfile describes customer age, gender mix and the top customers
// by total final value
func CustomerProfile(ds *contracts.Dataset) contracts.CustomerProfile {
	profile := contracts.CustomerProfile{
		Gender:       map[string]int{},
		TopCustomers: []contracts.CustomerStat{},
	}

	if ds.Has(contracts.FieldCustomerAge) {
		profile.AgeStats = Describe(values(ds, customerAge))
	}

	if ds.Has(contracts.FieldCustomerGender) {
		for i := range ds.Records {
			if g := ds.Records[i].Gender; g != "" {
				profile.Gender[g]++
			}
		}
	}

	profile.TopCustomers = topCustomers(ds.Records, TopCustomerCount)

	return profile
}

func topCustomers(records []contracts.Record, n int) []contracts.CustomerStat {
	type key struct{ id, name string }
	index := make(map[key]int)
	customers := []contracts.CustomerStat{}

	for i := range records {
		r := &records[i]
		// id와 이름이 모두 있어야 집계
		if r.CustomerID == "" || r.CustomerName == "" {
			continue
		}
		k := key{r.CustomerID, r.CustomerName}
		pos, ok := index[k]
		if !ok {
			pos = len(customers)
			index[k] = pos
			customers = append(customers, contracts.CustomerStat{CustomerID: k.id, CustomerName: k.name})
		}
		customers[pos].FinalValue += r.FinalValue.Or(0)
	}

	sort.Slice(customers, func(i, j int) bool {
		if customers[i].FinalValue != customers[j].FinalValue {
			return customers[i].FinalValue > customers[j].FinalValue
		}
		if customers[i].CustomerID != customers[j].CustomerID {
			return customers[i].CustomerID < customers[j].CustomerID
		}
		return customers[i].CustomerName < customers[j].CustomerName
	})

	if len(customers) > n {
		customers = customers[:n]
	}
	return customers
}

// FinancialMetrics is the plain numeric projection of FinancialSummary
func FinancialMetrics(ds *contracts.Dataset) contracts.FinancialMetrics {
	fin := FinancialSummary(ds)
	return contracts.FinancialMetrics{
		GrossProfit: fin.GrossProfit,
		Revenue:     fin.Revenue,
		TotalCost:   fin.TotalCost,
	}
}
