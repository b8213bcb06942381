package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/salesdesk/backend/internal/contracts"
)

const tolerance = 1e-9

var missing = contracts.Number{}

func num(v float64) contracts.Number { return contracts.Num(v) }

func TestFinancialSummary_MarginEstimate(t *testing.T) {
	ds := contracts.NewDataset([]contracts.Record{
		{TransactionID: "1", FinalValue: num(100), Quantity: num(2), UnitPrice: num(40), ProfitMargin: num(0.25)},
		{TransactionID: "2", FinalValue: num(50), Quantity: num(1), UnitPrice: missing, ProfitMargin: num(0.25)},
	})

	cost, method := EstimateCost(ds)
	assert.Equal(t, CostMargin, method)
	assert.InDelta(t, 60.0, cost, tolerance)

	fin := FinancialSummary(ds)
	assert.InDelta(t, 150.0, fin.Revenue, tolerance)
	assert.InDelta(t, 60.0, fin.TotalCost, tolerance)
	assert.InDelta(t, 90.0, fin.GrossProfit, tolerance)
}

func TestFinancialSummary_DirectCostWins(t *testing.T) {
	ds := contracts.NewDataset([]contracts.Record{
		{FinalValue: num(100), Quantity: num(2), UnitPrice: num(40), ProfitMargin: num(0.25), ProductCost: num(30)},
		{FinalValue: num(50), Quantity: num(1), UnitPrice: num(10), ProfitMargin: num(0.5), ProductCost: missing},
	}, contracts.FieldProductCost)

	cost, method := EstimateCost(ds)
	assert.Equal(t, CostDirect, method)
	assert.InDelta(t, 30.0, cost, tolerance)
}

func TestEstimateCost_Fallbacks(t *testing.T) {
	records := []contracts.Record{
		{FinalValue: num(100), Quantity: num(2), UnitPrice: num(40), ProfitMargin: missing, ProductCost: missing},
		{FinalValue: num(50), Quantity: missing, UnitPrice: num(10), ProfitMargin: missing, ProductCost: missing},
	}

	tests := []struct {
		name       string
		columns    []contracts.Field
		wantCost   float64
		wantMethod CostMethod
	}{
		{
			name: "direct cost column entirely missing falls through to margin",
			columns: []contracts.Field{
				contracts.FieldFinalValue, contracts.FieldUnitPrice, contracts.FieldQuantity,
				contracts.FieldProfitMargin, contracts.FieldProductCost,
			},
			// no margin values: mean margin 0
			wantCost:   80,
			wantMethod: CostMargin,
		},
		{
			name:       "price and quantity only",
			columns:    []contracts.Field{contracts.FieldFinalValue, contracts.FieldUnitPrice, contracts.FieldQuantity},
			wantCost:   80,
			wantMethod: CostGross,
		},
		{
			name:       "nothing to estimate from",
			columns:    []contracts.Field{contracts.FieldFinalValue, contracts.FieldUnitPrice},
			wantCost:   0,
			wantMethod: CostUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := &contracts.Dataset{Records: records, Columns: map[contracts.Field]bool{}}
			for _, f := range tt.columns {
				ds.Columns[f] = true
			}

			cost, method := EstimateCost(ds)
			assert.Equal(t, tt.wantMethod, method)
			assert.InDelta(t, tt.wantCost, cost, tolerance)

			fin := FinancialSummary(ds)
			assert.InDelta(t, fin.Revenue-fin.TotalCost, fin.GrossProfit, tolerance)
		})
	}
}

func TestFinancialSummary_NoFinalValueColumn(t *testing.T) {
	ds := &contracts.Dataset{
		Records: []contracts.Record{{FinalValue: num(10)}},
		Columns: map[contracts.Field]bool{},
	}

	fin := FinancialSummary(ds)
	assert.Equal(t, contracts.FinancialSummary{}, fin)
}

func TestFinancialSummary_NegativeProfitIsValid(t *testing.T) {
	ds := contracts.NewDataset([]contracts.Record{
		{FinalValue: num(10), Quantity: num(5), UnitPrice: num(10), ProfitMargin: missing},
	})

	fin := FinancialSummary(ds)
	assert.InDelta(t, -40.0, fin.GrossProfit, tolerance)
}

func TestTransactionMetrics(t *testing.T) {
	ds := contracts.NewDataset([]contracts.Record{
		{TransactionID: "a", FinalValue: num(10)},
		{TransactionID: "a", FinalValue: num(20)},
		{TransactionID: "b", FinalValue: num(30)},
	})

	m := TransactionMetrics(ds)
	assert.InDelta(t, 60.0, m.TotalSales, tolerance)
	assert.Equal(t, 2, m.TransactionCount)
	assert.InDelta(t, 30.0, m.AvgPerTransaction, tolerance)
}

func TestTransactionMetrics_Empty(t *testing.T) {
	m := TransactionMetrics(contracts.NewDataset(nil))
	assert.Equal(t, contracts.TransactionMetrics{}, m)
}

func TestTransactionMetrics_RowCountWithoutIDColumn(t *testing.T) {
	ds := &contracts.Dataset{
		Records: []contracts.Record{{FinalValue: num(5)}, {FinalValue: num(5)}},
		Columns: map[contracts.Field]bool{contracts.FieldFinalValue: true},
	}

	m := TransactionMetrics(ds)
	assert.Equal(t, 2, m.TransactionCount)
	assert.InDelta(t, 5.0, m.AvgPerTransaction, tolerance)
}

func TestSalesSummary(t *testing.T) {
	ds := contracts.NewDataset([]contracts.Record{
		{TransactionID: "1", FinalValue: num(100), Quantity: num(2), UnitPrice: num(40), ProfitMargin: num(0.25)},
		{TransactionID: "2", FinalValue: num(50), Quantity: num(1), UnitPrice: missing, ProfitMargin: num(0.25)},
		{TransactionID: "3", FinalValue: num(50), Quantity: num(1.5), UnitPrice: missing, ProfitMargin: missing},
	})

	s := SalesSummary(ds)
	assert.InDelta(t, 200.0, s.Revenue, tolerance)
	assert.InDelta(t, 60.0, s.TotalCost, tolerance)
	assert.InDelta(t, 140.0, s.GrossProfit, tolerance)
	assert.Equal(t, 3, s.TransactionCount)
	assert.InDelta(t, 200.0/3, s.AvgPerTransaction, tolerance)
	assert.Equal(t, int64(4), s.TotalItems)
}

func TestRegionalPerformance(t *testing.T) {
	ds := contracts.NewDataset([]contracts.Record{
		{TransactionID: "1", Region: "sul", FinalValue: num(10)},
		{TransactionID: "2", Region: "norte", FinalValue: num(100)},
		{TransactionID: "2", Region: "norte", FinalValue: num(5)},
		{TransactionID: "3", Region: "sul", FinalValue: num(20)},
		{TransactionID: "4", Region: "", FinalValue: num(1000)},
	})

	got := RegionalPerformance(ds).ByRegion
	require.Len(t, got, 2)

	assert.Equal(t, contracts.RegionStat{Region: "norte", FinalValue: 105, Orders: 1}, got[0])
	assert.Equal(t, contracts.RegionStat{Region: "sul", FinalValue: 30, Orders: 2}, got[1])
}

func productDataset() *contracts.Dataset {
	return contracts.NewDataset([]contracts.Record{
		{ProductID: "p1", ProductName: "caneta", FinalValue: num(10), Quantity: num(10)},
		{ProductID: "p2", ProductName: "agenda", FinalValue: num(50), Quantity: num(1)},
		{ProductID: "p3", ProductName: "borracha", FinalValue: num(5), Quantity: num(20)},
		{ProductID: "p1", ProductName: "caneta", FinalValue: num(10), Quantity: missing},
	})
}

func productIDs(pa contracts.ProductAnalysis) []string {
	ids := make([]string, len(pa.Products))
	for i, p := range pa.Products {
		ids[i] = p.ProductID
	}
	return ids
}

func TestProductAnalysis_Sorting(t *testing.T) {
	tests := []struct {
		name   string
		sortBy string
		want   []string
	}{
		{"amount collected descending", contracts.SortByAmountCollected, []string{"p2", "p1", "p3"}},
		{"units sold descending", contracts.SortByUnitsSold, []string{"p3", "p1", "p2"}},
		{"product name ascending", contracts.SortByProductName, []string{"p2", "p3", "p1"}},
		{"unknown key falls back to amount collected", "price; DROP TABLE", []string{"p2", "p1", "p3"}},
		{"empty key falls back to amount collected", "", []string{"p2", "p1", "p3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProductAnalysis(productDataset(), 10, tt.sortBy)
			assert.Equal(t, tt.want, productIDs(got))
		})
	}
}

func TestProductAnalysis_Aggregates(t *testing.T) {
	got := ProductAnalysis(productDataset(), 1, contracts.SortByUnitsSold)
	require.Len(t, got.Products, 1)

	p := got.Products[0]
	assert.Equal(t, "p3", p.ProductID)
	assert.Equal(t, "borracha", p.ProductName)
	assert.InDelta(t, 20.0, p.UnitsSold, tolerance)
	assert.InDelta(t, 5.0, p.AmountCollected, tolerance)

	caneta := ProductAnalysis(productDataset(), 3, contracts.SortByProductName).Products[2]
	assert.InDelta(t, 20.0, caneta.AmountCollected, tolerance)
	assert.InDelta(t, 10.0, caneta.UnitsSold, tolerance)
}

func TestProductAnalysis_DefaultTopN(t *testing.T) {
	var records []contracts.Record
	for i := 0; i < 15; i++ {
		records = append(records, contracts.Record{
			ProductID:  string(rune('a' + i)),
			FinalValue: num(float64(i)),
		})
	}

	got := ProductAnalysis(contracts.NewDataset(records), 0, "")
	assert.Len(t, got.Products, DefaultTopN)
	assert.Equal(t, "o", got.Products[0].ProductID)
}

func TestProductAnalysis_EmptyDataset(t *testing.T) {
	got := ProductAnalysis(contracts.NewDataset(nil), 5, "")
	assert.NotNil(t, got.Products)
	assert.Empty(t, got.Products)
}

func TestCustomerProfile(t *testing.T) {
	ds := contracts.NewDataset([]contracts.Record{
		{CustomerID: "c1", CustomerName: "ana", CustomerAge: num(20), Gender: "F", FinalValue: num(10)},
		{CustomerID: "c2", CustomerName: "bia", CustomerAge: num(30), Gender: "F", FinalValue: num(300)},
		{CustomerID: "c1", CustomerName: "ana", CustomerAge: num(40), Gender: "M", FinalValue: num(15)},
		{CustomerID: "c3", CustomerName: "caio", CustomerAge: num(50), Gender: "", FinalValue: num(25)},
	})

	profile := CustomerProfile(ds)

	require.NotNil(t, profile.AgeStats)
	assert.Equal(t, 4, profile.AgeStats.Count)
	assert.InDelta(t, 35.0, *profile.AgeStats.Mean, tolerance)
	assert.InDelta(t, 20.0, *profile.AgeStats.Min, tolerance)
	assert.InDelta(t, 50.0, *profile.AgeStats.Max, tolerance)

	assert.Equal(t, map[string]int{"F": 2, "M": 1}, profile.Gender)

	require.Len(t, profile.TopCustomers, 3)
	assert.Equal(t, contracts.CustomerStat{CustomerID: "c2", CustomerName: "bia", FinalValue: 300}, profile.TopCustomers[0])
	assert.Equal(t, "c1", profile.TopCustomers[1].CustomerID)
	assert.InDelta(t, 25.0, profile.TopCustomers[1].FinalValue, tolerance)
}

func TestCustomerProfile_TopTen(t *testing.T) {
	var records []contracts.Record
	for i := 0; i < 12; i++ {
		records = append(records, contracts.Record{
			CustomerID:   string(rune('a' + i)),
			CustomerName: "cliente",
			FinalValue:   num(float64(i)),
		})
	}

	profile := CustomerProfile(contracts.NewDataset(records))
	assert.Len(t, profile.TopCustomers, TopCustomerCount)
	assert.Equal(t, "l", profile.TopCustomers[0].CustomerID)
}

func TestCustomerProfile_SkipsCustomersWithoutName(t *testing.T) {
	ds := contracts.NewDataset([]contracts.Record{
		{CustomerID: "c1", CustomerName: "", FinalValue: num(500)},
		{CustomerID: "c2", CustomerName: "bia", FinalValue: num(20)},
		{CustomerID: "", CustomerName: "caio", FinalValue: num(900)},
	})

	profile := CustomerProfile(ds)
	require.Len(t, profile.TopCustomers, 1)
	assert.Equal(t, "c2", profile.TopCustomers[0].CustomerID)
}

func TestCustomerProfile_WithoutAgeColumn(t *testing.T) {
	ds := &contracts.Dataset{Columns: map[contracts.Field]bool{}}

	profile := CustomerProfile(ds)
	assert.Nil(t, profile.AgeStats)
	assert.Empty(t, profile.Gender)
	assert.Empty(t, profile.TopCustomers)
}

func TestFinancialMetrics_MatchesSummary(t *testing.T) {
	ds := productDataset()

	fin := FinancialSummary(ds)
	m := FinancialMetrics(ds)

	assert.Equal(t, fin.Revenue, m.Revenue)
	assert.Equal(t, fin.TotalCost, m.TotalCost)
	assert.Equal(t, fin.GrossProfit, m.GrossProfit)
}

func TestDescribe(t *testing.T) {
	stats := Describe([]float64{4, 1, 3, 2})

	assert.Equal(t, 4, stats.Count)
	assert.InDelta(t, 2.5, *stats.Mean, tolerance)
	assert.InDelta(t, 1.2909944487358056, *stats.Std, 1e-12)
	assert.InDelta(t, 1.0, *stats.Min, tolerance)
	assert.InDelta(t, 1.75, *stats.P25, tolerance)
	assert.InDelta(t, 2.5, *stats.P50, tolerance)
	assert.InDelta(t, 3.25, *stats.P75, tolerance)
	assert.InDelta(t, 4.0, *stats.Max, tolerance)
}

func TestDescribe_Degenerate(t *testing.T) {
	empty := Describe(nil)
	assert.Equal(t, 0, empty.Count)
	assert.Nil(t, empty.Mean)
	assert.Nil(t, empty.Max)

	single := Describe([]float64{7})
	assert.Equal(t, 1, single.Count)
	assert.Nil(t, single.Std)
	assert.InDelta(t, 7.0, *single.P75, tolerance)
}
