package contracts

// FinancialSummary is the revenue / cost / profit triple
type FinancialSummary struct {
	Revenue     float64 `json:"revenue"`
	TotalCost   float64 `json:"total_cost"`
	GrossProfit float64 `json:"gross_profit"`
}

// TransactionMetrics summarizes sales per transaction
type TransactionMetrics struct {
	TotalSales        float64 `json:"total_sales"`
	AvgPerTransaction float64 `json:"avg_per_transaction"`
	TransactionCount  int     `json:"transaction_count"`
}

// SalesSummary is the headline report, also persisted per version
type SalesSummary struct {
	Revenue           float64 `json:"revenue"`
	TotalCost         float64 `json:"total_cost"`
	GrossProfit       float64 `json:"gross_profit"`
	TransactionCount  int     `json:"transaction_count"`
	AvgPerTransaction float64 `json:"avg_per_transaction"`
	TotalItems        int64   `json:"total_items"`
	Version           string  `json:"version,omitempty"`
}

// RegionStat is one row of the regional performance report
type RegionStat struct {
	Region     string  `json:"region"`
	FinalValue float64 `json:"final_value"`
	Orders     int     `json:"orders"`
}

// RegionalPerformance groups sales by region, highest value first
type RegionalPerformance struct {
	ByRegion []RegionStat `json:"by_region"`
}

// ProductStat is one row of the product analysis report
type ProductStat struct {
	ProductID       string  `json:"product_id"`
	ProductName     string  `json:"product_name"`
	UnitsSold       float64 `json:"units_sold"`
	AmountCollected float64 `json:"amount_collected"`
}

// ProductAnalysis is the ranked product report
type ProductAnalysis struct {
	Products []ProductStat `json:"products"`
}

// Product analysis sort keys
const (
	SortByAmountCollected = "amount_collected"
	SortByUnitsSold       = "units_sold"
	SortByProductName     = "product_name"
)

// DescriptiveStats mirrors a count/mean/std/min/quartiles/max summary.
// Pointer fields are nil when undefined (empty input, std of one value).
type DescriptiveStats struct {
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
	Std   *float64 `json:"std"`
	Min   *float64 `json:"min"`
	P25   *float64 `json:"25%"`
	P50   *float64 `json:"50%"`
	P75   *float64 `json:"75%"`
	Max   *float64 `json:"max"`
}

// CustomerStat is one of the top customers by value
type CustomerStat struct {
	CustomerID   string  `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	FinalValue   float64 `json:"final_value"`
}

// CustomerProfile describes who is buying
type CustomerProfile struct {
	AgeStats     *DescriptiveStats `json:"age_stats,omitempty"`
	Gender       map[string]int    `json:"gender_distribution"`
	TopCustomers []CustomerStat    `json:"top_customers"`
}

// FinancialMetrics is the thin projection of FinancialSummary served by the API
type FinancialMetrics struct {
	GrossProfit float64 `json:"gross_profit"`
	Revenue     float64 `json:"revenue"`
	TotalCost   float64 `json:"total_cost"`
}
