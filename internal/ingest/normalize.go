package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/salesdesk/backend/internal/contracts"
)

// nullTokens are the NA spellings spreadsheet exports commonly use
var nullTokens = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// dateLayouts are tried in order; the first that parses wins
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"1/2/06 15:04",
	"1/2/06",
	"01-02-06",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// maxDateSerial is the workbook serial day of 9999-12-31
const maxDateSerial = 2958465

// IsNull reports whether a raw cell counts as missing
func IsNull(cell string) bool {
	return nullTokens[strings.TrimSpace(cell)]
}

// Normalize converts raw cells into typed records.
// Unparseable numbers and dates become explicit missing values; no error is
// raised for cell content. The only failure is a required field that the
// schema cannot resolve, which is a DataIntegrityError.
func Normalize(raw contracts.RawTable, schema *Schema) (*contracts.Dataset, error) {
	pos := make(map[contracts.Field]int, len(contracts.RequiredFields))
	for _, f := range contracts.RequiredFields {
		i, err := schema.resolve(f)
		if err != nil {
			return nil, err
		}
		pos[f] = i
	}

	costPos := -1
	if schema.Has(contracts.FieldProductCost) {
		costPos, _ = schema.resolve(contracts.FieldProductCost)
	}

	records := make([]contracts.Record, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		get := func(f contracts.Field) string {
			return cellAt(row, pos[f])
		}

		rec := contracts.Record{
			TransactionID: parseText(get(contracts.FieldTransactionID)),
			SaleDate:      parseDate(get(contracts.FieldSaleDate)),

			FinalValue:      parseNumber(get(contracts.FieldFinalValue)),
			Subtotal:        parseNumber(get(contracts.FieldSubtotal)),
			DiscountPercent: parseNumber(get(contracts.FieldDiscountPercent)),
			DiscountValue:   parseNumber(get(contracts.FieldDiscountValue)),
			UnitPrice:       parseNumber(get(contracts.FieldUnitPrice)),
			Quantity:        parseNumber(get(contracts.FieldQuantity)),
			ProfitMargin:    parseNumber(get(contracts.FieldProfitMargin)),

			SaleChannel:   parseText(get(contracts.FieldSaleChannel)),
			PaymentMethod: parseText(get(contracts.FieldPaymentMethod)),

			CustomerID:      parseText(get(contracts.FieldCustomerID)),
			CustomerName:    parseText(get(contracts.FieldCustomerName)),
			CustomerAge:     parseNumber(get(contracts.FieldCustomerAge)),
			Gender:          parseText(get(contracts.FieldCustomerGender)),
			City:            parseText(get(contracts.FieldCustomerCity)),
			State:           parseText(get(contracts.FieldCustomerState)),
			EstimatedIncome: parseNumber(get(contracts.FieldEstimatedIncome)),

			ProductID:   parseText(get(contracts.FieldProductID)),
			ProductName: parseText(get(contracts.FieldProductName)),
			Category:    parseText(get(contracts.FieldCategory)),
			Brand:       parseText(get(contracts.FieldBrand)),

			Region:         parseText(get(contracts.FieldRegion)),
			DeliveryStatus: parseText(get(contracts.FieldDeliveryStatus)),
			DeliveryDays:   parseNumber(get(contracts.FieldDeliveryDays)),
			SellerID:       parseText(get(contracts.FieldSellerID)),
		}
		if costPos >= 0 {
			rec.ProductCost = parseNumber(cellAt(row, costPos))
		}

		records = append(records, rec)
	}

	return &contracts.Dataset{Records: records, Columns: schema.Columns()}, nil
}

// cellAt tolerates ragged rows: a short row reads as missing cells
func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseText(cell string) string {
	if IsNull(cell) {
		return ""
	}
	return strings.TrimSpace(cell)
}

func parseNumber(cell string) contracts.Number {
	if IsNull(cell) {
		return contracts.Number{}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	// inf/infinity는 JSON으로 직렬화할 수 없으므로 결측 처리
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return contracts.Number{}
	}
	return contracts.Num(v)
}

func parseDate(cell string) contracts.Date {
	if IsNull(cell) {
		return contracts.Date{}
	}
	s := strings.TrimSpace(cell)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return contracts.Date{Time: t, Valid: true}
		}
	}

	// 워크북 날짜는 원시 값으로 읽으면 일련번호
	if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 1 && v <= maxDateSerial {
		if t, err := excelize.ExcelDateToTime(v, false); err == nil {
			return contracts.Date{Time: t, Valid: true}
		}
	}
	return contracts.Date{}
}
