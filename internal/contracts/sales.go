package contracts

import (
	"strconv"
	"strings"
	"time"
)

// Field is the canonical (lowercase, trimmed) name of a dataset column
type Field string

// Dataset columns
// ⭐ SSOT: 컬럼명은 여기서만 정의
const (
	FieldTransactionID   Field = "id_transacao"
	FieldSaleDate        Field = "data_venda"
	FieldFinalValue      Field = "valor_final"
	FieldSubtotal        Field = "subtotal"
	FieldDiscountPercent Field = "desconto_percent"
	FieldDiscountValue   Field = "desconto_valor"
	FieldSaleChannel     Field = "canal_venda"
	FieldPaymentMethod   Field = "forma_pagamento"
	FieldCustomerID      Field = "cliente_id"
	FieldCustomerName    Field = "nome_cliente"
	FieldCustomerAge     Field = "idade_cliente"
	FieldCustomerGender  Field = "genero_cliente"
	FieldCustomerCity    Field = "cidade_cliente"
	FieldCustomerState   Field = "estado_cliente"
	FieldEstimatedIncome Field = "renda_estimada"
	FieldProductID       Field = "produto_id"
	FieldProductName     Field = "nome_produto"
	FieldCategory        Field = "categoria"
	FieldBrand           Field = "marca"
	FieldUnitPrice       Field = "preco_unitario"
	FieldQuantity        Field = "quantidade"
	FieldProfitMargin    Field = "margem_lucro"
	FieldRegion          Field = "regiao"
	FieldDeliveryStatus  Field = "status_entrega"
	FieldDeliveryDays    Field = "tempo_entrega_dias"
	FieldSellerID        Field = "vendedor_id"

	// FieldProductCost is optional: direct cost of the units sold
	FieldProductCost Field = "custo_produto"
)

// RequiredFields lists every column an upload must carry, in header order
var RequiredFields = []Field{
	FieldTransactionID,
	FieldSaleDate,
	FieldFinalValue,
	FieldSubtotal,
	FieldDiscountPercent,
	FieldDiscountValue,
	FieldSaleChannel,
	FieldPaymentMethod,
	FieldCustomerID,
	FieldCustomerName,
	FieldCustomerAge,
	FieldCustomerGender,
	FieldCustomerCity,
	FieldCustomerState,
	FieldEstimatedIncome,
	FieldProductID,
	FieldProductName,
	FieldCategory,
	FieldBrand,
	FieldUnitPrice,
	FieldQuantity,
	FieldProfitMargin,
	FieldRegion,
	FieldDeliveryStatus,
	FieldDeliveryDays,
	FieldSellerID,
}

// NormalizeFieldName trims and lowercases a header cell
func NormalizeFieldName(name string) Field {
	return Field(strings.ToLower(strings.TrimSpace(name)))
}

// Number is a numeric cell that may be unparseable.
// Valid=false means the source cell was missing or not a number; it is
// distinct from a parsed zero.
type Number struct {
	Value float64
	Valid bool
}

// Num returns a valid Number
func Num(v float64) Number {
	return Number{Value: v, Valid: true}
}

// Or returns the value, or fallback when missing
func (n Number) Or(fallback float64) float64 {
	if !n.Valid {
		return fallback
	}
	return n.Value
}

// String renders the number the way it is written back to a table
func (n Number) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// Date is a sale date that may be unparseable
type Date struct {
	Time  time.Time
	Valid bool
}

// String renders the date as RFC3339, empty when missing
func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(time.RFC3339)
}

// Record is one normalized sale (one row of a dataset)
type Record struct {
	TransactionID string
	SaleDate      Date

	FinalValue      Number
	Subtotal        Number
	DiscountPercent Number
	DiscountValue   Number
	UnitPrice       Number
	Quantity        Number
	ProfitMargin    Number
	ProductCost     Number

	SaleChannel   string
	PaymentMethod string

	CustomerID      string
	CustomerName    string
	CustomerAge     Number // 정규화 후 항상 정수
	Gender          string
	City            string
	State           string
	EstimatedIncome Number

	ProductID   string
	ProductName string
	Category    string
	Brand       string

	Region         string
	DeliveryStatus string
	DeliveryDays   Number
	SellerID       string
}

// Dataset is a cleaned, normalized set of sales.
// Columns records which fields the source carried; a validated upload
// always carries every required field, so only optional columns vary.
type Dataset struct {
	Records []Record
	Columns map[Field]bool
}

// NewDataset creates a dataset carrying every required field plus extra
func NewDataset(records []Record, extra ...Field) *Dataset {
	cols := make(map[Field]bool, len(RequiredFields)+len(extra))
	for _, f := range RequiredFields {
		cols[f] = true
	}
	for _, f := range extra {
		cols[f] = true
	}
	return &Dataset{Records: records, Columns: cols}
}

// Has reports whether the dataset carries the column
func (d *Dataset) Has(f Field) bool {
	return d.Columns[f]
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.Records)
}

// RawTable is an untyped row/column table as read from a file
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Table renders the dataset back into a raw table using canonical headers
func (d *Dataset) Table() RawTable {
	header := make([]Field, 0, len(RequiredFields)+1)
	header = append(header, RequiredFields...)
	if d.Has(FieldProductCost) {
		header = append(header, FieldProductCost)
	}

	t := RawTable{Header: make([]string, len(header))}
	for i, f := range header {
		t.Header[i] = string(f)
	}

	t.Rows = make([][]string, 0, len(d.Records))
	for i := range d.Records {
		row := make([]string, len(header))
		for j, f := range header {
			row[j] = d.Records[i].Cell(f)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Cell returns the textual form of a field
func (r *Record) Cell(f Field) string {
	switch f {
	case FieldTransactionID:
		return r.TransactionID
	case FieldSaleDate:
		return r.SaleDate.String()
	case FieldFinalValue:
		return r.FinalValue.String()
	case FieldSubtotal:
		return r.Subtotal.String()
	case FieldDiscountPercent:
		return r.DiscountPercent.String()
	case FieldDiscountValue:
		return r.DiscountValue.String()
	case FieldSaleChannel:
		return r.SaleChannel
	case FieldPaymentMethod:
		return r.PaymentMethod
	case FieldCustomerID:
		return r.CustomerID
	case FieldCustomerName:
		return r.CustomerName
	case FieldCustomerAge:
		return r.CustomerAge.String()
	case FieldCustomerGender:
		return r.Gender
	case FieldCustomerCity:
		return r.City
	case FieldCustomerState:
		return r.State
	case FieldEstimatedIncome:
		return r.EstimatedIncome.String()
	case FieldProductID:
		return r.ProductID
	case FieldProductName:
		return r.ProductName
	case FieldCategory:
		return r.Category
	case FieldBrand:
		return r.Brand
	case FieldUnitPrice:
		return r.UnitPrice.String()
	case FieldQuantity:
		return r.Quantity.String()
	case FieldProfitMargin:
		return r.ProfitMargin.String()
	case FieldRegion:
		return r.Region
	case FieldDeliveryStatus:
		return r.DeliveryStatus
	case FieldDeliveryDays:
		return r.DeliveryDays.String()
	case FieldSellerID:
		return r.SellerID
	case FieldProductCost:
		return r.ProductCost.String()
	}
	return ""
}

// DatasetVersion describes one stored ingestion
type DatasetVersion struct {
	ID        string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source,omitempty"`
	Rows      int       `json:"rows"`
	Warnings  []string  `json:"warnings"`
}
