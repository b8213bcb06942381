package store

import (
	"time"

	"github.com/wonny/salesdesk/backend/internal/contracts"
)

// storedRow is the persisted layout of one cleaned sale, shared by the
// parquet and postgres backends. Optional columns are pointers; nil is a
// missing value. Field order follows storedColumns.
type storedRow struct {
	TransactionID   string   `parquet:"name=id_transacao, type=BYTE_ARRAY, convertedtype=UTF8"`
	SaleDate        *int64   `parquet:"name=data_venda, type=INT64, convertedtype=TIMESTAMP_MILLIS, repetitiontype=OPTIONAL"`
	FinalValue      *float64 `parquet:"name=valor_final, type=DOUBLE, repetitiontype=OPTIONAL"`
	Subtotal        *float64 `parquet:"name=subtotal, type=DOUBLE, repetitiontype=OPTIONAL"`
	DiscountPercent *float64 `parquet:"name=desconto_percent, type=DOUBLE, repetitiontype=OPTIONAL"`
	DiscountValue   *float64 `parquet:"name=desconto_valor, type=DOUBLE, repetitiontype=OPTIONAL"`
	SaleChannel     string   `parquet:"name=canal_venda, type=BYTE_ARRAY, convertedtype=UTF8"`
	PaymentMethod   string   `parquet:"name=forma_pagamento, type=BYTE_ARRAY, convertedtype=UTF8"`
	CustomerID      string   `parquet:"name=cliente_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	CustomerName    string   `parquet:"name=nome_cliente, type=BYTE_ARRAY, convertedtype=UTF8"`
	CustomerAge     *float64 `parquet:"name=idade_cliente, type=DOUBLE, repetitiontype=OPTIONAL"`
	Gender          string   `parquet:"name=genero_cliente, type=BYTE_ARRAY, convertedtype=UTF8"`
	City            string   `parquet:"name=cidade_cliente, type=BYTE_ARRAY, convertedtype=UTF8"`
	State           string   `parquet:"name=estado_cliente, type=BYTE_ARRAY, convertedtype=UTF8"`
	EstimatedIncome *float64 `parquet:"name=renda_estimada, type=DOUBLE, repetitiontype=OPTIONAL"`
	ProductID       string   `parquet:"name=produto_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ProductName     string   `parquet:"name=nome_produto, type=BYTE_ARRAY, convertedtype=UTF8"`
	Category        string   `parquet:"name=categoria, type=BYTE_ARRAY, convertedtype=UTF8"`
	Brand           string   `parquet:"name=marca, type=BYTE_ARRAY, convertedtype=UTF8"`
	UnitPrice       *float64 `parquet:"name=preco_unitario, type=DOUBLE, repetitiontype=OPTIONAL"`
	Quantity        *float64 `parquet:"name=quantidade, type=DOUBLE, repetitiontype=OPTIONAL"`
	ProfitMargin    *float64 `parquet:"name=margem_lucro, type=DOUBLE, repetitiontype=OPTIONAL"`
	Region          string   `parquet:"name=regiao, type=BYTE_ARRAY, convertedtype=UTF8"`
	DeliveryStatus  string   `parquet:"name=status_entrega, type=BYTE_ARRAY, convertedtype=UTF8"`
	DeliveryDays    *float64 `parquet:"name=tempo_entrega_dias, type=DOUBLE, repetitiontype=OPTIONAL"`
	SellerID        string   `parquet:"name=vendedor_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ProductCost     *float64 `parquet:"name=custo_produto, type=DOUBLE, repetitiontype=OPTIONAL"`
}

func toStored(r *contracts.Record) storedRow {
	row := storedRow{
		TransactionID:   r.TransactionID,
		FinalValue:      numPtr(r.FinalValue),
		Subtotal:        numPtr(r.Subtotal),
		DiscountPercent: numPtr(r.DiscountPercent),
		DiscountValue:   numPtr(r.DiscountValue),
		SaleChannel:     r.SaleChannel,
		PaymentMethod:   r.PaymentMethod,
		CustomerID:      r.CustomerID,
		CustomerName:    r.CustomerName,
		CustomerAge:     numPtr(r.CustomerAge),
		Gender:          r.Gender,
		City:            r.City,
		State:           r.State,
		EstimatedIncome: numPtr(r.EstimatedIncome),
		ProductID:       r.ProductID,
		ProductName:     r.ProductName,
		Category:        r.Category,
		Brand:           r.Brand,
		UnitPrice:       numPtr(r.UnitPrice),
		Quantity:        numPtr(r.Quantity),
		ProfitMargin:    numPtr(r.ProfitMargin),
		Region:          r.Region,
		DeliveryStatus:  r.DeliveryStatus,
		DeliveryDays:    numPtr(r.DeliveryDays),
		SellerID:        r.SellerID,
		ProductCost:     numPtr(r.ProductCost),
	}
	if r.SaleDate.Valid {
		ms := r.SaleDate.Time.UnixMilli()
		row.SaleDate = &ms
	}
	return row
}

func fromStored(row *storedRow) contracts.Record {
	r := contracts.Record{
		TransactionID:   row.TransactionID,
		FinalValue:      ptrNum(row.FinalValue),
		Subtotal:        ptrNum(row.Subtotal),
		DiscountPercent: ptrNum(row.DiscountPercent),
		DiscountValue:   ptrNum(row.DiscountValue),
		SaleChannel:     row.SaleChannel,
		PaymentMethod:   row.PaymentMethod,
		CustomerID:      row.CustomerID,
		CustomerName:    row.CustomerName,
		CustomerAge:     ptrNum(row.CustomerAge),
		Gender:          row.Gender,
		City:            row.City,
		State:           row.State,
		EstimatedIncome: ptrNum(row.EstimatedIncome),
		ProductID:       row.ProductID,
		ProductName:     row.ProductName,
		Category:        row.Category,
		Brand:           row.Brand,
		UnitPrice:       ptrNum(row.UnitPrice),
		Quantity:        ptrNum(row.Quantity),
		ProfitMargin:    ptrNum(row.ProfitMargin),
		Region:          row.Region,
		DeliveryStatus:  row.DeliveryStatus,
		DeliveryDays:    ptrNum(row.DeliveryDays),
		SellerID:        row.SellerID,
		ProductCost:     ptrNum(row.ProductCost),
	}
	if row.SaleDate != nil {
		r.SaleDate = contracts.Date{Time: time.UnixMilli(*row.SaleDate).UTC(), Valid: true}
	}
	return r
}

// storedColumns is the column order of storedRow
var storedColumns = append(append([]contracts.Field{}, contracts.RequiredFields...), contracts.FieldProductCost)

// values returns the row in storedColumns order with the sale date as a
// timestamp
func (row *storedRow) values() []any {
	var date *time.Time
	if row.SaleDate != nil {
		t := time.UnixMilli(*row.SaleDate).UTC()
		date = &t
	}
	return []any{
		row.TransactionID, date, row.FinalValue, row.Subtotal,
		row.DiscountPercent, row.DiscountValue, row.SaleChannel, row.PaymentMethod,
		row.CustomerID, row.CustomerName, row.CustomerAge, row.Gender,
		row.City, row.State, row.EstimatedIncome, row.ProductID,
		row.ProductName, row.Category, row.Brand, row.UnitPrice,
		row.Quantity, row.ProfitMargin, row.Region, row.DeliveryStatus,
		row.DeliveryDays, row.SellerID, row.ProductCost,
	}
}

// targets returns scan destinations in storedColumns order; the sale date
// lands in date
func (row *storedRow) targets(date **time.Time) []any {
	return []any{
		&row.TransactionID, date, &row.FinalValue, &row.Subtotal,
		&row.DiscountPercent, &row.DiscountValue, &row.SaleChannel, &row.PaymentMethod,
		&row.CustomerID, &row.CustomerName, &row.CustomerAge, &row.Gender,
		&row.City, &row.State, &row.EstimatedIncome, &row.ProductID,
		&row.ProductName, &row.Category, &row.Brand, &row.UnitPrice,
		&row.Quantity, &row.ProfitMargin, &row.Region, &row.DeliveryStatus,
		&row.DeliveryDays, &row.SellerID, &row.ProductCost,
	}
}

func numPtr(n contracts.Number) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

func ptrNum(p *float64) contracts.Number {
	if p == nil {
		return contracts.Number{}
	}
	return contracts.Num(*p)
}
