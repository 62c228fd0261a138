package tinkoff

import (
	"github.com/shopspring/decimal"
)

// Quotation is the Invest API money representation: integer units plus
// nanoseconds of a unit. Units are serialized as a decimal string.
type Quotation struct {
	Units int64 `json:"units,string"`
	Nano  int32 `json:"nano"`
}

// Float converts the quotation to a float64 price.
func (q Quotation) Float() float64 {
	return float64(q.Units) + float64(q.Nano)/1e9
}

// quotationFromFloat splits a price into units and nano without binary
// float drift on the nano part.
func quotationFromFloat(v float64) Quotation {
	d := decimal.NewFromFloat(v)
	units := d.IntPart()
	nano := d.Sub(decimal.NewFromInt(units)).Mul(decimal.NewFromInt(1e9)).Round(0).IntPart()
	return Quotation{Units: units, Nano: int32(nano)}
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type getCandlesRequest struct {
	Figi     string `json:"figi"`
	From     string `json:"from"`
	To       string `json:"to"`
	Interval string `json:"interval"`
}

type historicCandle struct {
	Time       string    `json:"time"`
	Open       Quotation `json:"open"`
	Close      Quotation `json:"close"`
	High       Quotation `json:"high"`
	Low        Quotation `json:"low"`
	Volume     int64     `json:"volume,string"`
	IsComplete bool      `json:"isComplete"`
}

type getCandlesResponse struct {
	Candles []historicCandle `json:"candles"`
}

type postOrderRequest struct {
	Figi      string    `json:"figi"`
	Quantity  int64     `json:"quantity,string"`
	Price     Quotation `json:"price"`
	Direction string    `json:"direction"`
	AccountID string    `json:"accountId"`
	OrderType string    `json:"orderType"`
	OrderID   string    `json:"orderId"` // client-side idempotency key
}

type postOrderResponse struct {
	OrderID               string `json:"orderId"`
	ExecutionReportStatus string `json:"executionReportStatus"`
	Message               string `json:"message"`
}

type getOrderStateRequest struct {
	AccountID string `json:"accountId"`
	OrderID   string `json:"orderId"`
}

type getOrderStateResponse struct {
	OrderID               string `json:"orderId"`
	ExecutionReportStatus string `json:"executionReportStatus"`
}

type cancelOrderRequest struct {
	AccountID string `json:"accountId"`
	OrderID   string `json:"orderId"`
}

type cancelOrderResponse struct {
	Time string `json:"time"`
}
