// Package exchange defines the brokerage capability the trading engine and
// the retraining search are written against.
package exchange

import (
	"context"
	"time"
)

// Candle is one OHLCV bar with its opening time.
type Candle struct {
	Time   time.Time
	Open   float64
	Close  float64
	High   float64
	Low    float64
	Volume int64
}

// OrderDirection is the side of an order.
type OrderDirection string

const (
	Buy  OrderDirection = "BUY"
	Sell OrderDirection = "SELL"
)

// OrderKind is the execution type of an order.
type OrderKind string

const (
	Limit     OrderKind = "LIMIT"
	Market    OrderKind = "MARKET"
	BestPrice OrderKind = "BESTPRICE"
)

// OrderStatus is the brokerage execution report status vocabulary.
type OrderStatus string

const (
	StatusFill          OrderStatus = "FILL"
	StatusRejected      OrderStatus = "REJECTED"
	StatusCancelled     OrderStatus = "CANCELLED"
	StatusNew           OrderStatus = "NEW"
	StatusPartiallyFill OrderStatus = "PARTIALLYFILL"
	StatusNotFound      OrderStatus = "NOT_FOUND"
)

// PlaceOrderRequest describes a single order submission.
type PlaceOrderRequest struct {
	Figi      string
	Quantity  int64
	Price     float64
	Direction OrderDirection
	Kind      OrderKind
}

// Client is the brokerage capability: candle history plus the order
// place/status/cancel triple. Implementations must drop weekend candle rows.
type Client interface {
	GetCandles(ctx context.Context, figi string, lookbackDays int, interval string) ([]Candle, error)
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (string, error)
	GetOrderStatus(ctx context.Context, orderID string) (OrderStatus, error)
	CancelOrder(ctx context.Context, orderID string) error
}

// Features extracts the model feature matrix (open, close, high, low per
// row) from a candle series.
func Features(candles []Candle) [][]float64 {
	rows := make([][]float64, len(candles))
	for i, c := range candles {
		rows[i] = []float64{c.Open, c.Close, c.High, c.Low}
	}
	return rows
}

// FeaturesSince extracts features from the candles whose time is within
// the trailing `days` days of the last candle in the series.
func FeaturesSince(candles []Candle, days int) [][]float64 {
	if len(candles) == 0 {
		return nil
	}
	cutoff := candles[len(candles)-1].Time.AddDate(0, 0, -days)
	start := 0
	for i, c := range candles {
		if !c.Time.Before(cutoff) {
			start = i
			break
		}
	}
	return Features(candles[start:])
}
