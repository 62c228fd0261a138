// Package tinkoff tests the Invest API client against a mock server.
package tinkoff

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/var-trade-bot/internal/exchange"
)

// mockInvestServer is a helper to create a mock HTTP server for the
// Invest API services the client talks to.
func mockInvestServer(
	t *testing.T,
	candlesHandler http.HandlerFunc,
	postOrderHandler http.HandlerFunc,
	orderStateHandler http.HandlerFunc,
	cancelHandler http.HandlerFunc,
) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	if candlesHandler != nil {
		mux.HandleFunc(marketDataService+"/GetCandles", candlesHandler)
	}
	if postOrderHandler != nil {
		mux.HandleFunc(ordersService+"/PostOrder", postOrderHandler)
	}
	if orderStateHandler != nil {
		mux.HandleFunc(ordersService+"/GetOrderState", orderStateHandler)
	}
	if cancelHandler != nil {
		mux.HandleFunc(ordersService+"/CancelOrder", cancelHandler)
	}

	server := httptest.NewServer(mux)
	prevBaseURL := GetBaseURL()
	SetBaseURL(server.URL)
	t.Cleanup(func() {
		SetBaseURL(prevBaseURL)
		server.Close()
	})
	return server
}

func TestGetCandles_DropsWeekendRows(t *testing.T) {
	// Fri Aug 21 2026, Sat Aug 22, Mon Aug 24.
	mockInvestServer(t,
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			var req getCandlesRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "BBG000000001", req.Figi)
			assert.Equal(t, "CANDLE_INTERVAL_5_MIN", req.Interval)

			resp := getCandlesResponse{Candles: []historicCandle{
				{Time: "2026-08-21T10:00:00Z", Open: Quotation{Units: 100, Nano: 500000000}, Close: Quotation{Units: 101}, High: Quotation{Units: 102}, Low: Quotation{Units: 99}, Volume: 10, IsComplete: true},
				{Time: "2026-08-22T10:00:00Z", Open: Quotation{Units: 500}, Close: Quotation{Units: 500}, High: Quotation{Units: 500}, Low: Quotation{Units: 500}, Volume: 1, IsComplete: true},
				{Time: "2026-08-24T10:00:00Z", Open: Quotation{Units: 103, Nano: 250000000}, Close: Quotation{Units: 104}, High: Quotation{Units: 105}, Low: Quotation{Units: 102}, Volume: 20, IsComplete: true},
			}}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		}, nil, nil, nil)

	client := NewClient("test-token", "acc-1")
	candles, err := client.GetCandles(context.Background(), "BBG000000001", 5, "5m")
	require.NoError(t, err)

	require.Len(t, candles, 2, "the Saturday row must be dropped")
	assert.InDelta(t, 100.5, candles[0].Open, 1e-9, "units+nano decoding")
	assert.InDelta(t, 103.25, candles[1].Open, 1e-9)
	assert.Equal(t, time.Saturday, time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC).Weekday())
}

func TestGetCandles_UnknownInterval(t *testing.T) {
	client := NewClient("test-token", "acc-1")
	_, err := client.GetCandles(context.Background(), "BBG000000001", 5, "7m")
	assert.Error(t, err)
}

func TestPlaceOrder_Success(t *testing.T) {
	var captured postOrderRequest
	mockInvestServer(t, nil,
		func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			resp := postOrderResponse{OrderID: "42", ExecutionReportStatus: "EXECUTION_REPORT_STATUS_NEW"}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		}, nil, nil)

	client := NewClient("test-token", "acc-1")
	orderID, err := client.PlaceOrder(context.Background(), exchange.PlaceOrderRequest{
		Figi:      "BBG000000001",
		Quantity:  3,
		Price:     123.45,
		Direction: exchange.Buy,
		Kind:      exchange.Limit,
	})
	require.NoError(t, err)
	assert.Equal(t, "42", orderID)

	assert.Equal(t, "ORDER_DIRECTION_BUY", captured.Direction)
	assert.Equal(t, "ORDER_TYPE_LIMIT", captured.OrderType)
	assert.Equal(t, "acc-1", captured.AccountID)
	assert.Equal(t, int64(3), captured.Quantity)
	assert.Equal(t, int64(123), captured.Price.Units)
	assert.Equal(t, int32(450000000), captured.Price.Nano)
	assert.NotEmpty(t, captured.OrderID, "idempotency key must be set")
}

func TestPlaceOrder_APIError(t *testing.T) {
	mockInvestServer(t, nil,
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(apiError{Code: 3, Message: "instrument is not available for trading"})
		}, nil, nil)

	client := NewClient("test-token", "acc-1")
	_, err := client.PlaceOrder(context.Background(), exchange.PlaceOrderRequest{
		Figi:      "BBG000000001",
		Quantity:  1,
		Price:     10,
		Direction: exchange.Sell,
		Kind:      exchange.Limit,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available for trading")
}

func TestGetOrderStatus_Mapping(t *testing.T) {
	cases := []struct {
		report string
		want   exchange.OrderStatus
	}{
		{"EXECUTION_REPORT_STATUS_FILL", exchange.StatusFill},
		{"EXECUTION_REPORT_STATUS_REJECTED", exchange.StatusRejected},
		{"EXECUTION_REPORT_STATUS_CANCELLED", exchange.StatusCancelled},
		{"EXECUTION_REPORT_STATUS_NEW", exchange.StatusNew},
		{"EXECUTION_REPORT_STATUS_PARTIALLYFILL", exchange.StatusPartiallyFill},
		{"SOMETHING_ELSE", exchange.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.report, func(t *testing.T) {
			mockInvestServer(t, nil, nil,
				func(w http.ResponseWriter, r *http.Request) {
					resp := getOrderStateResponse{OrderID: "42", ExecutionReportStatus: tc.report}
					_ = json.NewEncoder(w).Encode(resp)
				}, nil)

			client := NewClient("test-token", "acc-1")
			status, err := client.GetOrderStatus(context.Background(), "42")
			require.NoError(t, err)
			assert.Equal(t, tc.want, status)
		})
	}
}

func TestGetOrderStatus_QueryFailureMapsToNotFound(t *testing.T) {
	mockInvestServer(t, nil, nil,
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(apiError{Code: 5, Message: "order not found"})
		}, nil)

	client := NewClient("test-token", "acc-1")
	status, err := client.GetOrderStatus(context.Background(), "gone")
	assert.Error(t, err)
	assert.Equal(t, exchange.StatusNotFound, status)
}

func TestCancelOrder(t *testing.T) {
	var cancelled string
	mockInvestServer(t, nil, nil, nil,
		func(w http.ResponseWriter, r *http.Request) {
			var req cancelOrderRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			cancelled = req.OrderID
			_ = json.NewEncoder(w).Encode(cancelOrderResponse{Time: time.Now().UTC().Format(time.RFC3339)})
		})

	client := NewClient("test-token", "acc-1")
	require.NoError(t, client.CancelOrder(context.Background(), "42"))
	assert.Equal(t, "42", cancelled)
}
