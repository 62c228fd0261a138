package tinkoff

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/your-org/var-trade-bot/internal/exchange"
	"github.com/your-org/var-trade-bot/pkg/logger"
)

var orderDirections = map[exchange.OrderDirection]string{
	exchange.Buy:  "ORDER_DIRECTION_BUY",
	exchange.Sell: "ORDER_DIRECTION_SELL",
}

var orderTypes = map[exchange.OrderKind]string{
	exchange.Limit:     "ORDER_TYPE_LIMIT",
	exchange.Market:    "ORDER_TYPE_MARKET",
	exchange.BestPrice: "ORDER_TYPE_BESTPRICE",
}

// PlaceOrder submits one order and returns the brokerage-assigned order id.
// Each submission carries a fresh client-side idempotency key so a retried
// HTTP request cannot double-place.
func (c *Client) PlaceOrder(ctx context.Context, req exchange.PlaceOrderRequest) (string, error) {
	direction, ok := orderDirections[req.Direction]
	if !ok {
		return "", fmt.Errorf("unknown order direction %q", req.Direction)
	}
	orderType, ok := orderTypes[req.Kind]
	if !ok {
		return "", fmt.Errorf("unknown order kind %q", req.Kind)
	}

	body := postOrderRequest{
		Figi:      req.Figi,
		Quantity:  req.Quantity,
		Price:     quotationFromFloat(req.Price),
		Direction: direction,
		AccountID: c.accountID,
		OrderType: orderType,
		OrderID:   uuid.NewString(),
	}
	var resp postOrderResponse
	if err := c.post(ctx, ordersService+"/PostOrder", body, &resp); err != nil {
		return "", fmt.Errorf("PostOrder %s %s: %w", req.Direction, req.Figi, err)
	}
	if resp.OrderID == "" {
		return "", fmt.Errorf("PostOrder %s %s: empty order id in response", req.Direction, req.Figi)
	}
	logger.Infof("Created order %s: direction=%s price=%.4f quantity=%d", resp.OrderID, req.Direction, req.Price, req.Quantity)
	return resp.OrderID, nil
}

// GetOrderStatus queries the order's execution report status. A failed
// query maps to NOT_FOUND alongside the error; it is never retried here.
func (c *Client) GetOrderStatus(ctx context.Context, orderID string) (exchange.OrderStatus, error) {
	body := getOrderStateRequest{AccountID: c.accountID, OrderID: orderID}
	var resp getOrderStateResponse
	if err := c.post(ctx, ordersService+"/GetOrderState", body, &resp); err != nil {
		return exchange.StatusNotFound, fmt.Errorf("GetOrderState %s: %w", orderID, err)
	}
	return statusFromReport(resp.ExecutionReportStatus), nil
}

// CancelOrder requests cancellation of an active order.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	body := cancelOrderRequest{AccountID: c.accountID, OrderID: orderID}
	var resp cancelOrderResponse
	if err := c.post(ctx, ordersService+"/CancelOrder", body, &resp); err != nil {
		return fmt.Errorf("CancelOrder %s: %w", orderID, err)
	}
	return nil
}

// statusFromReport maps an EXECUTION_REPORT_STATUS_* enum value to the
// order status vocabulary by its trailing segment.
func statusFromReport(report string) exchange.OrderStatus {
	code := report
	if i := strings.LastIndex(report, "_"); i >= 0 {
		code = report[i+1:]
	}
	switch status := exchange.OrderStatus(code); status {
	case exchange.StatusFill, exchange.StatusRejected, exchange.StatusCancelled,
		exchange.StatusNew, exchange.StatusPartiallyFill:
		return status
	}
	return exchange.StatusNotFound
}
