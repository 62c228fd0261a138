// Package engine implements the per-bot order lifecycle: forecast,
// decide, submit, wait, reconcile, and persist.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/var-trade-bot/internal/alert"
	"github.com/your-org/var-trade-bot/internal/config"
	"github.com/your-org/var-trade-bot/internal/dbwriter"
	"github.com/your-org/var-trade-bot/internal/exchange"
	"github.com/your-org/var-trade-bot/internal/forecast"
	"github.com/your-org/var-trade-bot/internal/orderlog"
	"github.com/your-org/var-trade-bot/pkg/logger"
)

// Engine runs one bot's trading cycle per invocation. Each run owns its
// BotConfig exclusively: loaded fresh by the caller, mutated here, and
// written back wholesale at the end.
type Engine struct {
	client         exchange.Client
	forecaster     forecast.Forecaster
	store          *config.Store
	writer         *dbwriter.Writer // nil-safe, optional
	notifier       alert.Notifier
	commissionRate float64
	safetyMargin   time.Duration

	// now and sleep are injection points for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a trading Engine.
func New(client exchange.Client, forecaster forecast.Forecaster, store *config.Store, writer *dbwriter.Writer, notifier alert.Notifier, commissionRate float64, safetyMargin time.Duration) *Engine {
	return &Engine{
		client:         client,
		forecaster:     forecaster,
		store:          store,
		writer:         writer,
		notifier:       notifier,
		commissionRate: commissionRate,
		safetyMargin:   safetyMargin,
		now:            time.Now,
		sleep:          sleepCtx,
	}
}

// Run executes one full trading cycle for the bot. A run with no
// beneficial trade or no eligible side ends without mutating the ledger
// or the order log.
func (e *Engine) Run(ctx context.Context, bot *config.BotConfig) error {
	intervalMinutes, err := exchange.IntervalMinutes(bot.Model.Interval)
	if err != nil {
		return fmt.Errorf("bot %s: %w", bot.Name, err)
	}

	model, err := forecast.LoadModel(bot.Model.ArtifactPath)
	if err != nil {
		return fmt.Errorf("bot %s: %w", bot.Name, err)
	}

	window, err := e.featureWindow(ctx, bot, intervalMinutes)
	if err != nil {
		return err
	}

	predicted, err := e.forecaster.Forecast(model, window, bot.Tech.Horizon)
	if err != nil {
		return fmt.Errorf("bot %s: %w", bot.Name, err)
	}

	decision := Decide(predicted, bot.Tech.AccuracyMargin, bot.Cash.MinPriceIncrement, e.commissionRate)
	logger.Infof("Bot %s decision at %s: beneficial=%t buy=%.4f sell=%.4f",
		bot.Name, e.now().UTC().Truncate(time.Minute).Format(time.RFC3339), decision.Beneficial, decision.Buy, decision.Sell)

	if !decision.Beneficial {
		logger.Infof("Bot %s: no trade this cycle", bot.Name)
		return nil
	}

	placed := e.placeOrders(ctx, bot, decision)
	if len(placed) == 0 {
		logger.Infof("Bot %s: no order placed", bot.Name)
		return nil
	}

	// Let the market fill or expire the orders before the single
	// reconciliation poll.
	wait := time.Duration(intervalMinutes)*time.Minute - e.safetyMargin
	if err := e.sleep(ctx, wait); err != nil {
		return fmt.Errorf("bot %s: %w", bot.Name, err)
	}

	e.reconcile(ctx, bot, placed)

	if err := orderlog.Open(bot.OrderLogPath).Append(placed); err != nil {
		logger.Errorf("Bot %s: order log not updated: %v", bot.Name, err)
	}
	if err := e.store.Save(bot); err != nil {
		return fmt.Errorf("bot %s: %w", bot.Name, err)
	}
	return nil
}

// featureWindow fetches the historical candles covering the configured
// input window and trims the feature matrix to exactly that length.
func (e *Engine) featureWindow(ctx context.Context, bot *config.BotConfig, intervalMinutes int) ([][]float64, error) {
	days := LookbackDays(bot.Tech.InputWindow, intervalMinutes, e.now())
	candles, err := e.client.GetCandles(ctx, bot.Model.Figi, days, bot.Model.Interval)
	if err != nil {
		return nil, fmt.Errorf("bot %s: candle fetch: %w", bot.Name, err)
	}
	features := exchange.Features(candles)
	if len(features) < bot.Tech.InputWindow {
		return nil, fmt.Errorf("bot %s: %d candles for input window of %d", bot.Name, len(features), bot.Tech.InputWindow)
	}
	return features[len(features)-bot.Tech.InputWindow:], nil
}

// placeOrders submits the eligible sides as limit orders. Each eligible
// side is independent: a failed or ineligible buy does not block the sell.
func (e *Engine) placeOrders(ctx context.Context, bot *config.BotConfig, decision Decision) map[string]orderlog.Record {
	cash := bot.Cash
	placed := make(map[string]orderlog.Record)

	buyNotional := Notional(decision.Buy, cash.Quantity, cash.LotSize)
	if cash.Cash-buyNotional > cash.MinCash {
		if rec, id, ok := e.submit(ctx, bot, exchange.Buy, decision.Buy, buyNotional); ok {
			placed[id] = rec
		}
	}
	if cash.Lots-cash.Quantity >= cash.MinLots {
		sellNotional := Notional(decision.Sell, cash.Quantity, cash.LotSize)
		if rec, id, ok := e.submit(ctx, bot, exchange.Sell, decision.Sell, sellNotional); ok {
			placed[id] = rec
		}
	}
	return placed
}

func (e *Engine) submit(ctx context.Context, bot *config.BotConfig, direction exchange.OrderDirection, price, notional float64) (orderlog.Record, string, bool) {
	orderID, err := e.client.PlaceOrder(ctx, exchange.PlaceOrderRequest{
		Figi:      bot.Model.Figi,
		Quantity:  bot.Cash.Quantity,
		Price:     price,
		Direction: direction,
		Kind:      exchange.Limit,
	})
	if err != nil {
		logger.Errorf("Bot %s: posting %s limit order failed: %v", bot.Name, direction, err)
		return orderlog.Record{}, "", false
	}

	status, err := e.client.GetOrderStatus(ctx, orderID)
	if err != nil {
		logger.Errorf("Bot %s: initial status query for order %s failed: %v", bot.Name, orderID, err)
	}
	return orderlog.Record{
		Direction: direction,
		Notional:  notional,
		Status:    status,
		PlacedAt:  e.now().UTC().Truncate(time.Minute),
		LiveTime:  bot.Model.Interval,
	}, orderID, true
}

// reconcile polls each placed order once. A fill applies the ledger
// update; every other status gets an explicit cancel and is recorded as
// CANCELLED, never left NEW.
func (e *Engine) reconcile(ctx context.Context, bot *config.BotConfig, placed map[string]orderlog.Record) {
	for orderID, rec := range placed {
		status, err := e.client.GetOrderStatus(ctx, orderID)
		if err != nil {
			logger.Errorf("Bot %s: status query for order %s failed: %v", bot.Name, orderID, err)
		}

		if status == exchange.StatusFill {
			e.applyFill(bot, rec)
			rec.Status = exchange.StatusFill
			logger.Infof("Bot %s: order %s filled (%s, notional %.2f)", bot.Name, orderID, rec.Direction, rec.Notional)
		} else {
			if err := e.client.CancelOrder(ctx, orderID); err != nil {
				logger.Errorf("Bot %s: failed to cancel order %s: %v", bot.Name, orderID, err)
			}
			rec.Status = exchange.StatusCancelled
			logger.Infof("Bot %s: order %s cancelled (observed status %s)", bot.Name, orderID, status)
		}
		placed[orderID] = rec

		e.record(bot, orderID, rec)
	}
}

// applyFill mutates the ledger for a terminal fill. The bot runs
// single-threaded per instrument, so no locking is needed here.
func (e *Engine) applyFill(bot *config.BotConfig, rec orderlog.Record) {
	switch rec.Direction {
	case exchange.Buy:
		bot.Cash.Cash -= rec.Notional
		bot.Cash.Lots += bot.Cash.Quantity
	case exchange.Sell:
		bot.Cash.Cash += rec.Notional
		bot.Cash.Lots -= bot.Cash.Quantity
	}
}

func (e *Engine) record(bot *config.BotConfig, orderID string, rec orderlog.Record) {
	if e.writer != nil {
		e.writer.SaveFill(dbwriter.Fill{
			Time:      e.now().UTC(),
			Bot:       bot.Name,
			Figi:      bot.Model.Figi,
			OrderID:   orderID,
			Direction: string(rec.Direction),
			Status:    string(rec.Status),
			Notional:  rec.Notional,
			Quantity:  bot.Cash.Quantity,
		})
	}
	if e.notifier != nil && rec.Status == exchange.StatusFill {
		if err := e.notifier.Send(fmt.Sprintf("%s: %s fill, notional %.2f", bot.Name, rec.Direction, rec.Notional)); err != nil {
			logger.Errorf("Bot %s: notifier: %v", bot.Name, err)
		}
	}
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
