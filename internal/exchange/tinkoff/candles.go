package tinkoff

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/var-trade-bot/internal/exchange"
)

// candleIntervals maps the sampling interval vocabulary to the Invest API
// candle interval enum.
var candleIntervals = map[string]string{
	"1m":  "CANDLE_INTERVAL_1_MIN",
	"2m":  "CANDLE_INTERVAL_2_MIN",
	"3m":  "CANDLE_INTERVAL_3_MIN",
	"5m":  "CANDLE_INTERVAL_5_MIN",
	"10m": "CANDLE_INTERVAL_10_MIN",
	"15m": "CANDLE_INTERVAL_15_MIN",
	"30m": "CANDLE_INTERVAL_30_MIN",
	"1h":  "CANDLE_INTERVAL_HOUR",
	"2h":  "CANDLE_INTERVAL_2_HOUR",
	"4h":  "CANDLE_INTERVAL_4_HOUR",
	"24h": "CANDLE_INTERVAL_DAY",
}

// GetCandles fetches the historical candle series covering the trailing
// lookbackDays. Weekend rows are dropped from the result.
func (c *Client) GetCandles(ctx context.Context, figi string, lookbackDays int, interval string) ([]exchange.Candle, error) {
	apiInterval, ok := candleIntervals[interval]
	if !ok {
		return nil, fmt.Errorf("unknown candle interval label %q", interval)
	}

	now := time.Now().UTC()
	req := getCandlesRequest{
		Figi:     figi,
		From:     now.AddDate(0, 0, -lookbackDays).Format(time.RFC3339),
		To:       now.Format(time.RFC3339),
		Interval: apiInterval,
	}
	var resp getCandlesResponse
	if err := c.post(ctx, marketDataService+"/GetCandles", req, &resp); err != nil {
		return nil, fmt.Errorf("GetCandles %s: %w", figi, err)
	}

	candles := make([]exchange.Candle, 0, len(resp.Candles))
	for _, hc := range resp.Candles {
		t, err := time.Parse(time.RFC3339, hc.Time)
		if err != nil {
			return nil, fmt.Errorf("GetCandles %s: bad candle time %q: %w", figi, hc.Time, err)
		}
		if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		candles = append(candles, exchange.Candle{
			Time:   t,
			Open:   hc.Open.Float(),
			Close:  hc.Close.Float(),
			High:   hc.High.Float(),
			Low:    hc.Low.Float(),
			Volume: hc.Volume,
		})
	}
	return candles, nil
}
