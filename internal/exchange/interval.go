package exchange

import "fmt"

// intervalMinutes is the accepted sampling interval vocabulary and its
// cadence in minutes.
var intervalMinutes = map[string]int{
	"1m":  1,
	"2m":  2,
	"3m":  3,
	"5m":  5,
	"10m": 10,
	"15m": 15,
	"30m": 30,
	"1h":  60,
	"2h":  120,
	"4h":  240,
	"24h": 1440,
}

// IntervalMinutes maps a sampling interval label to its cadence in minutes.
// An unknown label is a configuration error.
func IntervalMinutes(label string) (int, error) {
	minutes, ok := intervalMinutes[label]
	if !ok {
		return 0, fmt.Errorf("unknown candle interval label %q", label)
	}
	return minutes, nil
}
