// Package orderlog persists the per-bot order history: a JSON map keyed
// by brokerage order id, rewritten as a whole-file snapshot on every
// persist. Entries are only ever added or overwritten by id.
package orderlog

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/your-org/var-trade-bot/internal/exchange"
	"github.com/your-org/var-trade-bot/pkg/logger"
)

// Record is one order's logged state.
type Record struct {
	Direction exchange.OrderDirection `json:"direction"`
	Notional  float64                 `json:"notional"`
	Status    exchange.OrderStatus    `json:"status"`
	PlacedAt  time.Time               `json:"placed_at"`
	LiveTime  string                  `json:"live_time"`
}

// Log is a whole-file snapshot store for order records.
type Log struct {
	path string
}

// Open returns a Log over the given path. The file need not exist yet.
func Open(path string) *Log {
	return &Log{path: path}
}

// Read loads the stored order map. A missing or unreadable file is
// recovered as an empty map so a damaged log never blocks trading.
func (l *Log) Read() map[string]Record {
	records := make(map[string]Record)
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Errorf("Failed to read order log %s, starting empty: %v", l.path, err)
		}
		return records
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		logger.Errorf("Failed to parse order log %s, starting empty: %v", l.path, err)
		return make(map[string]Record)
	}
	return records
}

// Append merges the given records into the stored map by order id and
// rewrites the snapshot.
func (l *Log) Append(records map[string]Record) error {
	merged := l.Read()
	for id, rec := range records {
		merged[id] = rec
	}
	return l.write(merged)
}

func (l *Log) write(records map[string]Record) error {
	raw, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal order log: %w", err)
	}
	if err := os.WriteFile(l.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write order log %s: %w", l.path, err)
	}
	return nil
}
