package orderlog_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/var-trade-bot/internal/exchange"
	"github.com/your-org/var-trade-bot/internal/orderlog"
)

func TestLog_ReadMissingFile(t *testing.T) {
	log := orderlog.Open(filepath.Join(t.TempDir(), "orders.json"))
	records := log.Read()
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestLog_AppendAndMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	log := orderlog.Open(path)

	placedAt := time.Date(2026, 8, 26, 10, 10, 0, 0, time.UTC)
	require.NoError(t, log.Append(map[string]orderlog.Record{
		"1": {Direction: exchange.Buy, Notional: 5000, Status: exchange.StatusNew, PlacedAt: placedAt, LiveTime: "5m"},
		"2": {Direction: exchange.Sell, Notional: 5200, Status: exchange.StatusNew, PlacedAt: placedAt, LiveTime: "5m"},
	}))

	// A later cycle resolves order 1 and adds order 3; order 2 is untouched.
	require.NoError(t, log.Append(map[string]orderlog.Record{
		"1": {Direction: exchange.Buy, Notional: 5000, Status: exchange.StatusFill, PlacedAt: placedAt, LiveTime: "5m"},
		"3": {Direction: exchange.Buy, Notional: 4900, Status: exchange.StatusCancelled, PlacedAt: placedAt.Add(5 * time.Minute), LiveTime: "5m"},
	}))

	records := orderlog.Open(path).Read()
	require.Len(t, records, 3)
	assert.Equal(t, exchange.StatusFill, records["1"].Status)
	assert.Equal(t, exchange.StatusNew, records["2"].Status)
	assert.Equal(t, exchange.StatusCancelled, records["3"].Status)
	assert.True(t, records["1"].PlacedAt.Equal(placedAt))
}

func TestLog_CorruptFileRecoversEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	log := orderlog.Open(path)
	assert.Empty(t, log.Read())

	// Appending over the damaged file replaces it with a clean snapshot.
	require.NoError(t, log.Append(map[string]orderlog.Record{
		"1": {Direction: exchange.Buy, Notional: 100, Status: exchange.StatusNew},
	}))
	assert.Len(t, log.Read(), 1)
}
