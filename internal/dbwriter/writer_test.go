package dbwriter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/your-org/var-trade-bot/internal/config"
)

// mockPool records CopyFrom calls instead of talking to a database.
type mockPool struct {
	mu     sync.Mutex
	copies []copyCall
	closed bool
}

type copyCall struct {
	table   string
	columns []string
	rows    int64
}

func (m *mockPool) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	var n int64
	for rowSrc.Next() {
		n++
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copies = append(m.copies, copyCall{table: tableName.Sanitize(), columns: columnNames, rows: n})
	return n, nil
}

func (m *mockPool) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockPool) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *mockPool) calls() []copyCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]copyCall(nil), m.copies...)
}

func TestWriter_SaveFillFlushesAtBatchSize(t *testing.T) {
	pool := &mockPool{}
	writer := NewWriterWithPool(pool, config.DBWriterConfig{BatchSize: 2, WriteIntervalSeconds: 60}, zap.NewNop())

	writer.SaveFill(Fill{Time: time.Now(), Bot: "sber", Figi: "BBG004730N88", OrderID: "1", Direction: "BUY", Status: "FILL", Notional: 5000, Quantity: 10})
	assert.Empty(t, pool.calls(), "below the batch size nothing is flushed")

	writer.SaveFill(Fill{Time: time.Now(), Bot: "sber", Figi: "BBG004730N88", OrderID: "2", Direction: "SELL", Status: "CANCELLED", Notional: 5200, Quantity: 10})

	calls := pool.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, `"order_fills"`, calls[0].table)
	assert.Equal(t, int64(2), calls[0].rows)
	assert.Contains(t, calls[0].columns, "notional")
}

func TestWriter_SaveTrialFlushesOnClose(t *testing.T) {
	pool := &mockPool{}
	writer := NewWriterWithPool(pool, config.DBWriterConfig{BatchSize: 100, WriteIntervalSeconds: 60}, zap.NewNop())

	writer.SaveTrial(Trial{Time: time.Now(), Bot: "sber", TrainingDays: 10, LagOrder: 3, InputWindow: 20, Horizon: 2, MeanRelativeError: 0.01, Selected: true})
	writer.Close()

	calls := pool.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, `"retraining_trials"`, calls[0].table)
	assert.Equal(t, int64(1), calls[0].rows)
	assert.True(t, pool.closed)
}

func TestWriter_NilPoolIsDummy(t *testing.T) {
	writer := NewWriterWithPool(nil, config.DBWriterConfig{}, zap.NewNop())
	writer.SaveFill(Fill{Bot: "sber"})
	writer.SaveTrial(Trial{Bot: "sber"})
	writer.Close()
}

func TestWriter_NilWriterIsSafe(t *testing.T) {
	var writer *Writer
	writer.SaveFill(Fill{})
	writer.SaveTrial(Trial{})
	writer.Close()
}
