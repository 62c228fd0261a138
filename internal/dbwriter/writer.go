// Package dbwriter persists execution and retraining history to
// TimescaleDB in batches.
package dbwriter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/your-org/var-trade-bot/internal/config"
)

// Fill is one terminal order outcome.
type Fill struct {
	Time      time.Time `db:"time"`
	Bot       string    `db:"bot"`
	Figi      string    `db:"figi"`
	OrderID   string    `db:"order_id"`
	Direction string    `db:"direction"`
	Status    string    `db:"status"`
	Notional  float64   `db:"notional"`
	Quantity  int64     `db:"quantity"`
}

// Trial is one evaluated hyperparameter grid point.
type Trial struct {
	Time              time.Time `db:"time"`
	Bot               string    `db:"bot"`
	TrainingDays      int       `db:"training_days"`
	LagOrder          int       `db:"lag_order"`
	InputWindow       int       `db:"input_window"`
	Horizon           int       `db:"horizon"`
	MeanAbsoluteError float64   `db:"mean_absolute_error"`
	MeanRelativeError float64   `db:"mean_relative_error"`
	Selected          bool      `db:"selected"`
}

// Pool is an interface that abstracts the pgxpool.Pool for testability.
type Pool interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Close()
}

// Writer buffers fills and trials and flushes them to the database on a
// fixed interval or when a buffer reaches the batch size. A Writer with a
// nil pool is a dummy that drops everything, used when the database is
// not configured.
type Writer struct {
	pool         Pool
	logger       *zap.Logger
	config       config.DBWriterConfig
	fillBuffer   []Fill
	trialBuffer  []Trial
	bufferMutex  sync.Mutex
	flushTicker  *time.Ticker
	shutdownChan chan struct{}
}

// NewWriter connects to the configured database, applies schema
// migrations, and starts the background flusher.
func NewWriter(ctx context.Context, dbCfg config.DatabaseConfig, writerCfg config.DBWriterConfig, logger *zap.Logger) (*Writer, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.Name, dbCfg.SSLMode)

	if err := applyMigrations(dsn); err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewWriterWithPool(pool, writerCfg, logger), nil
}

// NewWriterWithPool creates a Writer over an externally provided pool.
// A nil pool yields a dummy writer.
func NewWriterWithPool(pool Pool, writerCfg config.DBWriterConfig, logger *zap.Logger) *Writer {
	w := &Writer{
		pool:         pool,
		logger:       logger,
		config:       writerCfg,
		shutdownChan: make(chan struct{}),
	}
	if pool == nil {
		logger.Info("database pool is nil, creating dummy writer")
		return w
	}
	if w.config.BatchSize <= 0 {
		w.config.BatchSize = 100
	}
	if w.config.WriteIntervalSeconds <= 0 {
		w.config.WriteIntervalSeconds = 1
	}
	w.fillBuffer = make([]Fill, 0, w.config.BatchSize)
	w.trialBuffer = make([]Trial, 0, w.config.BatchSize)
	w.flushTicker = time.NewTicker(time.Duration(w.config.WriteIntervalSeconds) * time.Second)
	go w.run()
	logger.Info("started batch writer",
		zap.Int("batchSize", w.config.BatchSize),
		zap.Int("writeIntervalSeconds", w.config.WriteIntervalSeconds))
	return w
}

// Close flushes outstanding buffers and closes the pool.
func (w *Writer) Close() {
	if w == nil || w.pool == nil {
		return
	}
	close(w.shutdownChan)
	w.flushTicker.Stop()
	w.flushBuffers()
	w.pool.Close()
	w.logger.Info("database writer closed")
}

func (w *Writer) run() {
	for {
		select {
		case <-w.flushTicker.C:
			w.flushBuffers()
		case <-w.shutdownChan:
			return
		}
	}
}

// SaveFill appends a terminal order outcome to the write buffer.
func (w *Writer) SaveFill(fill Fill) {
	if w == nil || w.pool == nil {
		return
	}
	w.bufferMutex.Lock()
	w.fillBuffer = append(w.fillBuffer, fill)
	shouldFlush := len(w.fillBuffer) >= w.config.BatchSize
	w.bufferMutex.Unlock()

	if shouldFlush {
		w.flushBuffers()
	}
}

// SaveTrial appends an evaluated grid point to the write buffer.
func (w *Writer) SaveTrial(trial Trial) {
	if w == nil || w.pool == nil {
		return
	}
	w.bufferMutex.Lock()
	w.trialBuffer = append(w.trialBuffer, trial)
	shouldFlush := len(w.trialBuffer) >= w.config.BatchSize
	w.bufferMutex.Unlock()

	if shouldFlush {
		w.flushBuffers()
	}
}

func (w *Writer) flushBuffers() {
	w.bufferMutex.Lock()
	defer w.bufferMutex.Unlock()

	if len(w.fillBuffer) > 0 {
		w.batchInsertFills(context.Background(), w.fillBuffer)
		w.fillBuffer = w.fillBuffer[:0]
	}
	if len(w.trialBuffer) > 0 {
		w.batchInsertTrials(context.Background(), w.trialBuffer)
		w.trialBuffer = w.trialBuffer[:0]
	}
}

func (w *Writer) batchInsertFills(ctx context.Context, fills []Fill) {
	w.logger.Debug("flushing fills", zap.Int("count", len(fills)))
	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"order_fills"},
		[]string{"time", "bot", "figi", "order_id", "direction", "status", "notional", "quantity"},
		pgx.CopyFromRows(toFillInterfaces(fills)),
	)
	if err != nil {
		w.logger.Error("failed to batch insert fills", zap.Error(err))
	}
}

func (w *Writer) batchInsertTrials(ctx context.Context, trials []Trial) {
	w.logger.Debug("flushing trials", zap.Int("count", len(trials)))
	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"retraining_trials"},
		[]string{"time", "bot", "training_days", "lag_order", "input_window", "horizon", "mean_absolute_error", "mean_relative_error", "selected"},
		pgx.CopyFromRows(toTrialInterfaces(trials)),
	)
	if err != nil {
		w.logger.Error("failed to batch insert trials", zap.Error(err))
	}
}

func toFillInterfaces(fills []Fill) [][]interface{} {
	rows := make([][]interface{}, len(fills))
	for i, f := range fills {
		rows[i] = []interface{}{f.Time, f.Bot, f.Figi, f.OrderID, f.Direction, f.Status, f.Notional, f.Quantity}
	}
	return rows
}

func toTrialInterfaces(trials []Trial) [][]interface{} {
	rows := make([][]interface{}, len(trials))
	for i, t := range trials {
		rows[i] = []interface{}{t.Time, t.Bot, t.TrainingDays, t.LagOrder, t.InputWindow, t.Horizon, t.MeanAbsoluteError, t.MeanRelativeError, t.Selected}
	}
	return rows
}
