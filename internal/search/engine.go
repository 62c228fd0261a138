package search

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/var-trade-bot/internal/config"
	"github.com/your-org/var-trade-bot/internal/dbwriter"
	"github.com/your-org/var-trade-bot/internal/exchange"
	"github.com/your-org/var-trade-bot/internal/forecast"
	"github.com/your-org/var-trade-bot/internal/scorer"
	"github.com/your-org/var-trade-bot/pkg/logger"
)

// Engine runs the grid search for one bot at a time.
type Engine struct {
	client     exchange.Client
	forecaster forecast.Forecaster
	store      *config.Store
	writer     *dbwriter.Writer // nil-safe, optional
}

// NewEngine creates a search Engine.
func NewEngine(client exchange.Client, forecaster forecast.Forecaster, store *config.Store, writer *dbwriter.Writer) *Engine {
	return &Engine{
		client:     client,
		forecaster: forecaster,
		store:      store,
		writer:     writer,
	}
}

// Retrain evaluates the full hyperparameter grid for the bot, refits the
// winning configuration on the training dataset, persists the new model
// artifact, and writes the updated bot record back to the store.
func (e *Engine) Retrain(ctx context.Context, bot *config.BotConfig) error {
	m := bot.Model
	bounds := SearchBounds(m, bot.Tech)

	testCandles, err := e.client.GetCandles(ctx, m.Figi, testSpanDays, m.Interval)
	if err != nil {
		return fmt.Errorf("retrain %s: test data fetch: %w", bot.Name, err)
	}
	testData := exchange.Features(testCandles)

	trainCandles, err := e.client.GetCandles(ctx, m.Figi, bounds.DayHigh+trainingPadDays, m.Interval)
	if err != nil {
		return fmt.Errorf("retrain %s: training data fetch: %w", bot.Name, err)
	}

	var trials []Trial
	for day := bounds.DayLow; day <= bounds.DayHigh; day++ {
		logger.Infof("Model %s retraining: day=%d", m.ModelName, day)
		trainWindow := exchange.FeaturesSince(trainCandles, day)

		for lag := bounds.LagLow; lag <= bounds.LagHigh; lag++ {
			model, err := e.forecaster.Fit(trainWindow, lag)
			if err != nil {
				logger.Debugf("Model %s: fit failed for day=%d lag=%d, skipping: %v", m.ModelName, day, lag, err)
				continue
			}

			windowLow, windowHigh := WindowBounds(bot.Tech.InputWindow, m.SpreadWindow, lag)
			for window := windowLow; window <= windowHigh; window++ {
				for horizon := 1; horizon <= bounds.HorizonHigh; horizon++ {
					trial, ok := e.evaluate(model, testData, window, horizon)
					if !ok {
						continue
					}
					trial.TrainingDays = day
					trial.LagOrder = lag
					trials = append(trials, trial)
				}
			}
		}
	}

	best, ok := bestTrial(trials)
	if !ok {
		return fmt.Errorf("retrain %s: no grid point produced a usable forecast", bot.Name)
	}

	finalWindow := exchange.FeaturesSince(trainCandles, best.TrainingDays)
	finalModel, err := e.forecaster.Fit(finalWindow, best.LagOrder)
	if err != nil {
		return fmt.Errorf("retrain %s: final fit: %w", bot.Name, err)
	}
	if err := forecast.SaveModel(finalModel, m.ArtifactPath); err != nil {
		return fmt.Errorf("retrain %s: %w", bot.Name, err)
	}

	bot.Model.TrainingDays = best.TrainingDays
	bot.Model.LagOrder = best.LagOrder
	bot.Model.MeanAbsoluteError = best.MeanAbsolute
	bot.Model.MeanRelativeError = best.MeanRelative
	bot.Tech = config.TechnicalLimits{
		AccuracyMargin: best.MeanRelative,
		InputWindow:    best.InputWindow,
		Horizon:        best.Horizon,
	}
	if err := e.store.Save(bot); err != nil {
		return fmt.Errorf("retrain %s: %w", bot.Name, err)
	}

	e.recordTrials(bot.Name, trials, best)

	logger.Infof("Model %s completed retraining: days=%d lag=%d window=%d horizon=%d meanRelErr=%.6f",
		m.ModelName, best.TrainingDays, best.LagOrder, best.InputWindow, best.Horizon, best.MeanRelative)
	return nil
}

// evaluate slides a window of the given length across the held-out test
// data and scores horizon-step forecasts against the realized subsequent
// rows. Windows the model cannot forecast are excluded from the average;
// a grid point with no scorable window yields no trial.
func (e *Engine) evaluate(model *forecast.Model, testData [][]float64, window, horizon int) (Trial, bool) {
	var absErrs, relErrs [][]float64
	for start := 0; start < len(testData)-(window+horizon); start++ {
		in := testData[start : start+window]
		realized := testData[start+window : start+window+horizon]

		predicted, err := e.forecaster.Forecast(model, in, horizon)
		if err != nil {
			continue
		}
		absErr, err := scorer.AbsoluteError(predicted, realized)
		if err != nil {
			continue
		}
		relErr, err := scorer.RelativeError(predicted, realized)
		if err != nil {
			continue
		}
		absErrs = append(absErrs, absErr)
		relErrs = append(relErrs, relErr)
	}
	if len(relErrs) == 0 {
		return Trial{}, false
	}

	abs := scorer.Average(absErrs)
	rel := scorer.Average(relErrs)
	return Trial{
		InputWindow:   window,
		Horizon:       horizon,
		AbsoluteError: abs,
		RelativeError: rel,
		MeanAbsolute:  scorer.Scalar(abs),
		MeanRelative:  scorer.Scalar(rel),
	}, true
}

// recordTrials persists the evaluated grid to the optional database
// writer, flagging the selected point.
func (e *Engine) recordTrials(botName string, trials []Trial, best Trial) {
	if e.writer == nil {
		return
	}
	now := time.Now().UTC()
	for _, t := range trials {
		e.writer.SaveTrial(dbwriter.Trial{
			Time:              now,
			Bot:               botName,
			TrainingDays:      t.TrainingDays,
			LagOrder:          t.LagOrder,
			InputWindow:       t.InputWindow,
			Horizon:           t.Horizon,
			MeanAbsoluteError: t.MeanAbsolute,
			MeanRelativeError: t.MeanRelative,
			Selected: t.TrainingDays == best.TrainingDays &&
				t.LagOrder == best.LagOrder &&
				t.InputWindow == best.InputWindow &&
				t.Horizon == best.Horizon,
		})
	}
}
