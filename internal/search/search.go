// Package search implements the nightly hyperparameter grid search: it
// re-optimizes a bot's training-window length, lag order, input-window
// length and horizon around the last known-good values, and persists the
// winning model.
package search

import (
	"math"

	"github.com/your-org/var-trade-bot/internal/config"
)

const (
	// maxLagOrder is the hard ceiling on the VAR lag order.
	maxLagOrder = 35
	// testSpanDays is the fixed recent span fetched once as the held-out
	// test dataset, independent of the grid.
	testSpanDays = 14
	// trainingPadDays widens the training fetch past the largest grid day
	// so every grid point has a full window to slice from.
	trainingPadDays = 4
)

// Bounds is the searched hyperparameter ranges, all ends inclusive.
// Input-window bounds depend on the lag order under evaluation and are
// computed per grid point by WindowBounds.
type Bounds struct {
	DayLow      int
	DayHigh     int
	LagLow      int
	LagHigh     int
	HorizonHigh int
}

// SearchBounds derives the grid ranges from the last known-good
// hyperparameters and their spread fractions. Day and lag ranges scale
// with their spreads; the horizon range is fixed at 1..last.
func SearchBounds(m config.ModelParams, t config.TechnicalLimits) Bounds {
	return Bounds{
		DayLow:      maxInt(int(math.Floor(float64(m.TrainingDays)*(1-m.SpreadDays))), 1),
		DayHigh:     int(math.Ceil(float64(m.TrainingDays) * (1 + m.SpreadDays))),
		LagLow:      maxInt(int(math.Floor(float64(m.LagOrder)*(1-m.SpreadLag))), 1),
		LagHigh:     minInt(int(math.Ceil(float64(m.LagOrder)*(1+m.SpreadLag))), maxLagOrder),
		HorizonHigh: t.Horizon,
	}
}

// WindowBounds derives the inclusive input-window range for one lag
// order. The window must be at least as long as the lag order.
func WindowBounds(lastWindow int, spread float64, lag int) (low, high int) {
	low = maxInt(int(math.Floor(float64(lastWindow)*(1-spread))), 1)
	if low < lag {
		low = lag
	}
	high = int(math.Ceil(float64(lastWindow) * (1 + spread)))
	return low, high
}

// Trial is the evaluation result for one grid point.
type Trial struct {
	TrainingDays int
	LagOrder     int
	InputWindow  int
	Horizon      int

	AbsoluteError []float64
	RelativeError []float64
	MeanAbsolute  float64
	MeanRelative  float64
}

// bestTrial selects the grid point with the strictly minimal scalar mean
// relative error. Ties keep the first-seen trial, so a re-run over
// identical data reproduces the same selection.
func bestTrial(trials []Trial) (Trial, bool) {
	if len(trials) == 0 {
		return Trial{}, false
	}
	best := trials[0]
	for _, t := range trials[1:] {
		if t.MeanRelative < best.MeanRelative {
			best = t
		}
	}
	return best, true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
