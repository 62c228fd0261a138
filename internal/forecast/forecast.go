// Package forecast provides the multivariate time-series forecasting
// capability: fitting a vector autoregression on a feature window and
// producing N-step-ahead forecasts.
package forecast

import "errors"

// Fit and forecast failures are explicit errors, never zero-valued
// results. Callers skip the affected trial or run.
var (
	// ErrInsufficientData means the feature window is too short for the
	// requested lag order.
	ErrInsufficientData = errors.New("forecast: insufficient data for lag order")
	// ErrFitFailed means the least-squares problem was degenerate.
	ErrFitFailed = errors.New("forecast: model fit failed")
	// ErrForecastFailed means the model could not produce a prediction
	// for the given window.
	ErrForecastFailed = errors.New("forecast: prediction failed")
)

// Model is a fitted VAR(p) model: x_t = c + A_1 x_{t-1} + ... + A_p x_{t-p}.
type Model struct {
	Dim       int           `json:"dim"`
	Lag       int           `json:"lag"`
	Intercept []float64     `json:"intercept"`
	// Coef[i] is A_{i+1}, the coefficient matrix for lag i+1, row-major
	// (Coef[i][r][c] weights component c of x_{t-i-1} in component r of x_t).
	Coef [][][]float64 `json:"coef"`
}

// Forecaster is the forecasting capability consumed by the trading engine
// and the hyperparameter search.
type Forecaster interface {
	// Fit trains a model of the given lag order on a feature window
	// (rows are time steps, columns are features).
	Fit(window [][]float64, lag int) (*Model, error)
	// Forecast predicts horizon steps ahead from the tail of recent.
	Forecast(model *Model, recent [][]float64, horizon int) ([][]float64, error)
}
