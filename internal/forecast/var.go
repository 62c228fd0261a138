package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// VAR fits vector autoregressions by ordinary least squares with an
// intercept term.
type VAR struct{}

// NewVAR creates a VAR forecaster.
func NewVAR() *VAR {
	return &VAR{}
}

// Fit estimates a VAR(lag) model on the feature window. Each of the
// T-lag usable rows contributes one least-squares equation per feature
// component; the stacked system is solved by QR decomposition.
func (v *VAR) Fit(window [][]float64, lag int) (*Model, error) {
	if lag < 1 {
		return nil, fmt.Errorf("%w: lag order %d", ErrFitFailed, lag)
	}
	if len(window) == 0 || len(window[0]) == 0 {
		return nil, ErrInsufficientData
	}
	dim := len(window[0])
	rows := len(window) - lag
	cols := 1 + lag*dim
	if rows < cols {
		return nil, fmt.Errorf("%w: %d usable rows for %d coefficients", ErrInsufficientData, rows, cols)
	}

	z := mat.NewDense(rows, cols, nil)
	y := mat.NewDense(rows, dim, nil)
	for i := 0; i < rows; i++ {
		t := lag + i
		if len(window[t]) != dim {
			return nil, fmt.Errorf("%w: ragged feature row %d", ErrFitFailed, t)
		}
		z.Set(i, 0, 1)
		for j := 1; j <= lag; j++ {
			for c := 0; c < dim; c++ {
				z.Set(i, 1+(j-1)*dim+c, window[t-j][c])
			}
		}
		y.SetRow(i, window[t])
	}

	var b mat.Dense
	if err := b.Solve(z, y); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}

	model := &Model{
		Dim:       dim,
		Lag:       lag,
		Intercept: make([]float64, dim),
		Coef:      make([][][]float64, lag),
	}
	for r := 0; r < dim; r++ {
		model.Intercept[r] = b.At(0, r)
	}
	for j := 0; j < lag; j++ {
		a := make([][]float64, dim)
		for r := 0; r < dim; r++ {
			a[r] = make([]float64, dim)
			for c := 0; c < dim; c++ {
				a[r][c] = b.At(1+j*dim+c, r)
			}
		}
		model.Coef[j] = a
	}
	return model, nil
}

// Forecast iterates the fitted recurrence horizon steps ahead from the
// tail of the recent window.
func (v *VAR) Forecast(model *Model, recent [][]float64, horizon int) ([][]float64, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: nil model", ErrForecastFailed)
	}
	if horizon < 1 {
		return nil, fmt.Errorf("%w: horizon %d", ErrForecastFailed, horizon)
	}
	if len(recent) < model.Lag {
		return nil, fmt.Errorf("%w: window of %d rows shorter than lag order %d", ErrForecastFailed, len(recent), model.Lag)
	}

	// History holds the lag most recent rows, newest last.
	hist := make([][]float64, model.Lag)
	for i := 0; i < model.Lag; i++ {
		row := recent[len(recent)-model.Lag+i]
		if len(row) != model.Dim {
			return nil, fmt.Errorf("%w: feature row has %d components, model has %d", ErrForecastFailed, len(row), model.Dim)
		}
		hist[i] = row
	}

	out := make([][]float64, 0, horizon)
	for step := 0; step < horizon; step++ {
		next := make([]float64, model.Dim)
		copy(next, model.Intercept)
		for j := 1; j <= model.Lag; j++ {
			prev := hist[len(hist)-j]
			a := model.Coef[j-1]
			for r := 0; r < model.Dim; r++ {
				for c := 0; c < model.Dim; c++ {
					next[r] += a[r][c] * prev[c]
				}
			}
		}
		for _, x := range next {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("%w: non-finite prediction at step %d", ErrForecastFailed, step+1)
			}
		}
		out = append(out, next)
		hist = append(hist[1:], next)
	}
	return out, nil
}
