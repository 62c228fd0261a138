// Package scorer computes forecast error metrics between predicted and
// realized feature matrices.
package scorer

import (
	"fmt"
	"math"
)

// AbsoluteError returns the component-wise mean absolute deviation
// |real - pred| averaged over rows.
func AbsoluteError(pred, real [][]float64) ([]float64, error) {
	return meanDeviation(pred, real, false)
}

// RelativeError returns the component-wise mean of |real - pred| / |real|
// averaged over rows.
func RelativeError(pred, real [][]float64) ([]float64, error) {
	return meanDeviation(pred, real, true)
}

func meanDeviation(pred, real [][]float64, relative bool) ([]float64, error) {
	if len(pred) == 0 || len(pred) != len(real) {
		return nil, fmt.Errorf("scorer: predicted %d rows, realized %d", len(pred), len(real))
	}
	dim := len(real[0])
	sums := make([]float64, dim)
	for i := range real {
		if len(pred[i]) != dim || len(real[i]) != dim {
			return nil, fmt.Errorf("scorer: ragged row %d", i)
		}
		for c := 0; c < dim; c++ {
			delta := math.Abs(real[i][c] - pred[i][c])
			if relative {
				delta /= math.Abs(real[i][c])
			}
			sums[c] += delta
		}
	}
	for c := range sums {
		sums[c] /= float64(len(real))
	}
	return sums, nil
}

// Average reduces per-window error vectors to their element-wise mean.
func Average(vectors [][]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}
	out := make([]float64, len(vectors[0]))
	for _, v := range vectors {
		for c := range out {
			out[c] += v[c]
		}
	}
	for c := range out {
		out[c] /= float64(len(vectors))
	}
	return out
}

// Scalar reduces a component-wise error vector to its mean, the value
// trials are ranked by.
func Scalar(v []float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
