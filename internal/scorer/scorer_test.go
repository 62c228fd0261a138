package scorer_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/var-trade-bot/internal/scorer"
)

func TestAbsoluteError(t *testing.T) {
	pred := [][]float64{{100, 200}, {110, 190}}
	real := [][]float64{{102, 198}, {108, 194}}

	got, err := scorer.AbsoluteError(pred, real)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 2.0, got[0], 1e-12)
	assert.InDelta(t, 3.0, got[1], 1e-12)
}

func TestRelativeError(t *testing.T) {
	pred := [][]float64{{90}, {110}}
	real := [][]float64{{100}, {100}}

	got, err := scorer.RelativeError(pred, real)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 0.1, got[0], 1e-12)
}

func TestMeanDeviation_ShapeErrors(t *testing.T) {
	_, err := scorer.AbsoluteError(nil, nil)
	assert.Error(t, err, "empty input")

	_, err = scorer.AbsoluteError([][]float64{{1}}, [][]float64{{1}, {2}})
	assert.Error(t, err, "row count mismatch")

	_, err = scorer.RelativeError([][]float64{{1, 2}}, [][]float64{{1}})
	assert.Error(t, err, "ragged row")
}

func TestAverage(t *testing.T) {
	got := scorer.Average([][]float64{
		{1, 10},
		{3, 20},
	})
	require.Len(t, got, 2)
	assert.InDelta(t, 2.0, got[0], 1e-12)
	assert.InDelta(t, 15.0, got[1], 1e-12)

	assert.Nil(t, scorer.Average(nil))
}

func TestScalar(t *testing.T) {
	assert.InDelta(t, 2.0, scorer.Scalar([]float64{1, 2, 3}), 1e-12)
	assert.True(t, math.IsNaN(scorer.Scalar(nil)))
}
