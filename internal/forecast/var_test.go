package forecast_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/var-trade-bot/internal/forecast"
)

// sinusoidWindow samples two sinusoids of different frequencies. Each one
// satisfies an exact order-2 linear recurrence, so a VAR(2) fit on the pair
// must reproduce the continuation to numerical precision.
func sinusoidWindow(n int) [][]float64 {
	window := make([][]float64, n)
	for t := 0; t < n; t++ {
		window[t] = []float64{
			10 + math.Sin(0.5*float64(t)),
			20 + math.Sin(0.3*float64(t)+1),
		}
	}
	return window
}

func TestVAR_FitAndForecast_RecoversSinusoids(t *testing.T) {
	const (
		trainLen = 200
		lag      = 2
		horizon  = 5
	)
	full := sinusoidWindow(trainLen + horizon)
	train := full[:trainLen]

	v := forecast.NewVAR()
	model, err := v.Fit(train, lag)
	require.NoError(t, err)
	assert.Equal(t, 2, model.Dim)
	assert.Equal(t, lag, model.Lag)
	require.Len(t, model.Coef, lag)

	predicted, err := v.Forecast(model, train, horizon)
	require.NoError(t, err)
	require.Len(t, predicted, horizon)
	for step := 0; step < horizon; step++ {
		want := full[trainLen+step]
		for c := range want {
			assert.InDelta(t, want[c], predicted[step][c], 1e-6,
				"step %d component %d", step+1, c)
		}
	}
}

func TestVAR_Fit_InsufficientData(t *testing.T) {
	v := forecast.NewVAR()

	// 10 rows at lag 4 leaves 6 equations for 1+4*2=9 coefficients.
	_, err := v.Fit(sinusoidWindow(10), 4)
	assert.ErrorIs(t, err, forecast.ErrInsufficientData)

	_, err = v.Fit(nil, 1)
	assert.ErrorIs(t, err, forecast.ErrInsufficientData)
}

func TestVAR_Fit_BadLag(t *testing.T) {
	v := forecast.NewVAR()
	_, err := v.Fit(sinusoidWindow(50), 0)
	assert.ErrorIs(t, err, forecast.ErrFitFailed)
}

func TestVAR_Forecast_Errors(t *testing.T) {
	v := forecast.NewVAR()
	model, err := v.Fit(sinusoidWindow(100), 3)
	require.NoError(t, err)

	_, err = v.Forecast(nil, sinusoidWindow(10), 1)
	assert.ErrorIs(t, err, forecast.ErrForecastFailed)

	_, err = v.Forecast(model, sinusoidWindow(10), 0)
	assert.ErrorIs(t, err, forecast.ErrForecastFailed)

	_, err = v.Forecast(model, sinusoidWindow(2), 1)
	assert.ErrorIs(t, err, forecast.ErrForecastFailed, "window shorter than lag order")
}

func TestModelArtifact_Roundtrip(t *testing.T) {
	v := forecast.NewVAR()
	model, err := v.Fit(sinusoidWindow(120), 2)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, forecast.SaveModel(model, path))

	loaded, err := forecast.LoadModel(path)
	require.NoError(t, err)
	if diff := cmp.Diff(model, loaded, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("artifact roundtrip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadModel_MissingFile(t *testing.T) {
	_, err := forecast.LoadModel(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
