package agents

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"sibyl/internal/domain/signal"
	"sibyl/internal/features"
)

const (
	localForecastVersion = "pm_stub_v1"

	// directionDeadZone keeps near-zero expected returns flat instead of
	// flapping between up and down
	directionDeadZone = 0.002
)

// Forecaster produces a quantile return forecast from a model vector
type Forecaster interface {
	Predict(ctx context.Context, symbol string, asOf time.Time, vector map[string]float64, horizonDays int) (signal.ForecastResult, error)
}

// LocalForecaster is a deterministic stub: the forecast is a pure
// function of the feature vector, so identical inputs always yield the
// identical forecast. It stands in until a trained quantile model is
// deployed behind the remote forecaster.
type LocalForecaster struct{}

func NewLocalForecaster() *LocalForecaster {
	return &LocalForecaster{}
}

func (f *LocalForecaster) Predict(_ context.Context, symbol string, asOf time.Time, vector map[string]float64, horizonDays int) (signal.ForecastResult, error) {
	rng := rand.New(rand.NewSource(seedFromVector(vector)))

	p50 := -0.02 + rng.Float64()*0.04
	spread := 0.01 + rng.Float64()*0.04
	p10 := p50 - spread
	p90 := p50 + spread

	conf := 1 - (p90 - p10)
	if conf < 0.1 {
		conf = 0.1
	}
	if conf > 1 {
		conf = 1
	}

	return signal.ForecastResult{
		Symbol:       symbol,
		AsOf:         asOf,
		HorizonDays:  horizonDays,
		P10:          p10,
		P50:          p50,
		P90:          p90,
		ExpReturn:    p50,
		Direction:    DirectionFromReturn(p50),
		Confidence:   conf,
		ModelVersion: localForecastVersion,
	}, nil
}

// seedFromVector folds the feature hash into a stable seed
func seedFromVector(vector map[string]float64) int64 {
	digest := features.Hash(vector)
	seed, err := strconv.ParseUint(digest[:16], 16, 64)
	if err != nil {
		return 0
	}
	return int64(seed)
}

// DirectionFromReturn maps an expected return to a direction with a
// symmetric dead zone around zero.
func DirectionFromReturn(expReturn float64) signal.Direction {
	switch {
	case expReturn > directionDeadZone:
		return signal.Up
	case expReturn < -directionDeadZone:
		return signal.Down
	default:
		return signal.Flat
	}
}
