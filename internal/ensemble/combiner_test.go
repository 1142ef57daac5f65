package ensemble

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sibyl/internal/domain/signal"
	"sibyl/pkg/errors"
)

func sampleInput() Input {
	asOf := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	return Input{
		Technical: signal.AgentResult{
			Symbol: "AAPL", AsOf: asOf,
			Score: 0.6, Confidence: 0.6, AgentVersion: "tech_v1",
		},
		Fundamental: signal.AgentResult{
			Symbol: "AAPL", AsOf: asOf,
			Score: 0.3, Confidence: 0.3, AgentVersion: "fund_v1",
		},
		Sentiment: signal.AgentResult{
			Symbol: "AAPL", AsOf: asOf,
			Score: 0.2, Confidence: 0.2, AgentVersion: "sent_v1",
		},
		Forecast: signal.ForecastResult{
			Symbol: "AAPL", AsOf: asOf, HorizonDays: 5,
			P10: -0.01, P50: 0.01, P90: 0.03,
			ExpReturn: 0.01, Direction: signal.Up,
			Confidence: 0.9, ModelVersion: "pm_stub_v1",
		},
	}
}

func TestCombiner_BaselineBlend(t *testing.T) {
	combiner := NewCombiner(nil)
	in := sampleInput()

	got := combiner.Combine(in)

	// Recompute the blend by hand
	x := 0.3*0.6*0.6 + 0.3*0.3*0.3 + 0.2*0.2*0.2 + 0.4*0.01*(2.0*0.9)
	wantProb := 1.0 / (1.0 + math.Exp(-5.0*x))

	assert.InDelta(t, wantProb, got.ProbUp, 1e-9)
	assert.InDelta(t, 1.0-math.Abs(x), got.Uncertainty, 1e-9)
	assert.Equal(t, "meta_stub_v1", got.Versions["ensemble"])
	assert.Equal(t, "Weighted blend baseline", got.Rationale)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, 5, got.HorizonDays)
	assert.NotEmpty(t, got.InputsHash)
}

func TestCombiner_BuyAboveThreshold(t *testing.T) {
	combiner := NewCombiner(nil)
	in := sampleInput()
	in.Technical.Score, in.Technical.Confidence = 1, 1
	in.Fundamental.Score, in.Fundamental.Confidence = 1, 1

	got := combiner.Combine(in)

	assert.Greater(t, got.ProbUp, 0.55)
	assert.Equal(t, signal.Buy, got.Signal)
	assert.InDelta(t, (got.ProbUp-0.5)*2, got.Size, 1e-9)
	assert.LessOrEqual(t, got.Size, 1.0)
}

func TestCombiner_HoldHasZeroSize(t *testing.T) {
	combiner := NewCombiner(nil)
	in := sampleInput()
	in.Technical.Score, in.Technical.Confidence = 0, 0
	in.Fundamental.Score, in.Fundamental.Confidence = 0, 0
	in.Sentiment.Score, in.Sentiment.Confidence = 0, 0
	in.Forecast.ExpReturn, in.Forecast.Confidence = 0, 0.5

	got := combiner.Combine(in)

	assert.InDelta(t, 0.5, got.ProbUp, 1e-9)
	assert.Equal(t, signal.Hold, got.Signal)
	assert.Equal(t, 0.0, got.Size)
}

func TestCombiner_SellBelowThreshold(t *testing.T) {
	combiner := NewCombiner(nil)
	in := sampleInput()
	in.Technical.Score, in.Technical.Confidence = -1, 1
	in.Fundamental.Score, in.Fundamental.Confidence = -1, 1
	in.Sentiment.Score, in.Sentiment.Confidence = -1, 1
	in.Forecast.ExpReturn = -0.02

	got := combiner.Combine(in)

	assert.Less(t, got.ProbUp, 0.45)
	assert.Equal(t, signal.Sell, got.Signal)
	assert.Equal(t, 0.0, got.Size, "size is long-only")
}

func TestCombiner_OutputsBounded(t *testing.T) {
	combiner := NewCombiner(nil)
	in := sampleInput()
	in.Technical.Score, in.Technical.Confidence = 1, 1
	in.Fundamental.Score, in.Fundamental.Confidence = 1, 1
	in.Sentiment.Score, in.Sentiment.Confidence = 1, 1
	in.Forecast.ExpReturn, in.Forecast.Confidence = 0.05, 1

	got := combiner.Combine(in)

	assert.GreaterOrEqual(t, got.ProbUp, 0.0)
	assert.LessOrEqual(t, got.ProbUp, 1.0)
	assert.GreaterOrEqual(t, got.Uncertainty, 0.0)
	assert.LessOrEqual(t, got.Uncertainty, 1.0)
	assert.GreaterOrEqual(t, got.Size, 0.0)
	assert.LessOrEqual(t, got.Size, 1.0)
}

func TestCombiner_InputsHashStable(t *testing.T) {
	combiner := NewCombiner(nil)
	in := sampleInput()

	a := combiner.Combine(in)
	b := combiner.Combine(in)
	assert.Equal(t, a.InputsHash, b.InputsHash)

	in.Technical.Score = 0.61
	c := combiner.Combine(in)
	assert.NotEqual(t, a.InputsHash, c.InputsHash)
}

type fixedModel struct {
	prob float64
	err  error
}

func (m *fixedModel) ProbUp(_ []float64) (float64, error) {
	return m.prob, m.err
}

func TestCombiner_LearnedPath(t *testing.T) {
	combiner := NewCombiner(&fixedModel{prob: 0.8})

	got := combiner.Combine(sampleInput())

	assert.Equal(t, 0.8, got.ProbUp)
	assert.Equal(t, signal.Buy, got.Signal)
	assert.Equal(t, "meta_onnx", got.Versions["ensemble"])
	assert.Equal(t, "Meta-learner ensemble", got.Rationale)

	// Entropy of 0.8 in bits
	p := 0.8
	eps := 1e-6
	wantUncertainty := -(p*math.Log(p+eps) + (1-p)*math.Log(1-p+eps)) / math.Ln2
	assert.InDelta(t, wantUncertainty, got.Uncertainty, 1e-9)
}

func TestCombiner_ModelFailureFallsBackToBaseline(t *testing.T) {
	combiner := NewCombiner(&fixedModel{err: errors.New("inference failed")})
	in := sampleInput()

	got := combiner.Combine(in)
	want := NewCombiner(nil).Combine(in)

	assert.Equal(t, want.ProbUp, got.ProbUp)
	assert.Equal(t, "meta_stub_v1", got.Versions["ensemble"])
}
