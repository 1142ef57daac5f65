package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sibyl/internal/domain/signal"
	"sibyl/internal/features"
)

func fp(v float64) *float64 { return &v }

func techFeatures(rsi, macd, macdSignal *float64) *features.TechnicalFeatures {
	return &features.TechnicalFeatures{
		Symbol:     "AAPL",
		AsOf:       time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
		Close:      190.0,
		RSI14:      rsi,
		MACD:       macd,
		MACDSignal: macdSignal,
	}
}

func TestTechnicalAgent_OversoldWithBullishMACD(t *testing.T) {
	agent := NewTechnicalAgent()

	got := agent.Score(techFeatures(fp(25), fp(1.0), fp(0.5)))

	assert.InDelta(t, 0.6, got.Score, 1e-9)
	assert.Equal(t, signal.Buy, got.Signal)
	assert.InDelta(t, 0.6, got.Confidence, 1e-9)
	assert.Contains(t, got.Rationale, "RSI oversold")
	assert.Contains(t, got.Rationale, "MACD bullish")
	assert.Equal(t, "tech_v1", got.AgentVersion)
}

func TestTechnicalAgent_OverboughtWithBearishMACD(t *testing.T) {
	agent := NewTechnicalAgent()

	got := agent.Score(techFeatures(fp(80), fp(-0.5), fp(0.2)))

	assert.InDelta(t, -0.4, got.Score, 1e-9)
	assert.Equal(t, signal.Sell, got.Signal)
	assert.Contains(t, got.Rationale, "RSI overbought")
	assert.Contains(t, got.Rationale, "MACD bearish")
}

func TestTechnicalAgent_NeutralWithoutIndicators(t *testing.T) {
	agent := NewTechnicalAgent()

	got := agent.Score(techFeatures(nil, nil, nil))

	assert.Equal(t, 0.0, got.Score)
	assert.Equal(t, 0.0, got.Confidence)
	assert.Equal(t, signal.Hold, got.Signal)
	assert.Equal(t, "No indicator rules fired", got.Rationale)

	// Display defaults when indicators are unknown
	assert.Equal(t, 50.0, got.FeaturesUsed["rsi14"])
	assert.Equal(t, 0.0, got.FeaturesUsed["macd"])
}

func TestTechnicalAgent_MidRangeRSIOnlyMACDFires(t *testing.T) {
	agent := NewTechnicalAgent()

	got := agent.Score(techFeatures(fp(55), fp(0.1), fp(0.3)))

	assert.InDelta(t, -0.1, got.Score, 1e-9)
	assert.Equal(t, signal.Hold, got.Signal, "score within hold band")
}

func TestTechnicalAgent_ScoreStaysBounded(t *testing.T) {
	agent := NewTechnicalAgent()

	got := agent.Score(techFeatures(fp(5), fp(10), fp(-10)))

	assert.GreaterOrEqual(t, got.Score, -1.0)
	assert.LessOrEqual(t, got.Score, 1.0)
	assert.GreaterOrEqual(t, got.Confidence, 0.0)
	assert.LessOrEqual(t, got.Confidence, 1.0)
}
