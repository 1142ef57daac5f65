package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sibyl/internal/domain/signal"
	"sibyl/internal/features"
)

func TestSentimentAgent_PositiveAboveThreshold(t *testing.T) {
	agent := NewSentimentAgent()
	asOf := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	got := agent.Score("AAPL", features.SentimentFeatures{
		AvgSentiment:      0.25,
		WeightedSentiment: 0.3,
		NewsVolume:        12,
	}, asOf)

	assert.InDelta(t, 0.3, got.Score, 1e-9)
	assert.Equal(t, signal.Buy, got.Signal)
	assert.InDelta(t, 0.3, got.Confidence, 1e-9)
	assert.Equal(t, "avg_sent=0.250; volume=12", got.Rationale)
	assert.Equal(t, "sent_v1", got.AgentVersion)
}

func TestSentimentAgent_NegativeBelowThreshold(t *testing.T) {
	agent := NewSentimentAgent()
	asOf := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	got := agent.Score("AAPL", features.SentimentFeatures{WeightedSentiment: -0.2, NewsVolume: 3}, asOf)

	assert.Equal(t, signal.Sell, got.Signal)
}

func TestSentimentAgent_WithinBandHolds(t *testing.T) {
	agent := NewSentimentAgent()
	asOf := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	for _, score := range []float64{-0.1, -0.05, 0, 0.05, 0.1} {
		got := agent.Score("AAPL", features.SentimentFeatures{WeightedSentiment: score}, asOf)
		assert.Equal(t, signal.Hold, got.Signal, "score %v should hold", score)
	}
}

func TestSentimentAgent_NoNewsIsNeutral(t *testing.T) {
	agent := NewSentimentAgent()
	asOf := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	got := agent.Score("AAPL", features.SentimentFeatures{}, asOf)

	assert.Equal(t, 0.0, got.Score)
	assert.Equal(t, 0.0, got.Confidence)
	assert.Equal(t, signal.Hold, got.Signal)
	assert.Equal(t, 0.0, got.FeaturesUsed["news_volume"])
}

func TestSentimentAgent_ExtremeInputClamped(t *testing.T) {
	agent := NewSentimentAgent()
	asOf := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	got := agent.Score("AAPL", features.SentimentFeatures{WeightedSentiment: 4.2}, asOf)

	assert.Equal(t, 1.0, got.Score)
	assert.Equal(t, 1.0, got.Confidence)
}
