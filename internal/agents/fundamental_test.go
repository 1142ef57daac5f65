package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sibyl/internal/domain/market"
	"sibyl/internal/domain/signal"
)

func TestFundamentalAgent_EmptySnapshotIsNeutral(t *testing.T) {
	agent := NewFundamentalAgent()
	asOf := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	got := agent.Score(market.EmptySnapshot("AAPL", asOf), asOf)

	assert.Equal(t, 0.0, got.Score)
	assert.Equal(t, 0.0, got.Confidence)
	assert.Equal(t, signal.Hold, got.Signal)
	assert.Empty(t, got.FeaturesUsed)
	assert.Equal(t, "fund_v1", got.AgentVersion)
}

func TestFundamentalAgent_StrongFundamentals(t *testing.T) {
	agent := NewFundamentalAgent()
	asOf := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	snapshot := market.FundamentalsSnapshot{
		Symbol:       "AAPL",
		AsOf:         asOf,
		PE:           fp(15.0),
		ROE:          fp(0.25),
		DebtToEquity: fp(0.5),
	}

	got := agent.Score(snapshot, asOf)

	// 0.2 (cheap PE) + 0.3 (high ROE) + 0.1 (low leverage)
	assert.InDelta(t, 0.6, got.Score, 1e-9)
	assert.Equal(t, signal.Buy, got.Signal)
	assert.Contains(t, got.Rationale, "PE reasonable")
	assert.Contains(t, got.Rationale, "High ROE")
	assert.Contains(t, got.Rationale, "Manageable leverage")
}

func TestFundamentalAgent_WeakFundamentals(t *testing.T) {
	agent := NewFundamentalAgent()
	asOf := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	snapshot := market.FundamentalsSnapshot{
		Symbol:       "XYZ",
		AsOf:         asOf,
		PE:           fp(50.0),
		ROE:          fp(0.01),
		DebtToEquity: fp(3.0),
	}

	got := agent.Score(snapshot, asOf)

	// -0.2 (rich PE) - 0.2 (low ROE) - 0.2 (high leverage)
	assert.InDelta(t, -0.6, got.Score, 1e-9)
	assert.Equal(t, signal.Sell, got.Signal)
}

func TestFundamentalAgent_PartialSnapshotSkipsMissingRules(t *testing.T) {
	agent := NewFundamentalAgent()
	asOf := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	snapshot := market.FundamentalsSnapshot{
		Symbol: "AAPL",
		AsOf:   asOf,
		ROE:    fp(0.2),
	}

	got := agent.Score(snapshot, asOf)

	assert.InDelta(t, 0.3, got.Score, 1e-9)
	assert.Equal(t, signal.Buy, got.Signal)
	assert.NotContains(t, got.Rationale, "PE")
	assert.NotContains(t, got.Rationale, "leverage")
}

func TestFundamentalAgent_MidRangeValuesFireNothing(t *testing.T) {
	agent := NewFundamentalAgent()
	asOf := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	snapshot := market.FundamentalsSnapshot{
		Symbol:       "AAPL",
		AsOf:         asOf,
		PE:           fp(25.0),
		ROE:          fp(0.10),
		DebtToEquity: fp(1.2),
	}

	got := agent.Score(snapshot, asOf)

	assert.Equal(t, 0.0, got.Score)
	assert.Equal(t, signal.Hold, got.Signal)
	assert.Equal(t, "No fundamental rules fired", got.Rationale)
}
