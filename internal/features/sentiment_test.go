package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sibyl/internal/domain/market"
)

func newsItem(symbol string, publishedAt time.Time, score *float64) market.NewsItem {
	return market.NewsItem{
		Symbol:         symbol,
		PublishedAt:    publishedAt,
		Title:          "headline",
		SentimentScore: score,
	}
}

func fp(v float64) *float64 { return &v }

func TestComputeSentiment_NoNews(t *testing.T) {
	got := ComputeSentiment(nil, time.Now())

	assert.Equal(t, 0.0, got.AvgSentiment)
	assert.Equal(t, 0.0, got.WeightedSentiment)
	assert.Equal(t, 0, got.NewsVolume)
	assert.Equal(t, SentimentVersion, got.Version)
}

func TestComputeSentiment_FreshNewsOutweighsStale(t *testing.T) {
	asOf := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	// Positive article today, equally strong negative article six days ago.
	// The decay half-life is three days, so the fresh one dominates.
	items := []market.NewsItem{
		newsItem("AAPL", asOf, fp(0.8)),
		newsItem("AAPL", asOf.AddDate(0, 0, -6), fp(-0.8)),
	}

	got := ComputeSentiment(items, asOf)
	assert.Greater(t, got.WeightedSentiment, 0.0)
	assert.InDelta(t, 0.0, got.AvgSentiment, 1e-9, "plain average ignores age")
	assert.Equal(t, 2, got.NewsVolume)
}

func TestComputeSentiment_HalfLifeDecay(t *testing.T) {
	asOf := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	// One article exactly one half-life old: weight 0.5, but a single
	// item means the weighted average equals its score
	items := []market.NewsItem{
		newsItem("AAPL", asOf.AddDate(0, 0, -3), fp(0.6)),
	}

	got := ComputeSentiment(items, asOf)
	assert.InDelta(t, 0.6, got.WeightedSentiment, 1e-9)
	assert.InDelta(t, 0.6, got.AvgSentiment, 1e-9)
}

func TestComputeSentiment_UnscoredItemsDilute(t *testing.T) {
	asOf := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	items := []market.NewsItem{
		newsItem("AAPL", asOf, fp(1.0)),
		newsItem("AAPL", asOf, nil),
	}

	got := ComputeSentiment(items, asOf)
	assert.InDelta(t, 0.5, got.AvgSentiment, 1e-9)
	assert.InDelta(t, 0.5, got.WeightedSentiment, 1e-9)
	assert.Equal(t, 2, got.NewsVolume)
}

func TestComputeSentiment_FutureTimestampClampedToFresh(t *testing.T) {
	asOf := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	items := []market.NewsItem{
		newsItem("AAPL", asOf.Add(2*time.Hour), fp(0.4)),
	}

	got := ComputeSentiment(items, asOf)
	assert.InDelta(t, 0.4, got.WeightedSentiment, 1e-9)
}
