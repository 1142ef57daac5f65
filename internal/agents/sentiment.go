package agents

import (
	"fmt"
	"time"

	"sibyl/internal/domain/signal"
	"sibyl/internal/features"
)

const (
	sentimentVersion   = "sent_v1"
	sentimentThreshold = 0.1
)

// SentimentAgent turns aggregated news sentiment into a bounded score.
// With no news it is neutral with zero confidence.
type SentimentAgent struct{}

func NewSentimentAgent() *SentimentAgent {
	return &SentimentAgent{}
}

func (a *SentimentAgent) Score(symbol string, f features.SentimentFeatures, asOf time.Time) signal.AgentResult {
	score := signal.Clamp(f.WeightedSentiment, -1, 1)

	return signal.AgentResult{
		Symbol:     symbol,
		AsOf:       asOf,
		Signal:     signal.FromScore(score, sentimentThreshold),
		Score:      score,
		Confidence: confidenceFrom(score),
		Rationale:  fmt.Sprintf("avg_sent=%.3f; volume=%d", f.AvgSentiment, f.NewsVolume),
		FeaturesUsed: map[string]float64{
			"avg_sent":      f.AvgSentiment,
			"weighted_sent": f.WeightedSentiment,
			"news_volume":   float64(f.NewsVolume),
		},
		AgentVersion: sentimentVersion,
	}
}
