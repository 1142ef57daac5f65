package features

import (
	"math"
	"time"

	"sibyl/internal/domain/market"
)

// halfLifeDays controls the exponential decay of news weight: an
// article loses half its influence every three days.
const halfLifeDays = 3.0

// SentimentVersion tags the sentiment feature schema
const SentimentVersion = "sent_v1"

// SentimentFeatures aggregates scored news into the inputs the
// sentiment agent consumes. All zeros when there is no news.
type SentimentFeatures struct {
	AvgSentiment      float64 `json:"avg_sent"`
	WeightedSentiment float64 `json:"weighted_sent"`
	NewsVolume        int     `json:"news_volume"`
	Version           string  `json:"feature_version"`
}

// ComputeSentiment aggregates news published at or before asOf. Items
// without a sentiment score contribute zero score but still count toward
// volume and the weight denominators. When the total decay weight is
// zero both averages are zero.
func ComputeSentiment(items []market.NewsItem, asOf time.Time) SentimentFeatures {
	if len(items) == 0 {
		return SentimentFeatures{Version: SentimentVersion}
	}

	var sum, weightedSum, totalWeight float64
	for _, item := range items {
		score := 0.0
		if item.SentimentScore != nil {
			score = *item.SentimentScore
		}

		ageDays := asOf.Sub(item.PublishedAt).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		w := math.Pow(0.5, ageDays/halfLifeDays)

		sum += score
		weightedSum += score * w
		totalWeight += w
	}

	out := SentimentFeatures{NewsVolume: len(items), Version: SentimentVersion}
	if totalWeight > 0 {
		out.AvgSentiment = sum / float64(len(items))
		out.WeightedSentiment = weightedSum / totalWeight
	}
	return out
}
