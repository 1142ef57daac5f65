package features

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"sibyl/internal/domain/market"
)

// Neutral defaults substituted when an input is unknown, so the model
// vector always carries the same keys.
const (
	defaultRSI  = 50.0
	defaultMACD = 0.0
	defaultPE   = 20.0
	defaultROE  = 0.1
	defaultSent = 0.0
)

// BuildModelVector assembles the flat feature map consumed by the
// forecaster. Missing inputs fall back to their neutral defaults.
func BuildModelVector(tech *TechnicalFeatures, fund market.FundamentalsSnapshot, sent SentimentFeatures) map[string]float64 {
	vector := map[string]float64{
		"rsi14": defaultRSI,
		"macd":  defaultMACD,
		"pe":    defaultPE,
		"roe":   defaultROE,
		"sent":  defaultSent,
	}

	if tech != nil {
		if tech.RSI14 != nil {
			vector["rsi14"] = *tech.RSI14
		}
		if tech.MACD != nil {
			vector["macd"] = *tech.MACD
		}
	}
	if fund.PE != nil {
		vector["pe"] = *fund.PE
	}
	if fund.ROE != nil {
		vector["roe"] = *fund.ROE
	}
	vector["sent"] = sent.WeightedSentiment

	return vector
}

// Hash produces a deterministic digest of a feature map. Equal maps hash
// equal regardless of insertion order.
func Hash(values map[string]float64) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.10f", k, values[k]))
	}

	digest := sha256.Sum256([]byte(strings.Join(parts, "&")))
	return hex.EncodeToString(digest[:])
}
