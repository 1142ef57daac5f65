package agents

import (
	"strings"

	"sibyl/internal/domain/signal"
	"sibyl/internal/features"
)

const (
	technicalVersion   = "tech_v1"
	technicalThreshold = 0.15
)

// TechnicalAgent scores momentum and trend rules over the computed
// indicators. Rules are additive and the final score is clamped.
type TechnicalAgent struct{}

func NewTechnicalAgent() *TechnicalAgent {
	return &TechnicalAgent{}
}

func (a *TechnicalAgent) Score(f *features.TechnicalFeatures) signal.AgentResult {
	var score float64
	var notes []string

	used := map[string]float64{
		"rsi14":       50,
		"macd":        0,
		"macd_signal": 0,
	}

	if f.RSI14 != nil {
		used["rsi14"] = *f.RSI14
		if *f.RSI14 < 30 {
			score += 0.3
			notes = append(notes, "RSI oversold")
		} else if *f.RSI14 > 70 {
			score -= 0.3
			notes = append(notes, "RSI overbought")
		}
	}

	if f.MACD != nil && f.MACDSignal != nil {
		used["macd"] = *f.MACD
		used["macd_signal"] = *f.MACDSignal
		if *f.MACD > *f.MACDSignal {
			score += 0.3
			notes = append(notes, "MACD bullish")
		} else {
			score -= 0.1
			notes = append(notes, "MACD bearish")
		}
	}

	score = signal.Clamp(score, -1, 1)

	rationale := strings.Join(notes, "; ")
	if rationale == "" {
		rationale = "No indicator rules fired"
	}

	return signal.AgentResult{
		Symbol:       f.Symbol,
		AsOf:         f.AsOf,
		Signal:       signal.FromScore(score, technicalThreshold),
		Score:        score,
		Confidence:   confidenceFrom(score),
		Rationale:    rationale,
		FeaturesUsed: used,
		AgentVersion: technicalVersion,
	}
}

// confidenceFrom maps score magnitude to [0,1]
func confidenceFrom(score float64) float64 {
	c := score
	if c < 0 {
		c = -c
	}
	if c > 1 {
		c = 1
	}
	return c
}
