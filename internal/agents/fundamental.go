package agents

import (
	"strings"
	"time"

	"sibyl/internal/domain/market"
	"sibyl/internal/domain/signal"
	"sibyl/internal/features"
)

const (
	fundamentalVersion   = "fund_v1"
	fundamentalThreshold = 0.15
)

// FundamentalAgent scores valuation, profitability and leverage rules.
// Rules over unknown fields are skipped, so an empty snapshot scores
// zero with zero confidence.
type FundamentalAgent struct{}

func NewFundamentalAgent() *FundamentalAgent {
	return &FundamentalAgent{}
}

func (a *FundamentalAgent) Score(snapshot market.FundamentalsSnapshot, asOf time.Time) signal.AgentResult {
	var score float64
	var notes []string

	if snapshot.PE != nil {
		if *snapshot.PE < 18 {
			score += 0.2
			notes = append(notes, "PE reasonable")
		} else if *snapshot.PE > 35 {
			score -= 0.2
			notes = append(notes, "PE rich")
		}
	}

	if snapshot.ROE != nil {
		if *snapshot.ROE > 0.15 {
			score += 0.3
			notes = append(notes, "High ROE")
		} else if *snapshot.ROE < 0.05 {
			score -= 0.2
			notes = append(notes, "Low ROE")
		}
	}

	if snapshot.DebtToEquity != nil {
		if *snapshot.DebtToEquity < 0.8 {
			score += 0.1
			notes = append(notes, "Manageable leverage")
		} else if *snapshot.DebtToEquity > 2.0 {
			score -= 0.2
			notes = append(notes, "High leverage")
		}
	}

	score = signal.Clamp(score, -1, 1)

	rationale := strings.Join(notes, "; ")
	if rationale == "" {
		rationale = "No fundamental rules fired"
	}

	return signal.AgentResult{
		Symbol:       snapshot.Symbol,
		AsOf:         asOf,
		Signal:       signal.FromScore(score, fundamentalThreshold),
		Score:        score,
		Confidence:   confidenceFrom(score),
		Rationale:    rationale,
		FeaturesUsed: features.FundamentalMap(snapshot),
		AgentVersion: fundamentalVersion,
	}
}
