package signal

import "time"

// Signal is a discrete trading recommendation
type Signal string

const (
	Buy  Signal = "buy"
	Hold Signal = "hold"
	Sell Signal = "sell"
)

// Direction is the forecasted price direction over the horizon
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)

// AgentResult is the bounded output of one scoring agent.
// Score is always within [-1,1] and Confidence within [0,1] regardless of
// intermediate arithmetic.
type AgentResult struct {
	Symbol       string             `json:"symbol"`
	AsOf         time.Time          `json:"as_of"`
	Signal       Signal             `json:"signal"`
	Score        float64            `json:"score"`
	Confidence   float64            `json:"confidence"`
	Rationale    string             `json:"rationale,omitempty"`
	FeaturesUsed map[string]float64 `json:"features_used,omitempty"`
	AgentVersion string             `json:"agent_version"`
}

// ForecastResult is the quantile forecast for a symbol over a horizon.
// p10 <= p50 <= p90 holds by construction of the forecaster.
type ForecastResult struct {
	Symbol       string    `json:"symbol"`
	AsOf         time.Time `json:"as_of"`
	HorizonDays  int       `json:"horizon_days"`
	P10          float64   `json:"p10"`
	P50          float64   `json:"p50"`
	P90          float64   `json:"p90"`
	ExpReturn    float64   `json:"exp_return"`
	Direction    Direction `json:"direction"`
	Confidence   float64   `json:"confidence"`
	ModelVersion string    `json:"model_version"`
}

// EnsembleDecision is the terminal artifact of one analysis: a calibrated
// probability of upward movement, an uncertainty estimate, the discrete
// signal derived from them, and a position size fraction.
type EnsembleDecision struct {
	Symbol      string            `json:"symbol"`
	AsOf        time.Time         `json:"as_of"`
	HorizonDays int               `json:"horizon_days"`
	ProbUp      float64           `json:"prob_up"`
	Uncertainty float64           `json:"uncertainty"`
	Signal      Signal            `json:"signal"`
	Size        float64           `json:"size"`
	Rationale   string            `json:"rationale,omitempty"`
	Versions    map[string]string `json:"versions"`
	InputsHash  string            `json:"inputs_hash"`
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FromScore maps a bounded score to a discrete signal using symmetric
// thresholds around zero.
func FromScore(score, threshold float64) Signal {
	switch {
	case score > threshold:
		return Buy
	case score < -threshold:
		return Sell
	default:
		return Hold
	}
}
