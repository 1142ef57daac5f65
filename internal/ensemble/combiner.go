package ensemble

import (
	"math"

	"sibyl/internal/domain/signal"
	"sibyl/internal/features"
	"sibyl/pkg/logger"
)

const (
	baselineVersion = "meta_stub_v1"
	learnedVersion  = "meta_onnx"

	buyThreshold  = 0.55
	sellThreshold = 0.45
)

// Input bundles the four agent outputs the combiner fuses
type Input struct {
	Technical   signal.AgentResult
	Fundamental signal.AgentResult
	Sentiment   signal.AgentResult
	Forecast    signal.ForecastResult
}

// Model is the learned meta-classifier seam. nil means baseline only.
type Model interface {
	ProbUp(features []float64) (float64, error)
}

// Combiner fuses agent outputs into the final decision. With a learned
// model it classifies over the agent vector; otherwise it uses a fixed
// weighted blend. A model inference failure falls back to the blend for
// that decision instead of failing the analysis.
type Combiner struct {
	model Model
	log   *logger.Logger
}

func NewCombiner(model Model) *Combiner {
	return &Combiner{
		model: model,
		log:   logger.Get().With("component", "ensemble_combiner"),
	}
}

func (c *Combiner) Combine(in Input) signal.EnsembleDecision {
	var probUp, uncertainty float64
	learned := false

	if c.model != nil {
		p, err := c.model.ProbUp([]float64{
			in.Technical.Score, in.Technical.Confidence,
			in.Fundamental.Score, in.Fundamental.Confidence,
			in.Sentiment.Score, in.Sentiment.Confidence,
			in.Forecast.ExpReturn, in.Forecast.Confidence,
		})
		if err != nil {
			c.log.Warnw("Meta-model inference failed, using baseline blend",
				"symbol", in.Technical.Symbol, "error", err)
		} else {
			probUp = p
			uncertainty = binaryEntropy(p)
			learned = true
		}
	}
	if !learned {
		probUp, uncertainty = baseline(in)
	}

	sig := signal.Hold
	if probUp > buyThreshold {
		sig = signal.Buy
	} else if probUp < sellThreshold {
		sig = signal.Sell
	}

	size := 0.0
	if sig != signal.Hold {
		size = signal.Clamp((probUp-0.5)*2, 0, 1)
	}

	version := baselineVersion
	rationale := "Weighted blend baseline"
	if learned {
		version = learnedVersion
		rationale = "Meta-learner ensemble"
	}

	return signal.EnsembleDecision{
		Symbol:      in.Technical.Symbol,
		AsOf:        in.Technical.AsOf,
		HorizonDays: in.Forecast.HorizonDays,
		ProbUp:      probUp,
		Uncertainty: uncertainty,
		Signal:      sig,
		Size:        size,
		Rationale:   rationale,
		Versions: map[string]string{
			"technical":   in.Technical.AgentVersion,
			"fundamental": in.Fundamental.AgentVersion,
			"sentiment":   in.Sentiment.AgentVersion,
			"forecast":    in.Forecast.ModelVersion,
			"ensemble":    version,
		},
		InputsHash: features.Hash(map[string]float64{
			"t": in.Technical.Score, "tf": in.Technical.Confidence,
			"f": in.Fundamental.Score, "ff": in.Fundamental.Confidence,
			"s": in.Sentiment.Score, "sf": in.Sentiment.Confidence,
			"m": in.Forecast.ExpReturn, "mc": in.Forecast.Confidence,
		}),
	}
}

// baseline blends the agent scores with fixed weights. The forecast term
// doubles the confidence so a fully confident forecast carries the same
// influence as a strong agent score.
func baseline(in Input) (probUp, uncertainty float64) {
	x := 0.3*in.Technical.Score*in.Technical.Confidence +
		0.3*in.Fundamental.Score*in.Fundamental.Confidence +
		0.2*in.Sentiment.Score*in.Sentiment.Confidence +
		0.4*in.Forecast.ExpReturn*(2.0*in.Forecast.Confidence)

	probUp = sigmoid(5.0 * x)
	uncertainty = math.Max(0, 1-math.Abs(x))
	return probUp, uncertainty
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// binaryEntropy measures decision uncertainty in bits
func binaryEntropy(p float64) float64 {
	const eps = 1e-6
	return -(p*math.Log(p+eps) + (1-p)*math.Log(1-p+eps)) / math.Ln2
}
