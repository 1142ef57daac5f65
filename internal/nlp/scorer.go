package nlp

import "context"

// Sentiment is one scored text: score in [-1, 1], confidence in [0, 1]
type Sentiment struct {
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// Scorer assigns sentiment to a batch of texts. The returned slice has
// the same length as texts; a nil entry means that item could not be
// scored and should be treated as unscored downstream.
type Scorer interface {
	ScoreBatch(ctx context.Context, texts []string) ([]*Sentiment, error)
}

// DisabledScorer leaves every item unscored. Used when no sentiment
// backend is configured.
type DisabledScorer struct{}

func NewDisabledScorer() *DisabledScorer {
	return &DisabledScorer{}
}

func (s *DisabledScorer) ScoreBatch(_ context.Context, texts []string) ([]*Sentiment, error) {
	return make([]*Sentiment, len(texts)), nil
}
