package nlp

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"sibyl/pkg/errors"
	"sibyl/pkg/logger"
)

// RemoteScorer calls an external sentiment service (a FinBERT-style
// model behind HTTP) to score texts in batch.
type RemoteScorer struct {
	client *resty.Client
	url    string
	log    *logger.Logger
}

func NewRemoteScorer(serviceURL string, timeout time.Duration) *RemoteScorer {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &RemoteScorer{
		client: client,
		url:    serviceURL,
		log:    logger.Get().With("component", "remote_scorer"),
	}
}

type remoteScoreRequest struct {
	Texts []string `json:"texts"`
}

type remoteScoreResponse struct {
	Results []struct {
		Score      *float64 `json:"score"`
		Confidence *float64 `json:"confidence"`
	} `json:"results"`
}

func (s *RemoteScorer) ScoreBatch(ctx context.Context, texts []string) ([]*Sentiment, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var parsed remoteScoreResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(remoteScoreRequest{Texts: texts}).
		SetResult(&parsed).
		Post(s.url)
	if err != nil {
		return nil, errors.Wrap(err, "sentiment service request")
	}
	if resp.IsError() {
		return nil, errors.Wrapf(errors.ErrFetchFailed, "sentiment service responded %d", resp.StatusCode())
	}

	out := make([]*Sentiment, len(texts))
	for i := range texts {
		if i >= len(parsed.Results) {
			break
		}
		r := parsed.Results[i]
		if r.Score == nil || r.Confidence == nil {
			continue
		}
		out[i] = &Sentiment{Score: *r.Score, Confidence: *r.Confidence}
	}
	if len(parsed.Results) != len(texts) {
		s.log.Warnw("Sentiment service returned mismatched batch size",
			"sent", len(texts), "received", len(parsed.Results))
	}
	return out, nil
}

// Health checks that the sentiment service is reachable
func (s *RemoteScorer) Health(ctx context.Context) error {
	resp, err := s.client.R().SetContext(ctx).Get(s.url + "/health")
	if err != nil {
		return errors.Wrap(err, "sentiment service health")
	}
	if resp.IsError() {
		return fmt.Errorf("sentiment service unhealthy: %d", resp.StatusCode())
	}
	return nil
}
