package nlp

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"sibyl/pkg/errors"
	"sibyl/pkg/logger"
)

const scoringSystemPrompt = `You are a financial news sentiment rater.
For each numbered headline, output its sentiment toward the mentioned company.
Respond with a JSON array only, one object per headline, in the same order:
[{"score": <float -1..1>, "confidence": <float 0..1>}, ...]
score: -1 very negative, 0 neutral, 1 very positive. No prose, no markdown.`

// OpenAIScorer scores headlines with a chat model. Cheaper models work
// fine here since the task is short-text classification.
type OpenAIScorer struct {
	client openai.Client
	model  openai.ChatModel
	log    *logger.Logger
}

func NewOpenAIScorer(apiKey, model string) *OpenAIScorer {
	return &OpenAIScorer{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModel(model),
		log:    logger.Get().With("component", "openai_scorer", "model", model),
	}
}

func (s *OpenAIScorer) ScoreBatch(ctx context.Context, texts []string) ([]*Sentiment, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for i, text := range texts {
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString(". ")
		sb.WriteString(strings.TrimSpace(text))
		if i < len(texts)-1 {
			sb.WriteString("\n")
		}
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(scoringSystemPrompt),
			openai.UserMessage(sb.String()),
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "openai chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.Wrap(errors.ErrProviderData, "openai returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var parsed []Sentiment
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, errors.Wrapf(errors.ErrProviderData, "openai sentiment payload: %v", err)
	}

	out := make([]*Sentiment, len(texts))
	for i := range texts {
		if i >= len(parsed) {
			break
		}
		item := parsed[i]
		out[i] = &item
	}
	if len(parsed) != len(texts) {
		s.log.Warnw("Model returned mismatched batch size",
			"sent", len(texts), "received", len(parsed))
	}
	return out, nil
}
