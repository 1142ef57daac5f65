package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"sibyl/internal/agents"
	"sibyl/internal/cache"
	"sibyl/internal/domain/market"
	"sibyl/internal/domain/signal"
	"sibyl/internal/ensemble"
	"sibyl/internal/features"
	"sibyl/internal/metrics"
	"sibyl/pkg/errors"
	"sibyl/pkg/logger"
)

const (
	priceWindowDays = 400
	newsWindowDays  = 7

	minHorizonDays = 1
	maxHorizonDays = 30
)

// PriceProvider returns daily candles within a window, ascending
type PriceProvider interface {
	FetchSeries(ctx context.Context, symbol string, start, end time.Time) ([]market.Candle, error)
}

// FundamentalsProvider returns the merged fundamentals picture
type FundamentalsProvider interface {
	FetchSnapshot(ctx context.Context, symbol string, asOf time.Time) (market.FundamentalsSnapshot, error)
}

// NewsProvider returns scored articles within a window
type NewsProvider interface {
	FetchNews(ctx context.Context, symbol string, start, end time.Time) ([]market.NewsItem, error)
}

// Result is the full analysis payload: the decision plus the individual
// agent outputs that produced it.
type Result struct {
	Decision signal.EnsembleDecision `json:"decision"`
	Agents   AgentOutputs            `json:"agents"`
}

// AgentOutputs exposes each agent's contribution for transparency
type AgentOutputs struct {
	Technical   signal.AgentResult    `json:"technical"`
	Fundamental signal.AgentResult    `json:"fundamental"`
	Sentiment   signal.AgentResult    `json:"sentiment"`
	Forecast    signal.ForecastResult `json:"forecast"`
}

// Service orchestrates one analysis: concurrent data collection, feature
// engineering, agent scoring, forecasting and the ensemble decision.
// Price data is mandatory; fundamentals and news degrade to neutral
// inputs when their providers fail.
type Service struct {
	prices       PriceProvider
	fundamentals FundamentalsProvider
	news         NewsProvider

	technical   *agents.TechnicalAgent
	fundamental *agents.FundamentalAgent
	sentiment   *agents.SentimentAgent
	forecaster  agents.Forecaster
	combiner    *ensemble.Combiner

	results   cache.Store
	resultTTL time.Duration

	log *logger.Logger
}

func NewService(
	prices PriceProvider,
	fundamentals FundamentalsProvider,
	news NewsProvider,
	forecaster agents.Forecaster,
	combiner *ensemble.Combiner,
	results cache.Store,
	resultTTL time.Duration,
) *Service {
	return &Service{
		prices:       prices,
		fundamentals: fundamentals,
		news:         news,
		technical:    agents.NewTechnicalAgent(),
		fundamental:  agents.NewFundamentalAgent(),
		sentiment:    agents.NewSentimentAgent(),
		forecaster:   forecaster,
		combiner:     combiner,
		results:      results,
		resultTTL:    resultTTL,
		log:          logger.Get().With("component", "analysis_service"),
	}
}

// Analyze runs the full pipeline for a symbol. Repeated calls within the
// result TTL return the cached decision without touching providers.
func (s *Service) Analyze(ctx context.Context, symbol string, horizonDays int) (*Result, error) {
	if symbol == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "symbol is required")
	}
	if horizonDays < minHorizonDays || horizonDays > maxHorizonDays {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "horizon_days must be within [%d, %d]", minHorizonDays, maxHorizonDays)
	}

	key := cache.ResultKey(symbol, horizonDays, "")
	var cached Result
	if hit, err := s.results.Get(ctx, key, &cached); err != nil {
		s.log.Warnw("Result cache read failed", "symbol", symbol, "error", err)
	} else if hit {
		metrics.CacheOps.WithLabelValues("result", "hit").Inc()
		return &cached, nil
	}
	metrics.CacheOps.WithLabelValues("result", "miss").Inc()

	traceID := uuid.New().String()
	log := s.log.With("trace_id", traceID, "symbol", symbol, "horizon_days", horizonDays)

	start := time.Now()
	result, degraded, err := s.run(ctx, log, symbol, horizonDays)
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AnalysisTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if degraded {
		metrics.AnalysisTotal.WithLabelValues("degraded").Inc()
	} else {
		metrics.AnalysisTotal.WithLabelValues("success").Inc()
	}

	if err := s.results.Set(ctx, key, result, s.resultTTL); err != nil {
		log.Warnw("Result cache write failed", "error", err)
	}

	log.Infow("Analysis complete",
		"signal", result.Decision.Signal,
		"prob_up", result.Decision.ProbUp,
		"uncertainty", result.Decision.Uncertainty,
		"duration", time.Since(start))
	return result, nil
}

func (s *Service) run(ctx context.Context, log *logger.Logger, symbol string, horizonDays int) (*Result, bool, error) {
	asOf := time.Now().UTC()
	priceStart := asOf.AddDate(0, 0, -priceWindowDays)
	newsStart := asOf.AddDate(0, 0, -newsWindowDays)

	var (
		wg       sync.WaitGroup
		candles  []market.Candle
		priceErr error
		snapshot market.FundamentalsSnapshot
		fundErr  error
		items    []market.NewsItem
		newsErr  error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		candles, priceErr = s.prices.FetchSeries(ctx, symbol, priceStart, asOf)
	}()
	go func() {
		defer wg.Done()
		snapshot, fundErr = s.fundamentals.FetchSnapshot(ctx, symbol, asOf)
	}()
	go func() {
		defer wg.Done()
		items, newsErr = s.news.FetchNews(ctx, symbol, newsStart, asOf)
	}()
	wg.Wait()

	// Price history is the backbone of the analysis; without it there is
	// nothing to score
	if priceErr != nil {
		return nil, false, errors.Wrapf(priceErr, "price history for %s", symbol)
	}

	degraded := false
	if fundErr != nil {
		log.Warnw("Fundamentals unavailable, degrading to empty snapshot", "error", fundErr)
		snapshot = market.EmptySnapshot(symbol, asOf)
		degraded = true
	}
	if newsErr != nil {
		log.Warnw("News unavailable, degrading to neutral sentiment", "error", newsErr)
		items = nil
		degraded = true
	}

	technicalFeatures, err := features.ComputeTechnical(candles)
	if err != nil {
		return nil, false, errors.Wrapf(err, "technical features for %s", symbol)
	}
	sentimentFeatures := features.ComputeSentiment(items, asOf)

	technicalResult := s.technical.Score(technicalFeatures)
	fundamentalResult := s.fundamental.Score(snapshot, asOf)
	sentimentResult := s.sentiment.Score(symbol, sentimentFeatures, asOf)

	vector := features.BuildModelVector(technicalFeatures, snapshot, sentimentFeatures)
	forecast, err := s.forecaster.Predict(ctx, symbol, asOf, vector, horizonDays)
	if err != nil {
		return nil, false, errors.Wrapf(err, "forecast for %s", symbol)
	}

	decision := s.combiner.Combine(ensemble.Input{
		Technical:   technicalResult,
		Fundamental: fundamentalResult,
		Sentiment:   sentimentResult,
		Forecast:    forecast,
	})

	metrics.AgentScore.WithLabelValues("technical").Set(technicalResult.Score)
	metrics.AgentScore.WithLabelValues("fundamental").Set(fundamentalResult.Score)
	metrics.AgentScore.WithLabelValues("sentiment").Set(sentimentResult.Score)

	log.Debugw("Agent outputs",
		"technical_score", technicalResult.Score,
		"fundamental_score", fundamentalResult.Score,
		"sentiment_score", sentimentResult.Score,
		"forecast_exp_return", forecast.ExpReturn)

	return &Result{
		Decision: decision,
		Agents: AgentOutputs{
			Technical:   technicalResult,
			Fundamental: fundamentalResult,
			Sentiment:   sentimentResult,
			Forecast:    forecast,
		},
	}, degraded, nil
}
