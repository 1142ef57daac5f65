package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sibyl/internal/adapters/config"
	"sibyl/internal/adapters/errors/noop"
	"sibyl/internal/adapters/errors/sentry"
	"sibyl/internal/adapters/providers"
	"sibyl/internal/adapters/providers/alphavantage"
	"sibyl/internal/adapters/providers/fmp"
	"sibyl/internal/adapters/providers/newsapi"
	"sibyl/internal/adapters/redis"
	"sibyl/internal/agents"
	"sibyl/internal/cache"
	"sibyl/internal/ensemble"
	"sibyl/internal/metrics"
	"sibyl/internal/ml"
	"sibyl/internal/nlp"
	"sibyl/internal/server"
	"sibyl/internal/services/analysis"
	"sibyl/internal/workers"
	"sibyl/pkg/errors"
	"sibyl/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Register()

	store, memStore, redisClient := initCache(cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	fetcher := initFetcher(cfg)
	scorer := initScorer(cfg, log)
	forecaster := initForecaster(cfg, log)
	combiner := initCombiner(cfg, log)

	priceClient := alphavantage.NewClient(fetcher, cfg.Providers.AlphaVantageKey, cfg.Providers.AlphaVantageBase, store, cfg.Cache.ResponseTTL)
	fundClient := fmp.NewClient(fetcher, cfg.Providers.FMPKey, cfg.Providers.FMPBase, store, cfg.Cache.ResponseTTL)
	newsClient := newsapi.NewClient(fetcher, cfg.Providers.NewsAPIKey, cfg.Providers.NewsAPIBase, store, cfg.Cache.ResponseTTL, scorer)

	service := analysis.NewService(priceClient, fundClient, newsClient, forecaster, combiner, store, cfg.Cache.ResultTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewPrefetchWorker(service, cfg.Workers.PrefetchSymbols, cfg.Workers.PrefetchHorizon, cfg.Workers.PrefetchInterval))
	if memStore != nil {
		scheduler.RegisterWorker(workers.NewSweeperWorker(memStore, cfg.Workers.SweepInterval))
	}
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}

	srv := server.New(service)
	go func() {
		if err := srv.Start(cfg.Server.Addr); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	log.Infow("System initialized", "addr", cfg.Server.Addr, "cache_backend", cfg.Cache.Backend)

	waitForShutdown(cancel, scheduler, srv, errorTracker, log)
}

func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initCache returns the shared store plus the concrete memory store when
// the in-process backend is selected, so the sweeper can be wired to it.
func initCache(cfg *config.Config, log *logger.Logger) (cache.Store, *cache.MemoryStore, *redis.Client) {
	if cfg.Cache.Backend == "redis" {
		client, err := redis.NewClient(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Infow("Cache backend: redis", "addr", cfg.Redis.Addr())
		return cache.NewRedisStore(client), nil, client
	}

	memStore := cache.NewMemoryStore()
	log.Info("Cache backend: memory")
	return memStore, memStore, nil
}

func initFetcher(cfg *config.Config) *providers.Client {
	fetcher := providers.NewClient(cfg.Providers.RequestTimeout, cfg.Providers.MaxRetries, cfg.Providers.BackoffBase, cfg.Providers.BackoffJitter)
	fetcher.Register(providers.ProviderAlphaVantage, providers.Limits{
		Concurrency:       int64(cfg.Providers.AlphaVantageConcurrency),
		RequestsPerMinute: cfg.Providers.AlphaVantageRPM,
	})
	fetcher.Register(providers.ProviderFMP, providers.Limits{
		Concurrency:       int64(cfg.Providers.FMPConcurrency),
		RequestsPerMinute: cfg.Providers.FMPRPM,
	})
	fetcher.Register(providers.ProviderNewsAPI, providers.Limits{
		Concurrency:       int64(cfg.Providers.NewsAPIConcurrency),
		RequestsPerMinute: cfg.Providers.NewsAPIRPM,
	})
	return fetcher
}

func initScorer(cfg *config.Config, log *logger.Logger) nlp.Scorer {
	switch cfg.Sentiment.Scorer {
	case "remote":
		log.Infow("Sentiment scorer: remote", "url", cfg.Sentiment.RemoteURL)
		return nlp.NewRemoteScorer(cfg.Sentiment.RemoteURL, cfg.Sentiment.Timeout)
	case "openai":
		if cfg.Sentiment.OpenAIKey == "" {
			log.Warn("Sentiment scorer openai selected but no API key, news stays unscored")
			return nlp.NewDisabledScorer()
		}
		log.Infow("Sentiment scorer: openai", "model", cfg.Sentiment.OpenAIModel)
		return nlp.NewOpenAIScorer(cfg.Sentiment.OpenAIKey, cfg.Sentiment.OpenAIModel)
	default:
		log.Info("Sentiment scorer disabled")
		return nlp.NewDisabledScorer()
	}
}

func initForecaster(cfg *config.Config, log *logger.Logger) agents.Forecaster {
	if cfg.Forecast.Mode == "remote" {
		log.Infow("Forecaster: remote", "url", cfg.Forecast.RemoteURL)
		return agents.NewRemoteForecaster(cfg.Forecast.RemoteURL, cfg.Forecast.Timeout)
	}
	log.Info("Forecaster: local stub")
	return agents.NewLocalForecaster()
}

func initCombiner(cfg *config.Config, log *logger.Logger) *ensemble.Combiner {
	model, err := ml.LoadMetaModel(cfg.Ensemble.ModelPath)
	if err != nil {
		if errors.Is(err, errors.ErrModelUnavailable) {
			log.Infow("Meta-model unavailable, using baseline blend", "reason", err)
		} else {
			log.Warnf("Failed to load meta-model, using baseline blend: %v", err)
		}
		return ensemble.NewCombiner(nil)
	}
	log.Infow("Meta-model loaded", "path", cfg.Ensemble.ModelPath)
	return ensemble.NewCombiner(model)
}

func waitForShutdown(cancel context.CancelFunc, scheduler *workers.Scheduler, srv *server.Server, errorTracker errors.Tracker, log *logger.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Infow("Shutting down", "signal", sig.String())

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP server shutdown: %v", err)
	}
	if err := scheduler.Stop(); err != nil {
		log.Warnf("Worker shutdown: %v", err)
	}

	if err := errorTracker.Flush(shutdownCtx); err != nil {
		log.Warnf("Error tracker flush: %v", err)
	}
	log.Info("Shutdown complete")
}
