package workers

import (
	"context"
	"time"

	"sibyl/internal/services/analysis"
)

// PrefetchWorker keeps the result cache warm for a configured watchlist
// so interactive requests for popular symbols hit the cache.
type PrefetchWorker struct {
	*BaseWorker
	service     *analysis.Service
	symbols     []string
	horizonDays int
}

func NewPrefetchWorker(service *analysis.Service, symbols []string, horizonDays int, interval time.Duration) *PrefetchWorker {
	return &PrefetchWorker{
		BaseWorker:  NewBaseWorker("prefetch", interval, len(symbols) > 0),
		service:     service,
		symbols:     symbols,
		horizonDays: horizonDays,
	}
}

// Run analyzes each watchlist symbol in turn. Per-symbol failures are
// logged and skipped so one bad symbol does not starve the rest.
func (w *PrefetchWorker) Run(ctx context.Context) error {
	start := time.Now()

	for _, symbol := range w.symbols {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := w.service.Analyze(ctx, symbol, w.horizonDays); err != nil {
			w.Log().Warnw("Prefetch failed for symbol", "symbol", symbol, "error", err)
		}
	}

	w.RecordRun(time.Since(start))
	return nil
}
