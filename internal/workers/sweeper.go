package workers

import (
	"context"
	"time"

	"sibyl/internal/cache"
)

// SweeperWorker evicts expired entries from the in-process cache.
// Expired entries are already invisible to readers, this just reclaims
// the memory between reads.
type SweeperWorker struct {
	*BaseWorker
	store *cache.MemoryStore
}

func NewSweeperWorker(store *cache.MemoryStore, interval time.Duration) *SweeperWorker {
	return &SweeperWorker{
		BaseWorker: NewBaseWorker("cache_sweeper", interval, store != nil),
		store:      store,
	}
}

func (w *SweeperWorker) Run(_ context.Context) error {
	start := time.Now()

	removed := w.store.Sweep()
	if removed > 0 {
		w.Log().Debugw("Swept expired cache entries", "removed", removed, "remaining", w.store.Len())
	}

	w.RecordRun(time.Since(start))
	return nil
}
