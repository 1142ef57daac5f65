package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Store is a TTL key-value store shared by the two cache roles: provider
// responses (canonical records keyed by request hash) and whole analysis
// results (keyed by symbol and horizon). Expiry is lazy: entries are
// checked at read time.
type Store interface {
	// Get unmarshals the value for key into dest, returning false on a
	// miss (absent or expired).
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key for ttl
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes a key
	Delete(ctx context.Context, key string) error
}

// Key builds a deterministic cache key for a provider request: the kind
// prefix plus a sha256 digest of the sorted, normalized parameters.
// Identical requests always map to the same key, so concurrent writers
// are idempotent.
func Key(kind string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return kind + ":" + hex.EncodeToString(sum[:])
}

// ResultKey builds the analysis result key. The as-of bucket is empty for
// live requests; historical requests (backtesting callers) pass the day
// bucket so results for different days never collide.
func ResultKey(symbol string, horizonDays int, asOfBucket string) string {
	if asOfBucket == "" {
		return fmt.Sprintf("analysis:%s:%d", symbol, horizonDays)
	}
	return fmt.Sprintf("analysis:%s:%d:%s", symbol, horizonDays, asOfBucket)
}
