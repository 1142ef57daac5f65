package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sibyl/internal/adapters/providers"
	"sibyl/internal/cache"
	"sibyl/pkg/errors"
)

const dailyPayload = `{
	"Meta Data": {"2. Symbol": "AAPL"},
	"Time Series (Daily)": {
		"2024-03-04": {"1. open": "181.0", "2. high": "183.1", "3. low": "180.5", "4. close": "182.4", "6. volume": "52000000"},
		"2024-03-01": {"1. open": "179.5", "2. high": "180.9", "3. low": "178.2", "4. close": "180.1", "6. volume": "48000000"},
		"2024-02-29": {"1. open": "180.0", "2. high": "181.0", "3. low": "179.0", "4. close": "oops", "6. volume": "1000"},
		"2023-01-02": {"1. open": "125.0", "2. high": "126.0", "3. low": "124.0", "4. close": "125.5", "6. volume": "30000000"}
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	fetcher := providers.NewClient(2*time.Second, 0, time.Millisecond, 0)
	fetcher.Register(providers.ProviderAlphaVantage, providers.Limits{Concurrency: 2, RequestsPerMinute: 6000})

	return NewClient(fetcher, "test-key", server.URL, cache.NewMemoryStore(), time.Minute), server
}

func TestFetchSeries_ParsesAndSorts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TIME_SERIES_DAILY_ADJUSTED", r.URL.Query().Get("function"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "full", r.URL.Query().Get("outputsize"))
		w.Write([]byte(dailyPayload))
	})

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	candles, err := client.FetchSeries(context.Background(), "AAPL", start, end)
	require.NoError(t, err)

	// The 2023 row falls outside the window, the malformed row is skipped
	require.Len(t, candles, 2)
	assert.True(t, candles[0].Ts.Before(candles[1].Ts), "candles must be ascending")
	assert.Equal(t, 180.1, candles[0].Close)
	assert.Equal(t, 182.4, candles[1].Close)
	assert.Equal(t, "1d", candles[0].Interval)
	assert.Equal(t, "alpha_vantage", candles[0].Source)
}

func TestFetchSeries_MissingSeriesKey(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "API call frequency exceeded"}`))
	})

	_, err := client.FetchSeries(context.Background(), "AAPL",
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrProviderData))
}

func TestFetchSeries_SecondCallHitsCache(t *testing.T) {
	var calls atomic.Int64
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(dailyPayload))
	})

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	first, err := client.FetchSeries(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	second, err := client.FetchSeries(context.Background(), "AAPL", start, end)
	require.NoError(t, err)

	assert.Equal(t, int64(1), calls.Load())
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Close, second[i].Close)
		assert.True(t, first[i].Ts.Equal(second[i].Ts))
	}
}

func TestFetchSeries_DifferentWindowMissesCache(t *testing.T) {
	var calls atomic.Int64
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(dailyPayload))
	})

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := client.FetchSeries(context.Background(), "AAPL", start, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = client.FetchSeries(context.Background(), "AAPL", start, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, int64(2), calls.Load())
}
