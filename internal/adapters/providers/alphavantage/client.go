package alphavantage

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"time"

	"sibyl/internal/adapters/providers"
	"sibyl/internal/cache"
	"sibyl/internal/domain/market"
	"sibyl/internal/metrics"
	"sibyl/pkg/errors"
	"sibyl/pkg/logger"
)

const (
	sourceName = "alpha_vantage"
	dateLayout = "2006-01-02"
)

// Client fetches daily OHLCV candles from Alpha Vantage
type Client struct {
	fetcher *providers.Client
	apiKey  string
	baseURL string
	store   cache.Store
	ttl     time.Duration
	log     *logger.Logger
}

func NewClient(fetcher *providers.Client, apiKey, baseURL string, store cache.Store, ttl time.Duration) *Client {
	return &Client{
		fetcher: fetcher,
		apiKey:  apiKey,
		baseURL: baseURL,
		store:   store,
		ttl:     ttl,
		log:     logger.Get().With("component", "alphavantage_client"),
	}
}

type seriesResponse struct {
	Series map[string]seriesRow `json:"Time Series (Daily)"`
}

type seriesRow struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"6. volume"`
}

// FetchSeries returns daily candles for symbol within [start, end],
// sorted ascending by timestamp. Results are cached per request window.
func (c *Client) FetchSeries(ctx context.Context, symbol string, start, end time.Time) ([]market.Candle, error) {
	key := cache.Key("ts", map[string]string{
		"symbol":   symbol,
		"start":    start.Format(dateLayout),
		"end":      end.Format(dateLayout),
		"interval": "1d",
	})

	var cached []market.Candle
	if hit, err := c.store.Get(ctx, key, &cached); err != nil {
		c.log.Warnw("Response cache read failed", "symbol", symbol, "error", err)
	} else if hit {
		metrics.CacheOps.WithLabelValues("response", "hit").Inc()
		return cached, nil
	}
	metrics.CacheOps.WithLabelValues("response", "miss").Inc()

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY_ADJUSTED")
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)
	params.Set("outputsize", "full")

	var resp seriesResponse
	if err := c.fetcher.GetJSON(ctx, providers.ProviderAlphaVantage, c.baseURL, params, &resp); err != nil {
		return nil, err
	}
	if resp.Series == nil {
		// Alpha Vantage returns informational JSON without the series
		// key when the symbol is unknown or the quota is spent
		return nil, errors.Wrapf(errors.ErrProviderData, "alphavantage: missing daily series for %s", symbol)
	}

	candles := make([]market.Candle, 0, len(resp.Series))
	for dateStr, row := range resp.Series {
		ts, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			c.log.Debugw("Skipping row with unparseable date", "symbol", symbol, "date", dateStr)
			continue
		}
		if ts.Before(start) || ts.After(end) {
			continue
		}
		candle, err := convertRow(symbol, ts, row)
		if err != nil {
			c.log.Debugw("Skipping malformed row", "symbol", symbol, "date", dateStr, "error", err)
			continue
		}
		candles = append(candles, candle)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Ts.Before(candles[j].Ts)
	})

	if err := c.store.Set(ctx, key, candles, c.ttl); err != nil {
		c.log.Warnw("Response cache write failed", "symbol", symbol, "error", err)
	}
	return candles, nil
}

func convertRow(symbol string, ts time.Time, row seriesRow) (market.Candle, error) {
	open, err := strconv.ParseFloat(row.Open, 64)
	if err != nil {
		return market.Candle{}, errors.Wrap(err, "parse open")
	}
	high, err := strconv.ParseFloat(row.High, 64)
	if err != nil {
		return market.Candle{}, errors.Wrap(err, "parse high")
	}
	low, err := strconv.ParseFloat(row.Low, 64)
	if err != nil {
		return market.Candle{}, errors.Wrap(err, "parse low")
	}
	closePrice, err := strconv.ParseFloat(row.Close, 64)
	if err != nil {
		return market.Candle{}, errors.Wrap(err, "parse close")
	}
	volume, err := strconv.ParseFloat(row.Volume, 64)
	if err != nil {
		return market.Candle{}, errors.Wrap(err, "parse volume")
	}

	return market.Candle{
		Symbol:   symbol,
		Ts:       ts,
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closePrice,
		Volume:   volume,
		Interval: "1d",
		Source:   sourceName,
	}, nil
}
