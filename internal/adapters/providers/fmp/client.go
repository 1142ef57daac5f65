package fmp

import (
	"context"
	"net/url"
	"time"

	"sibyl/internal/adapters/providers"
	"sibyl/internal/cache"
	"sibyl/internal/domain/market"
	"sibyl/internal/metrics"
	"sibyl/pkg/logger"
)

const (
	sourceName = "fmp"
	dateLayout = "2006-01-02"
)

// Client fetches fundamentals from Financial Modeling Prep. A snapshot is
// merged from four sub-resources (profile, key metrics, income statement,
// balance sheet) with a fixed field precedence.
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
		log:     logger.Get().With("component", "fmp_client"),
	}
}

type profileRow struct {
	PE      *float64 `json:"pe"`
	IPODate string   `json:"ipoDate"`
}

type keyMetricsRow struct {
	PERatio           *float64 `json:"peRatio"`
	ReturnOnEquityTTM *float64 `json:"returnOnEquityTTM"`
	ROE               *float64 `json:"roe"`
	DebtToEquity      *float64 `json:"debtToEquity"`
	RevenueGrowth     *float64 `json:"revenueGrowth"`
}

type incomeRow struct {
	Date      string   `json:"date"`
	NetIncome *float64 `json:"netIncome"`
	Revenue   *float64 `json:"revenue"`
}

type balanceRow struct {
	TotalDebt   *float64 `json:"totalDebt"`
	TotalEquity *float64 `json:"totalEquity"`
}

// FetchSnapshot returns the merged fundamentals picture for symbol. When
// no API key is configured it returns an all-unknown snapshot without
// touching the network, so the pipeline can run on price data alone.
func (c *Client) FetchSnapshot(ctx context.Context, symbol string, asOf time.Time) (market.FundamentalsSnapshot, error) {
	if c.apiKey == "" {
		return market.EmptySnapshot(symbol, asOf), nil
	}

	key := cache.Key("fund", map[string]string{
		"symbol": symbol,
		"as_of":  asOf.Format(dateLayout),
	})

	var cached market.FundamentalsSnapshot
	if hit, err := c.store.Get(ctx, key, &cached); err != nil {
		c.log.Warnw("Response cache read failed", "symbol", symbol, "error", err)
	} else if hit {
		metrics.CacheOps.WithLabelValues("response", "hit").Inc()
		return cached, nil
	}
	metrics.CacheOps.WithLabelValues("response", "miss").Inc()

	var profiles []profileRow
	if err := c.getResource(ctx, "/profile/"+symbol, nil, &profiles); err != nil {
		return market.FundamentalsSnapshot{}, err
	}
	single := url.Values{}
	single.Set("limit", "1")

	var metricsRows []keyMetricsRow
	if err := c.getResource(ctx, "/key-metrics/"+symbol, single, &metricsRows); err != nil {
		return market.FundamentalsSnapshot{}, err
	}
	var incomes []incomeRow
	if err := c.getResource(ctx, "/income-statement/"+symbol, single, &incomes); err != nil {
		return market.FundamentalsSnapshot{}, err
	}
	var balances []balanceRow
	if err := c.getResource(ctx, "/balance-sheet-statement/"+symbol, single, &balances); err != nil {
		return market.FundamentalsSnapshot{}, err
	}

	snapshot := mergeSnapshot(symbol, asOf, firstOrZero(profiles), firstOrZero(metricsRows), firstOrZero(incomes), firstOrZero(balances))

	if err := c.store.Set(ctx, key, snapshot, c.ttl); err != nil {
		c.log.Warnw("Response cache write failed", "symbol", symbol, "error", err)
	}
	return snapshot, nil
}

func (c *Client) getResource(ctx context.Context, path string, params url.Values, dest interface{}) error {
	merged := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			merged.Add(k, v)
		}
	}
	merged.Set("apikey", c.apiKey)
	return c.fetcher.GetJSON(ctx, providers.ProviderFMP, c.baseURL+path, merged, dest)
}

// mergeSnapshot applies the field precedence: the income statement date
// anchors as_of, falling back to the IPO date and finally the request
// time; the profile's PE wins over key metrics; TTM ROE wins over plain
// ROE; debt-to-equity falls back to the balance sheet ratio.
func mergeSnapshot(symbol string, now time.Time, profile profileRow, km keyMetricsRow, income incomeRow, balance balanceRow) market.FundamentalsSnapshot {
	asOf := now.UTC()
	if ts, err := time.Parse(dateLayout, income.Date); err == nil {
		asOf = ts
	} else if ts, err := time.Parse(dateLayout, profile.IPODate); err == nil {
		asOf = ts
	}

	snapshot := market.FundamentalsSnapshot{
		Symbol: symbol,
		AsOf:   asOf,
		Source: sourceName,
	}

	if profile.PE != nil {
		snapshot.PE = profile.PE
	} else if km.PERatio != nil {
		snapshot.PE = km.PERatio
	}

	if km.ReturnOnEquityTTM != nil {
		snapshot.ROE = km.ReturnOnEquityTTM
	} else if km.ROE != nil {
		snapshot.ROE = km.ROE
	}

	if km.DebtToEquity != nil {
		snapshot.DebtToEquity = km.DebtToEquity
	} else if balance.TotalDebt != nil && balance.TotalEquity != nil && *balance.TotalEquity != 0 {
		d2e := *balance.TotalDebt / *balance.TotalEquity
		snapshot.DebtToEquity = &d2e
	}

	if income.NetIncome != nil && income.Revenue != nil && *income.Revenue != 0 {
		margin := *income.NetIncome / *income.Revenue
		snapshot.ProfitMargin = &margin
	}

	snapshot.RevenueGrowthYoY = km.RevenueGrowth

	recency := int(now.UTC().Sub(asOf).Hours() / 24)
	if recency < 0 {
		recency = 0
	}
	snapshot.FilingRecencyDays = &recency

	return snapshot
}

func firstOrZero[T any](rows []T) T {
	var zero T
	if len(rows) > 0 {
		return rows[0]
	}
	return zero
}
