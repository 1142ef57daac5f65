package market

import "time"

// Candle represents one daily OHLCV bar for a symbol.
// Candles are immutable once fetched and uniquely identified by
// (symbol, timestamp, interval).
type Candle struct {
	Symbol   string    `json:"symbol"`
	Ts       time.Time `json:"ts"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
	Interval string    `json:"interval"` // only "1d" is supported
	Source   string    `json:"source"`
}

// FundamentalsSnapshot is the best-known fundamental picture for a symbol
// at a point in time. Providers rarely populate every field, so all ratios
// are pointers: nil means unknown, never zero.
type FundamentalsSnapshot struct {
	Symbol            string    `json:"symbol"`
	AsOf              time.Time `json:"as_of"`
	PE                *float64  `json:"pe,omitempty"`
	ROE               *float64  `json:"roe,omitempty"`
	DebtToEquity      *float64  `json:"debt_to_equity,omitempty"`
	ProfitMargin      *float64  `json:"profit_margin,omitempty"`
	RevenueGrowthYoY  *float64  `json:"growth_rev_yoy,omitempty"`
	FilingRecencyDays *int      `json:"filing_recency_days,omitempty"`
	Source            string    `json:"source"`
}

// EmptySnapshot returns an all-unknown snapshot for a symbol. Used both
// when no fundamentals API key is configured and as the degraded input
// when the provider fails mid-analysis.
func EmptySnapshot(symbol string, asOf time.Time) FundamentalsSnapshot {
	return FundamentalsSnapshot{Symbol: symbol, AsOf: asOf}
}

// NewsItem is a single article about a symbol. Sentiment fields are
// populated by the external scorer; items the scorer cannot process keep
// them nil. Immutable once scored.
type NewsItem struct {
	Symbol              string    `json:"symbol"`
	PublishedAt         time.Time `json:"published_at"`
	Title               string    `json:"title"`
	Summary             string    `json:"summary,omitempty"`
	Source              string    `json:"source,omitempty"`
	URL                 string    `json:"url,omitempty"`
	SentimentScore      *float64  `json:"sentiment_score,omitempty"`      // -1..1
	SentimentConfidence *float64  `json:"sentiment_confidence,omitempty"` // 0..1
}
