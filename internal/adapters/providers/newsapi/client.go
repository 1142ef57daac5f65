package newsapi

import (
	"context"
	"net/url"
	"sort"
	"time"

	"sibyl/internal/adapters/providers"
	"sibyl/internal/cache"
	"sibyl/internal/domain/market"
	"sibyl/internal/metrics"
	"sibyl/internal/nlp"
	"sibyl/pkg/logger"
)

const (
	sourceName = "newsapi"
	dateLayout = "2006-01-02"
	maxItems   = 200
)

// Client fetches recent articles about a symbol from NewsAPI and runs
// them through the configured sentiment scorer.
type Client struct {
	fetcher *providers.Client
	apiKey  string
	baseURL string
	store   cache.Store
	ttl     time.Duration
	scorer  nlp.Scorer
	log     *logger.Logger
}

func NewClient(fetcher *providers.Client, apiKey, baseURL string, store cache.Store, ttl time.Duration, scorer nlp.Scorer) *Client {
	return &Client{
		fetcher: fetcher,
		apiKey:  apiKey,
		baseURL: baseURL,
		store:   store,
		ttl:     ttl,
		scorer:  scorer,
		log:     logger.Get().With("component", "newsapi_client"),
	}
}

type everythingResponse struct {
	Articles []articleRow `json:"articles"`
}

type articleRow struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

// FetchNews returns articles about symbol published within [start, end],
// scored for sentiment and sorted ascending by publish time. Without an
// API key it returns an empty list so the pipeline degrades to neutral
// sentiment instead of failing.
func (c *Client) FetchNews(ctx context.Context, symbol string, start, end time.Time) ([]market.NewsItem, error) {
	if c.apiKey == "" {
		return []market.NewsItem{}, nil
	}

	key := cache.Key("news", map[string]string{
		"symbol": symbol,
		"start":  start.Format(dateLayout),
		"end":    end.Format(dateLayout),
	})

	var cached []market.NewsItem
	if hit, err := c.store.Get(ctx, key, &cached); err != nil {
		c.log.Warnw("Response cache read failed", "symbol", symbol, "error", err)
	} else if hit {
		metrics.CacheOps.WithLabelValues("response", "hit").Inc()
		return cached, nil
	}
	metrics.CacheOps.WithLabelValues("response", "miss").Inc()

	params := url.Values{}
	params.Set("q", symbol)
	params.Set("from", start.Format(dateLayout))
	params.Set("to", end.Format(dateLayout))
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", "50")
	params.Set("apiKey", c.apiKey)

	var resp everythingResponse
	if err := c.fetcher.GetJSON(ctx, providers.ProviderNewsAPI, c.baseURL+"/everything", params, &resp); err != nil {
		return nil, err
	}

	items := make([]market.NewsItem, 0, len(resp.Articles))
	for _, article := range resp.Articles {
		if article.Title == "" {
			continue
		}
		publishedAt, err := time.Parse(time.RFC3339, article.PublishedAt)
		if err != nil {
			c.log.Debugw("Skipping article with unparseable timestamp",
				"symbol", symbol, "published_at", article.PublishedAt)
			continue
		}
		items = append(items, market.NewsItem{
			Symbol:      symbol,
			PublishedAt: publishedAt,
			Title:       article.Title,
			Summary:     article.Description,
			Source:      article.Source.Name,
			URL:         article.URL,
		})
		if len(items) >= maxItems {
			break
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].PublishedAt.Before(items[j].PublishedAt)
	})

	c.scoreItems(ctx, symbol, items)

	if err := c.store.Set(ctx, key, items, c.ttl); err != nil {
		c.log.Warnw("Response cache write failed", "symbol", symbol, "error", err)
	}
	return items, nil
}

// scoreItems attaches sentiment in place. Scoring failures leave items
// unscored rather than failing the fetch.
func (c *Client) scoreItems(ctx context.Context, symbol string, items []market.NewsItem) {
	if len(items) == 0 {
		return
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Title
	}

	scores, err := c.scorer.ScoreBatch(ctx, texts)
	if err != nil {
		c.log.Warnw("Sentiment scoring failed, leaving items unscored",
			"symbol", symbol, "items", len(items), "error", err)
		return
	}
	for i := range items {
		if i >= len(scores) || scores[i] == nil {
			continue
		}
		score := scores[i].Score
		conf := scores[i].Confidence
		items[i].SentimentScore = &score
		items[i].SentimentConfidence = &conf
	}
}
