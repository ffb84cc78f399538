package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang-stock-predictor/internal/engine/config"
	"golang-stock-predictor/internal/engine/dto"
	"golang-stock-predictor/pkg/common"
	"golang-stock-predictor/pkg/logger"
	redisPkg "golang-stock-predictor/pkg/redis"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// ErrPriceUnavailable means the feed has no price for the requested symbol or
// date. Callers skip the item and retry on a later run; this is never a batch
// failure.
var ErrPriceUnavailable = errors.New("price unavailable")

const defaultChartRange = "3mo"

// PriceFeedRepository is the market data collaborator. All trades and
// evaluations are priced through it.
type PriceFeedRepository interface {
	// GetQuote returns the current market price for a ticker.
	GetQuote(ctx context.Context, ticker string) (float64, error)

	// GetPriceOnOrBefore returns the nearest daily close at or before the
	// given date.
	GetPriceOnOrBefore(ctx context.Context, ticker string, date time.Time) (float64, error)

	// GetDailyCloses returns up to days most recent daily closes, oldest
	// first.
	GetDailyCloses(ctx context.Context, ticker string, days int) ([]float64, error)
}

type yahooFinanceRepository struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	quoteCache  *gocache.Cache
	chartCache  *gocache.Cache
	redisClient *redisPkg.Client
	log         *logger.Logger
}

// NewYahooFinanceRepository creates a price feed backed by the Yahoo Finance
// chart API, with request rate limiting and short-lived caching.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger, redisClient *redisPkg.Client) (PriceFeedRepository, error) {
	if cfg.PriceFeed.BaseURL == "" {
		return nil, fmt.Errorf("price feed base_url is required")
	}

	maxPerMinute := cfg.PriceFeed.MaxRequestPerMinute
	if maxPerMinute <= 0 {
		maxPerMinute = 60
	}

	quoteTTL := time.Minute
	if cfg.PriceFeed.QuoteCacheTTL != "" {
		ttl, err := time.ParseDuration(cfg.PriceFeed.QuoteCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid quote_cache_ttl: %w", err)
		}
		quoteTTL = ttl
	}

	return &yahooFinanceRepository{
		baseURL:     cfg.PriceFeed.BaseURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxPerMinute)), 1),
		quoteCache:  gocache.New(quoteTTL, 2*quoteTTL),
		chartCache:  gocache.New(15*time.Minute, 30*time.Minute),
		redisClient: redisClient,
		log:         log,
	}, nil
}

func (r *yahooFinanceRepository) GetQuote(ctx context.Context, ticker string) (float64, error) {
	if cached, found := r.quoteCache.Get(ticker); found {
		return cached.(float64), nil
	}

	result, err := r.fetchChart(ctx, ticker, defaultChartRange)
	if err != nil {
		return 0, err
	}

	price := result.Meta.RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("%w: no market price for %s", ErrPriceUnavailable, ticker)
	}

	r.quoteCache.Set(ticker, price, gocache.DefaultExpiration)
	r.cacheLastPrice(ctx, ticker, price)

	return price, nil
}

func (r *yahooFinanceRepository) GetPriceOnOrBefore(ctx context.Context, ticker string, date time.Time) (float64, error) {
	prices, err := r.dailyPrices(ctx, ticker)
	if err != nil {
		return 0, err
	}

	// End of the requested day; bars stamped within the day still count.
	cutoff := date.UTC().Truncate(24 * time.Hour).Add(24*time.Hour - time.Second).Unix()

	var best *dto.DailyPrice
	for i := range prices {
		if prices[i].Timestamp > cutoff {
			break
		}
		best = &prices[i]
	}
	if best == nil {
		return 0, fmt.Errorf("%w: no close for %s on or before %s", ErrPriceUnavailable, ticker, date.Format("2006-01-02"))
	}
	return best.Close, nil
}

func (r *yahooFinanceRepository) GetDailyCloses(ctx context.Context, ticker string, days int) ([]float64, error) {
	prices, err := r.dailyPrices(ctx, ticker)
	if err != nil {
		return nil, err
	}

	closes := make([]float64, 0, len(prices))
	for _, p := range prices {
		closes = append(closes, p.Close)
	}
	if days > 0 && len(closes) > days {
		closes = closes[len(closes)-days:]
	}
	return closes, nil
}

func (r *yahooFinanceRepository) dailyPrices(ctx context.Context, ticker string) ([]dto.DailyPrice, error) {
	if cached, found := r.chartCache.Get(ticker); found {
		return cached.([]dto.DailyPrice), nil
	}

	result, err := r.fetchChart(ctx, ticker, defaultChartRange)
	if err != nil {
		return nil, err
	}

	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: no quote data for %s", ErrPriceUnavailable, ticker)
	}

	quote := result.Indicators.Quote[0]
	prices := make([]dto.DailyPrice, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		prices = append(prices, dto.DailyPrice{Timestamp: ts, Close: *quote.Close[i]})
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: empty price history for %s", ErrPriceUnavailable, ticker)
	}

	r.chartCache.Set(ticker, prices, gocache.DefaultExpiration)
	return prices, nil
}

func (r *yahooFinanceRepository) fetchChart(ctx context.Context, ticker, chartRange string) (*dto.ChartResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s", r.baseURL, ticker, chartRange)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: unknown symbol %s", ErrPriceUnavailable, ticker)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart request for %s returned status %d", ticker, resp.StatusCode)
	}

	var chart dto.ChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("failed to decode chart response for %s: %w", ticker, err)
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrPriceUnavailable, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: empty chart result for %s", ErrPriceUnavailable, ticker)
	}

	return &chart.Chart.Result[0], nil
}

// cacheLastPrice mirrors the freshest quote into Redis for other consumers.
// Best effort only.
func (r *yahooFinanceRepository) cacheLastPrice(ctx context.Context, ticker string, price float64) {
	if r.redisClient == nil {
		return
	}
	key := fmt.Sprintf(common.RedisKeyLastPrice, ticker)
	pipe := r.redisClient.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"price":     price,
		"timestamp": time.Now().UTC().Unix(),
	})
	pipe.Expire(ctx, key, 10*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Debug("Failed to cache last price in redis", logger.ErrorField(err), logger.StringField("ticker", ticker))
	}
}
