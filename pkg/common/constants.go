package common

const (
	// RedisKeyLastPrice caches the most recent quote per ticker.
	RedisKeyLastPrice = "last_price:%s"

	// RedisKeyPredictionAlert dedupes high-confidence prediction alerts,
	// keyed by model type, ticker and target date.
	RedisKeyPredictionAlert = "prediction_alert:%s:%s:%s"

	// RedisKeyPortfolioLock serializes trade cycles per portfolio, keyed by
	// model type.
	RedisKeyPortfolioLock = "portfolio_lock:%s"
)
