package config

import (
	"golang-stock-predictor/pkg/config"
)

// PriceFeed holds the configuration for the market data API.
type PriceFeed struct {
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	QuoteCacheTTL       string `mapstructure:"quote_cache_ttl"`
}

// Signals holds the lookback windows for impact aggregation and the price
// history windows for the derived model inputs.
type Signals struct {
	NewsLookbackHours   int `mapstructure:"news_lookback_hours"`
	SocialLookbackHours int `mapstructure:"social_lookback_hours"`
	MomentumDays        int `mapstructure:"momentum_days"`
	VolatilityDays      int `mapstructure:"volatility_days"`
}

// Trading holds the risk rules and sizing limits for the simulated
// portfolios. The value is passed into the decision engine and trade executor
// at construction time and never mutated afterwards.
type Trading struct {
	StartingCash          float64 `mapstructure:"starting_cash"`
	MinTradeValue         float64 `mapstructure:"min_trade_value"`
	MaxPositions          int     `mapstructure:"max_positions"`
	MaxPositionPct        float64 `mapstructure:"max_position_pct"`
	BasePositionPct       float64 `mapstructure:"base_position_pct"`
	HighConfPositionPct   float64 `mapstructure:"high_conf_position_pct"`
	HighConfThreshold     float64 `mapstructure:"high_conf_threshold"`
	MaxCashUsePct         float64 `mapstructure:"max_cash_use_pct"`
	ProfitTargetPct       float64 `mapstructure:"profit_target_pct"`
	StopLossPct           float64 `mapstructure:"stop_loss_pct"`
	MaxHoldDays           int     `mapstructure:"max_hold_days"`
	BuyConfidenceMin      float64 `mapstructure:"buy_confidence_min"`
	ReversalConfidenceMin float64 `mapstructure:"reversal_confidence_min"`
	AgreementBoost        float64 `mapstructure:"agreement_boost"`
	MaxConfidence         float64 `mapstructure:"max_confidence"`
	AlertConfidenceMin    float64 `mapstructure:"alert_confidence_min"`
	PortfolioLockDuration string  `mapstructure:"portfolio_lock_duration"`
}

// Scheduler holds the cron expressions for the batch operations.
type Scheduler struct {
	GeneratePredictionsCron string `mapstructure:"generate_predictions_cron"`
	EvaluatePendingCron     string `mapstructure:"evaluate_pending_cron"`
	RunTradeCycleCron       string `mapstructure:"run_trade_cycle_cron"`
}

// Config holds the full configuration for the engine service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Telegram  config.Telegram `mapstructure:"telegram"`
	PriceFeed PriceFeed       `mapstructure:"price_feed"`
	Signals   Signals         `mapstructure:"signals"`
	Trading   Trading         `mapstructure:"trading"`
	Scheduler Scheduler       `mapstructure:"scheduler"`
}

// Load loads the engine configuration from the given path and fills unset
// trading and signal values with their defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.Trading = cfg.Trading.withDefaults()
	cfg.Signals = cfg.Signals.withDefaults()
	return &cfg, nil
}

// DefaultTrading returns the standard risk rules.
func DefaultTrading() Trading {
	return Trading{
		StartingCash:          100000,
		MinTradeValue:         100,
		MaxPositions:          10,
		MaxPositionPct:        0.15,
		BasePositionPct:       0.05,
		HighConfPositionPct:   0.08,
		HighConfThreshold:     0.80,
		MaxCashUsePct:         0.95,
		ProfitTargetPct:       0.05,
		StopLossPct:           0.03,
		MaxHoldDays:           5,
		BuyConfidenceMin:      0.65,
		ReversalConfidenceMin: 0.60,
		AgreementBoost:        0.10,
		MaxConfidence:         0.95,
		AlertConfidenceMin:    0.70,
		PortfolioLockDuration: "5m",
	}
}

func (t Trading) withDefaults() Trading {
	def := DefaultTrading()
	if t.StartingCash == 0 {
		t.StartingCash = def.StartingCash
	}
	if t.MinTradeValue == 0 {
		t.MinTradeValue = def.MinTradeValue
	}
	if t.MaxPositions == 0 {
		t.MaxPositions = def.MaxPositions
	}
	if t.MaxPositionPct == 0 {
		t.MaxPositionPct = def.MaxPositionPct
	}
	if t.BasePositionPct == 0 {
		t.BasePositionPct = def.BasePositionPct
	}
	if t.HighConfPositionPct == 0 {
		t.HighConfPositionPct = def.HighConfPositionPct
	}
	if t.HighConfThreshold == 0 {
		t.HighConfThreshold = def.HighConfThreshold
	}
	if t.MaxCashUsePct == 0 {
		t.MaxCashUsePct = def.MaxCashUsePct
	}
	if t.ProfitTargetPct == 0 {
		t.ProfitTargetPct = def.ProfitTargetPct
	}
	if t.StopLossPct == 0 {
		t.StopLossPct = def.StopLossPct
	}
	if t.MaxHoldDays == 0 {
		t.MaxHoldDays = def.MaxHoldDays
	}
	if t.BuyConfidenceMin == 0 {
		t.BuyConfidenceMin = def.BuyConfidenceMin
	}
	if t.ReversalConfidenceMin == 0 {
		t.ReversalConfidenceMin = def.ReversalConfidenceMin
	}
	if t.AgreementBoost == 0 {
		t.AgreementBoost = def.AgreementBoost
	}
	if t.MaxConfidence == 0 {
		t.MaxConfidence = def.MaxConfidence
	}
	if t.AlertConfidenceMin == 0 {
		t.AlertConfidenceMin = def.AlertConfidenceMin
	}
	if t.PortfolioLockDuration == "" {
		t.PortfolioLockDuration = def.PortfolioLockDuration
	}
	return t
}

func (s Signals) withDefaults() Signals {
	if s.NewsLookbackHours == 0 {
		s.NewsLookbackHours = 24
	}
	if s.SocialLookbackHours == 0 {
		s.SocialLookbackHours = 24
	}
	if s.MomentumDays == 0 {
		s.MomentumDays = 5
	}
	if s.VolatilityDays == 0 {
		s.VolatilityDays = 10
	}
	return s
}
