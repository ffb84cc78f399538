package service

import (
	"context"
	"errors"
	"time"

	"golang-stock-predictor/internal/engine/config"
	"golang-stock-predictor/internal/engine/repository"
	"golang-stock-predictor/pkg/logger"

	"github.com/montanaflynn/stats"
)

// SignalAggregator reduces raw impact records and price history into the
// numeric inputs the scoring functions consume. All methods are pure reads.
type SignalAggregator interface {
	// NewsImpact returns the confidence-weighted mean impact score over the
	// lookback window, or 0 when no records exist.
	NewsImpact(ctx context.Context, companyID uint, hoursBack int) (float64, error)

	// SocialImpact returns the weighted mean of sentiment over the lookback
	// window, weighting each record by confidence and source weight, or 0
	// when no records exist.
	SocialImpact(ctx context.Context, companyID uint, hoursBack int) (float64, error)

	// PriceInputs derives volatility (stddev of daily returns) and momentum
	// (mean daily return) from recent closes. Either is nil when history is
	// insufficient or the feed has no data for the ticker.
	PriceInputs(ctx context.Context, ticker string) (volatility, momentum *float64, err error)
}

type signalAggregator struct {
	newsRepo   repository.NewsImpactSignalRepository
	socialRepo repository.SocialImpactSignalRepository
	priceFeed  repository.PriceFeedRepository
	cfg        config.Signals
	log        *logger.Logger
}

func NewSignalAggregator(
	newsRepo repository.NewsImpactSignalRepository,
	socialRepo repository.SocialImpactSignalRepository,
	priceFeed repository.PriceFeedRepository,
	cfg config.Signals,
	log *logger.Logger,
) SignalAggregator {
	return &signalAggregator{
		newsRepo:   newsRepo,
		socialRepo: socialRepo,
		priceFeed:  priceFeed,
		cfg:        cfg,
		log:        log,
	}
}

func (a *signalAggregator) NewsImpact(ctx context.Context, companyID uint, hoursBack int) (float64, error) {
	since := time.Now().UTC().Add(-time.Duration(hoursBack) * time.Hour)
	signals, err := a.newsRepo.GetWindow(ctx, companyID, since)
	if err != nil {
		return 0, err
	}
	if len(signals) == 0 {
		return 0, nil
	}

	var weightedSum, weightTotal float64
	for _, s := range signals {
		weightedSum += s.ImpactScore * s.Confidence
		weightTotal += s.Confidence
	}
	if weightTotal == 0 {
		return 0, nil
	}
	return weightedSum / weightTotal, nil
}

func (a *signalAggregator) SocialImpact(ctx context.Context, companyID uint, hoursBack int) (float64, error) {
	since := time.Now().UTC().Add(-time.Duration(hoursBack) * time.Hour)
	signals, err := a.socialRepo.GetWindow(ctx, companyID, since)
	if err != nil {
		return 0, err
	}
	if len(signals) == 0 {
		return 0, nil
	}

	var weightedSum, weightTotal float64
	for _, s := range signals {
		weight := s.Confidence * s.SourceWeight
		weightedSum += float64(s.Sentiment) * weight
		weightTotal += weight
	}
	if weightTotal == 0 {
		return 0, nil
	}
	return weightedSum / weightTotal, nil
}

func (a *signalAggregator) PriceInputs(ctx context.Context, ticker string) (*float64, *float64, error) {
	closes, err := a.priceFeed.GetDailyCloses(ctx, ticker, a.cfg.VolatilityDays+1)
	if errors.Is(err, repository.ErrPriceUnavailable) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	returns := dailyReturns(closes)
	if len(returns) < 2 {
		return nil, nil, nil
	}

	vol, err := stats.StdDevP(returns)
	if err != nil {
		return nil, nil, err
	}

	momentumWindow := returns
	if len(momentumWindow) > a.cfg.MomentumDays {
		momentumWindow = momentumWindow[len(momentumWindow)-a.cfg.MomentumDays:]
	}
	mom, err := stats.Mean(momentumWindow)
	if err != nil {
		return nil, nil, err
	}

	return &vol, &mom, nil
}

// dailyReturns converts closes into close-to-close fractional returns.
func dailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}
	return returns
}
