package service

import (
	"context"
	"testing"
	"time"

	"golang-stock-predictor/internal/engine/config"
	"golang-stock-predictor/internal/engine/repository"
	"golang-stock-predictor/internal/entity"
	"golang-stock-predictor/pkg/logger"

	"github.com/stretchr/testify/require"
)

type fakeNewsRepo struct {
	signals []entity.NewsImpactSignal
}

func (f *fakeNewsRepo) GetWindow(ctx context.Context, companyID uint, since time.Time) ([]entity.NewsImpactSignal, error) {
	return f.signals, nil
}

type fakeSocialRepo struct {
	signals []entity.SocialImpactSignal
}

func (f *fakeSocialRepo) GetWindow(ctx context.Context, companyID uint, since time.Time) ([]entity.SocialImpactSignal, error) {
	return f.signals, nil
}

type fakeCloseFeed struct {
	repository.PriceFeedRepository
	closes []float64
	err    error
}

func (f *fakeCloseFeed) GetDailyCloses(ctx context.Context, ticker string, days int) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.closes, nil
}

func newTestAggregator(news *fakeNewsRepo, social *fakeSocialRepo, feed *fakeCloseFeed) SignalAggregator {
	cfg := config.Signals{NewsLookbackHours: 24, SocialLookbackHours: 24, MomentumDays: 5, VolatilityDays: 10}
	return NewSignalAggregator(news, social, feed, cfg, logger.NewNop())
}

func TestNewsImpact(t *testing.T) {
	t.Run("confidence-weighted mean", func(t *testing.T) {
		news := &fakeNewsRepo{signals: []entity.NewsImpactSignal{
			{ImpactScore: 0.8, Confidence: 0.5},
			{ImpactScore: 0.2, Confidence: 1.0},
		}}
		aggregator := newTestAggregator(news, &fakeSocialRepo{}, &fakeCloseFeed{})

		impact, err := aggregator.NewsImpact(context.Background(), 1, 24)
		require.NoError(t, err)
		// (0.8*0.5 + 0.2*1.0) / 1.5
		require.InDelta(t, 0.4, impact, 1e-9)
	})

	t.Run("no records means zero", func(t *testing.T) {
		aggregator := newTestAggregator(&fakeNewsRepo{}, &fakeSocialRepo{}, &fakeCloseFeed{})

		impact, err := aggregator.NewsImpact(context.Background(), 1, 24)
		require.NoError(t, err)
		require.Zero(t, impact)
	})

	t.Run("zero total confidence means zero", func(t *testing.T) {
		news := &fakeNewsRepo{signals: []entity.NewsImpactSignal{{ImpactScore: 0.9, Confidence: 0}}}
		aggregator := newTestAggregator(news, &fakeSocialRepo{}, &fakeCloseFeed{})

		impact, err := aggregator.NewsImpact(context.Background(), 1, 24)
		require.NoError(t, err)
		require.Zero(t, impact)
	})
}

func TestSocialImpact(t *testing.T) {
	t.Run("sentiment weighted by confidence and source weight", func(t *testing.T) {
		social := &fakeSocialRepo{signals: []entity.SocialImpactSignal{
			{Sentiment: 1, Confidence: 0.5, SourceWeight: 2},
			{Sentiment: -1, Confidence: 1.0, SourceWeight: 0.5},
		}}
		aggregator := newTestAggregator(&fakeNewsRepo{}, social, &fakeCloseFeed{})

		impact, err := aggregator.SocialImpact(context.Background(), 1, 24)
		require.NoError(t, err)
		// (1*1.0 + -1*0.5) / 1.5
		require.InDelta(t, 1.0/3.0, impact, 1e-9)
	})

	t.Run("no records means zero", func(t *testing.T) {
		aggregator := newTestAggregator(&fakeNewsRepo{}, &fakeSocialRepo{}, &fakeCloseFeed{})

		impact, err := aggregator.SocialImpact(context.Background(), 1, 24)
		require.NoError(t, err)
		require.Zero(t, impact)
	})
}

func TestPriceInputs(t *testing.T) {
	t.Run("steady climb has zero volatility and positive momentum", func(t *testing.T) {
		feed := &fakeCloseFeed{closes: []float64{100, 110, 121}}
		aggregator := newTestAggregator(&fakeNewsRepo{}, &fakeSocialRepo{}, feed)

		volatility, momentum, err := aggregator.PriceInputs(context.Background(), "ACME")
		require.NoError(t, err)
		require.NotNil(t, volatility)
		require.NotNil(t, momentum)
		require.InDelta(t, 0, *volatility, 1e-9)
		require.InDelta(t, 0.1, *momentum, 1e-9)
	})

	t.Run("momentum uses only the trailing window", func(t *testing.T) {
		// Flat tail after an early jump; only the last 5 returns count.
		feed := &fakeCloseFeed{closes: []float64{100, 200, 200, 200, 200, 200, 200}}
		aggregator := newTestAggregator(&fakeNewsRepo{}, &fakeSocialRepo{}, feed)

		_, momentum, err := aggregator.PriceInputs(context.Background(), "ACME")
		require.NoError(t, err)
		require.NotNil(t, momentum)
		require.InDelta(t, 0, *momentum, 1e-9)
	})

	t.Run("unavailable feed yields nil inputs", func(t *testing.T) {
		feed := &fakeCloseFeed{err: repository.ErrPriceUnavailable}
		aggregator := newTestAggregator(&fakeNewsRepo{}, &fakeSocialRepo{}, feed)

		volatility, momentum, err := aggregator.PriceInputs(context.Background(), "ACME")
		require.NoError(t, err)
		require.Nil(t, volatility)
		require.Nil(t, momentum)
	})

	t.Run("insufficient history yields nil inputs", func(t *testing.T) {
		feed := &fakeCloseFeed{closes: []float64{100, 101}}
		aggregator := newTestAggregator(&fakeNewsRepo{}, &fakeSocialRepo{}, feed)

		volatility, momentum, err := aggregator.PriceInputs(context.Background(), "ACME")
		require.NoError(t, err)
		require.Nil(t, volatility)
		require.Nil(t, momentum)
	})
}
