package service

import (
	"context"
	"testing"
	"time"

	"golang-stock-predictor/internal/engine/dto"
	"golang-stock-predictor/internal/engine/repository"
	"golang-stock-predictor/internal/entity"
	"golang-stock-predictor/pkg/logger"

	"github.com/stretchr/testify/require"
)

type evaluation struct {
	direction  entity.Direction
	change     float64
	wasCorrect bool
}

type fakePredictionRepo struct {
	repository.PredictionRepository
	pending     []entity.Prediction
	evaluations map[uint]evaluation
}

func (f *fakePredictionRepo) FindPending(ctx context.Context, before time.Time) ([]entity.Prediction, error) {
	return f.pending, nil
}

func (f *fakePredictionRepo) MarkEvaluated(ctx context.Context, id uint, direction entity.Direction, change float64, wasCorrect bool, evaluatedAt time.Time) error {
	if f.evaluations == nil {
		f.evaluations = map[uint]evaluation{}
	}
	f.evaluations[id] = evaluation{direction: direction, change: change, wasCorrect: wasCorrect}
	return nil
}

type fakePriceFeed struct {
	repository.PriceFeedRepository
	quotes map[string]float64
	closes map[string]float64
}

func (f *fakePriceFeed) GetQuote(ctx context.Context, ticker string) (float64, error) {
	price, ok := f.quotes[ticker]
	if !ok {
		return 0, repository.ErrPriceUnavailable
	}
	return price, nil
}

func (f *fakePriceFeed) GetPriceOnOrBefore(ctx context.Context, ticker string, date time.Time) (float64, error) {
	price, ok := f.closes[ticker+":"+date.Format("2006-01-02")]
	if !ok {
		return 0, repository.ErrPriceUnavailable
	}
	return price, nil
}

type fakeBatchRunRepo struct {
	recorded []*dto.BatchResult
}

func (f *fakeBatchRunRepo) Record(ctx context.Context, result *dto.BatchResult) error {
	f.recorded = append(f.recorded, result)
	return nil
}

func (f *fakeBatchRunRepo) GetRecent(ctx context.Context, limit int) ([]entity.BatchRun, error) {
	return nil, nil
}

func pendingPrediction(id uint, ticker string, direction entity.Direction, targetDate time.Time) entity.Prediction {
	return entity.Prediction{
		ID:                 id,
		CompanyID:          1,
		Ticker:             ticker,
		ModelType:          entity.ModelTypeFundamentals,
		PredictionDate:     targetDate.AddDate(0, 0, -1),
		TargetDate:         targetDate,
		PredictedDirection: direction,
		Confidence:         0.70,
	}
}

func TestEvaluatePending(t *testing.T) {
	targetDate := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	baselineKey := "ACME:" + targetDate.AddDate(0, 0, -1).Format("2006-01-02")
	targetKey := "ACME:" + targetDate.Format("2006-01-02")

	t.Run("correct up prediction", func(t *testing.T) {
		predictionRepo := &fakePredictionRepo{
			pending: []entity.Prediction{pendingPrediction(1, "ACME", entity.DirectionUp, targetDate)},
		}
		priceFeed := &fakePriceFeed{closes: map[string]float64{baselineKey: 100, targetKey: 105}}
		batchRuns := &fakeBatchRunRepo{}

		svc := NewEvaluatorService(logger.NewNop(), predictionRepo, priceFeed, batchRuns)
		result := svc.EvaluatePending(context.Background())

		require.Equal(t, 1, result.Counts["evaluated"])
		require.Equal(t, 1, result.Counts["correct"])
		require.Empty(t, result.Errors)

		eval := predictionRepo.evaluations[1]
		require.Equal(t, entity.DirectionUp, eval.direction)
		require.InDelta(t, 5.0, eval.change, 1e-9)
		require.True(t, eval.wasCorrect)
	})

	t.Run("wrong direction scores incorrect", func(t *testing.T) {
		predictionRepo := &fakePredictionRepo{
			pending: []entity.Prediction{pendingPrediction(1, "ACME", entity.DirectionDown, targetDate)},
		}
		priceFeed := &fakePriceFeed{closes: map[string]float64{baselineKey: 100, targetKey: 103}}

		svc := NewEvaluatorService(logger.NewNop(), predictionRepo, priceFeed, &fakeBatchRunRepo{})
		result := svc.EvaluatePending(context.Background())

		require.Equal(t, 1, result.Counts["evaluated"])
		require.Zero(t, result.Counts["correct"])
		require.False(t, predictionRepo.evaluations[1].wasCorrect)
	})

	t.Run("flat outcome is always incorrect", func(t *testing.T) {
		predictionRepo := &fakePredictionRepo{
			pending: []entity.Prediction{pendingPrediction(1, "ACME", entity.DirectionUp, targetDate)},
		}
		priceFeed := &fakePriceFeed{closes: map[string]float64{baselineKey: 100, targetKey: 100}}

		svc := NewEvaluatorService(logger.NewNop(), predictionRepo, priceFeed, &fakeBatchRunRepo{})
		result := svc.EvaluatePending(context.Background())

		require.Equal(t, 1, result.Counts["evaluated"])
		eval := predictionRepo.evaluations[1]
		require.Equal(t, entity.DirectionFlat, eval.direction)
		require.False(t, eval.wasCorrect)
	})

	t.Run("missing price leaves the prediction pending", func(t *testing.T) {
		predictionRepo := &fakePredictionRepo{
			pending: []entity.Prediction{pendingPrediction(1, "ACME", entity.DirectionUp, targetDate)},
		}
		priceFeed := &fakePriceFeed{closes: map[string]float64{baselineKey: 100}}

		svc := NewEvaluatorService(logger.NewNop(), predictionRepo, priceFeed, &fakeBatchRunRepo{})
		result := svc.EvaluatePending(context.Background())

		require.Equal(t, 1, result.Counts["skipped_missing_price"])
		require.Zero(t, result.Counts["evaluated"])
		require.Empty(t, predictionRepo.evaluations)
	})

	t.Run("batch run is recorded", func(t *testing.T) {
		predictionRepo := &fakePredictionRepo{}
		batchRuns := &fakeBatchRunRepo{}

		svc := NewEvaluatorService(logger.NewNop(), predictionRepo, &fakePriceFeed{}, batchRuns)
		result := svc.EvaluatePending(context.Background())

		require.Len(t, batchRuns.recorded, 1)
		require.Equal(t, entity.BatchOperationEvaluatePending, batchRuns.recorded[0].Operation)
		require.False(t, result.CompletedAt.IsZero())
	})
}
