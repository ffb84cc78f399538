package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-stock-predictor/internal/engine/dto"
	"golang-stock-predictor/internal/engine/repository"
	"golang-stock-predictor/internal/entity"
	"golang-stock-predictor/pkg/logger"
)

// EvaluatorService scores pending predictions against realized price moves.
// A prediction transitions exactly once from pending to evaluated; re-running
// the batch is safe because only pending rows are selected and updated.
type EvaluatorService interface {
	EvaluatePending(ctx context.Context) *dto.BatchResult
}

type evaluatorService struct {
	log            *logger.Logger
	predictionRepo repository.PredictionRepository
	priceFeed      repository.PriceFeedRepository
	batchRunRepo   repository.BatchRunRepository
}

func NewEvaluatorService(
	log *logger.Logger,
	predictionRepo repository.PredictionRepository,
	priceFeed repository.PriceFeedRepository,
	batchRunRepo repository.BatchRunRepository,
) EvaluatorService {
	return &evaluatorService{
		log:            log,
		predictionRepo: predictionRepo,
		priceFeed:      priceFeed,
		batchRunRepo:   batchRunRepo,
	}
}

func (s *evaluatorService) EvaluatePending(ctx context.Context) *dto.BatchResult {
	result := dto.NewBatchResult(entity.BatchOperationEvaluatePending)

	pending, err := s.predictionRepo.FindPending(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error("Failed to load pending predictions", logger.ErrorField(err))
		result.AddError(fmt.Errorf("load pending predictions: %w", err))
		return s.finish(ctx, result)
	}

	for _, prediction := range pending {
		if err := s.evaluateOne(ctx, &prediction, result); err != nil {
			result.Add("failed")
			result.AddError(fmt.Errorf("%s target %s: %w", prediction.Ticker, prediction.TargetDate.Format("2006-01-02"), err))
		}
	}

	return s.finish(ctx, result)
}

func (s *evaluatorService) evaluateOne(ctx context.Context, prediction *entity.Prediction, result *dto.BatchResult) error {
	baseline, err := s.priceFeed.GetPriceOnOrBefore(ctx, prediction.Ticker, prediction.TargetDate.AddDate(0, 0, -1))
	if errors.Is(err, repository.ErrPriceUnavailable) {
		// No price yet; the prediction stays pending and is retried next run.
		result.Add("skipped_missing_price")
		return nil
	}
	if err != nil {
		return err
	}

	target, err := s.priceFeed.GetPriceOnOrBefore(ctx, prediction.Ticker, prediction.TargetDate)
	if errors.Is(err, repository.ErrPriceUnavailable) {
		result.Add("skipped_missing_price")
		return nil
	}
	if err != nil {
		return err
	}

	if baseline <= 0 {
		result.Add("skipped_missing_price")
		return nil
	}

	changePercent := (target - baseline) / baseline * 100

	var actualDirection entity.Direction
	switch {
	case changePercent > 0:
		actualDirection = entity.DirectionUp
	case changePercent < 0:
		actualDirection = entity.DirectionDown
	default:
		actualDirection = entity.DirectionFlat
	}

	// A flat outcome always scores as incorrect, whatever was predicted.
	wasCorrect := actualDirection != entity.DirectionFlat && actualDirection == prediction.PredictedDirection

	if err := s.predictionRepo.MarkEvaluated(ctx, prediction.ID, actualDirection, changePercent, wasCorrect, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark evaluated: %w", err)
	}

	s.log.DebugContext(ctx, "Prediction evaluated",
		logger.StringField("ticker", prediction.Ticker),
		logger.StringField("model_type", string(prediction.ModelType)),
		logger.StringField("actual_direction", string(actualDirection)),
		logger.Float64Field("actual_change", changePercent),
		logger.Field("was_correct", wasCorrect),
	)

	result.Add("evaluated")
	if wasCorrect {
		result.Add("correct")
	}
	return nil
}

func (s *evaluatorService) finish(ctx context.Context, result *dto.BatchResult) *dto.BatchResult {
	result.Finish()
	if err := s.batchRunRepo.Record(ctx, result); err != nil {
		s.log.Error("Failed to record batch run", logger.ErrorField(err), logger.StringField("operation", result.Operation))
	}
	return result
}
