package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-stock-predictor/internal/engine/config"
	"golang-stock-predictor/internal/engine/dto"
	"golang-stock-predictor/internal/engine/repository"
	"golang-stock-predictor/internal/entity"
	"golang-stock-predictor/pkg/common"
	"golang-stock-predictor/pkg/logger"
	redisPkg "golang-stock-predictor/pkg/redis"
	"golang-stock-predictor/pkg/telegram"
	"golang-stock-predictor/pkg/utils"
)

// PredictionService generates next-day predictions for every active company.
// Generation is idempotent: re-running the same day refreshes the forecast
// fields of the existing rows.
type PredictionService interface {
	GeneratePredictions(ctx context.Context, day time.Time) *dto.BatchResult
}

type predictionService struct {
	cfg            *config.Config
	log            *logger.Logger
	companyRepo    repository.CompanyRepository
	aggregator     SignalAggregator
	priceFeed      repository.PriceFeedRepository
	predictionRepo repository.PredictionRepository
	batchRunRepo   repository.BatchRunRepository
	redisClient    *redisPkg.Client
	notifier       telegram.Notifier
}

func NewPredictionService(
	cfg *config.Config,
	log *logger.Logger,
	companyRepo repository.CompanyRepository,
	aggregator SignalAggregator,
	priceFeed repository.PriceFeedRepository,
	predictionRepo repository.PredictionRepository,
	batchRunRepo repository.BatchRunRepository,
	redisClient *redisPkg.Client,
	notifier telegram.Notifier,
) PredictionService {
	return &predictionService{
		cfg:            cfg,
		log:            log,
		companyRepo:    companyRepo,
		aggregator:     aggregator,
		priceFeed:      priceFeed,
		predictionRepo: predictionRepo,
		batchRunRepo:   batchRunRepo,
		redisClient:    redisClient,
		notifier:       notifier,
	}
}

func (s *predictionService) GeneratePredictions(ctx context.Context, day time.Time) *dto.BatchResult {
	result := dto.NewBatchResult(entity.BatchOperationGeneratePredictions)

	predictionDate := utils.TruncateToDay(day)
	// Next calendar day in UTC. Weekends and market holidays are not
	// skipped; such predictions evaluate against the nearest earlier close.
	targetDate := utils.NextDay(day)

	companies, err := s.companyRepo.GetActive(ctx)
	if err != nil {
		s.log.Error("Failed to load companies", logger.ErrorField(err))
		result.AddError(fmt.Errorf("load companies: %w", err))
		return s.finish(ctx, result)
	}

	var highConfidence []entity.Prediction
	for _, company := range companies {
		predictions, err := s.generateForCompany(ctx, company, predictionDate, targetDate, result)
		if err != nil {
			result.Add("failed")
			result.AddError(fmt.Errorf("%s: %w", company.Ticker, err))
			continue
		}
		for _, p := range predictions {
			if p.Confidence >= s.cfg.Trading.AlertConfidenceMin {
				highConfidence = append(highConfidence, p)
			}
		}
	}

	s.notifyHighConfidence(ctx, highConfidence)

	return s.finish(ctx, result)
}

func (s *predictionService) generateForCompany(ctx context.Context, company entity.Company, predictionDate, targetDate time.Time, result *dto.BatchResult) ([]entity.Prediction, error) {
	price, err := s.priceFeed.GetQuote(ctx, company.Ticker)
	if errors.Is(err, repository.ErrPriceUnavailable) {
		// No current price, no prediction. The next scheduled run retries.
		result.Add("skipped_missing_price")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("quote: %w", err)
	}

	newsImpact, err := s.aggregator.NewsImpact(ctx, company.ID, s.cfg.Signals.NewsLookbackHours)
	if err != nil {
		return nil, fmt.Errorf("news impact: %w", err)
	}
	socialImpact, err := s.aggregator.SocialImpact(ctx, company.ID, s.cfg.Signals.SocialLookbackHours)
	if err != nil {
		return nil, fmt.Errorf("social impact: %w", err)
	}
	volatility, momentum, err := s.aggregator.PriceInputs(ctx, company.Ticker)
	if err != nil {
		return nil, fmt.Errorf("price inputs: %w", err)
	}

	input := dto.ModelInput{
		NewsImpact:   newsImpact,
		SocialImpact: socialImpact,
		Volatility:   volatility,
		Momentum:     momentum,
	}

	outputs := []struct {
		model  entity.ModelType
		output dto.ModelOutput
	}{
		{entity.ModelTypeFundamentals, ScoreFundamentals(input)},
		{entity.ModelTypeHype, ScoreHype(input)},
	}

	predictions := make([]entity.Prediction, 0, len(outputs))
	for _, o := range outputs {
		prediction := entity.Prediction{
			CompanyID:          company.ID,
			Ticker:             company.Ticker,
			ModelType:          o.model,
			PredictionDate:     predictionDate,
			TargetDate:         targetDate,
			PredictedDirection: o.output.Direction,
			Confidence:         o.output.Confidence,
			BaselinePrice:      price,
			PredictedChange:    o.output.PredictedChange,
			NewsImpactScore:    newsImpact,
			SocialImpactScore:  socialImpact,
			Volatility:         volatility,
			Momentum:           momentum,
		}
		if err := s.predictionRepo.Upsert(ctx, &prediction); err != nil {
			return nil, fmt.Errorf("upsert %s prediction: %w", o.model, err)
		}
		result.Add("upserted")
		predictions = append(predictions, prediction)
	}

	return predictions, nil
}

// notifyHighConfidence forwards high-confidence predictions to the alerting
// collaborator. Fire and forget: delivery failure never fails the batch.
// Redis dedupes alerts so a re-run of the same day stays quiet.
func (s *predictionService) notifyHighConfidence(ctx context.Context, predictions []entity.Prediction) {
	if s.notifier == nil || len(predictions) == 0 {
		return
	}

	fresh := make([]entity.Prediction, 0, len(predictions))
	for _, p := range predictions {
		key := fmt.Sprintf(common.RedisKeyPredictionAlert, p.ModelType, p.Ticker, p.TargetDate.Format("2006-01-02"))
		ok, err := s.redisClient.SetNX(ctx, key, p.Confidence, 48*time.Hour).Result()
		if err != nil {
			s.log.Error("Failed to dedupe prediction alert", logger.ErrorField(err), logger.StringField("key", key))
			continue
		}
		if ok {
			fresh = append(fresh, p)
		}
	}

	for _, message := range telegram.FormatHighConfidencePredictions(fresh) {
		if err := s.notifier.SendMessage(message); err != nil {
			s.log.Error("Failed to send prediction alert", logger.ErrorField(err))
		}
	}
}

func (s *predictionService) finish(ctx context.Context, result *dto.BatchResult) *dto.BatchResult {
	result.Finish()
	if err := s.batchRunRepo.Record(ctx, result); err != nil {
		s.log.Error("Failed to record batch run", logger.ErrorField(err), logger.StringField("operation", result.Operation))
	}
	return result
}
