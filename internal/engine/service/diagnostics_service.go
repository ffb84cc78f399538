package service

import (
	"context"
	"fmt"

	"golang-stock-predictor/internal/engine/dto"
	"golang-stock-predictor/internal/engine/repository"
	"golang-stock-predictor/pkg/logger"
)

// DiagnosticsService detects data inconsistencies the normal pipeline should
// never produce. Findings are reported, never auto-repaired.
type DiagnosticsService interface {
	Check(ctx context.Context) (*dto.DiagnosticsReport, error)
}

type diagnosticsService struct {
	log            *logger.Logger
	predictionRepo repository.PredictionRepository
	positionRepo   repository.PositionRepository
	portfolioRepo  repository.PortfolioRepository
}

func NewDiagnosticsService(
	log *logger.Logger,
	predictionRepo repository.PredictionRepository,
	positionRepo repository.PositionRepository,
	portfolioRepo repository.PortfolioRepository,
) DiagnosticsService {
	return &diagnosticsService{
		log:            log,
		predictionRepo: predictionRepo,
		positionRepo:   positionRepo,
		portfolioRepo:  portfolioRepo,
	}
}

func (s *diagnosticsService) Check(ctx context.Context) (*dto.DiagnosticsReport, error) {
	report := &dto.DiagnosticsReport{}

	missing, err := s.predictionRepo.FindEvaluatedMissingChange(ctx)
	if err != nil {
		return nil, fmt.Errorf("check evaluated predictions: %w", err)
	}
	report.EvaluatedMissingActualChange = missing

	badPositions, err := s.positionRepo.FindNonPositiveShares(ctx)
	if err != nil {
		return nil, fmt.Errorf("check positions: %w", err)
	}
	report.NonPositivePositions = badPositions

	negativeCash, err := s.portfolioRepo.FindNegativeCash(ctx)
	if err != nil {
		return nil, fmt.Errorf("check portfolios: %w", err)
	}
	report.NegativeCashPortfolios = negativeCash

	if !report.Empty() {
		s.log.Warn("Data inconsistencies detected",
			logger.IntField("evaluated_missing_actual_change", len(report.EvaluatedMissingActualChange)),
			logger.IntField("non_positive_positions", len(report.NonPositivePositions)),
			logger.IntField("negative_cash_portfolios", len(report.NegativeCashPortfolios)),
		)
	}

	return report, nil
}
