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

// TradingService drives one full buy/sell cycle per portfolio. Portfolios are
// independent and may run concurrently with each other, but cycles against
// the same portfolio are serialized through a Redis lock so two runs never
// read stale cash or position state.
type TradingService interface {
	// RunTradeCycle runs the cycle for one model's portfolio, or for all
	// portfolios when modelType is nil.
	RunTradeCycle(ctx context.Context, modelType *entity.ModelType) *dto.BatchResult
}

type tradingService struct {
	cfg            *config.Config
	log            *logger.Logger
	redisClient    *redisPkg.Client
	portfolioRepo  repository.PortfolioRepository
	positionRepo   repository.PositionRepository
	predictionRepo repository.PredictionRepository
	priceFeed      repository.PriceFeedRepository
	batchRunRepo   repository.BatchRunRepository
	decisionEngine *DecisionEngine
	executor       TradeExecutor
	notifier       telegram.Notifier
}

func NewTradingService(
	cfg *config.Config,
	log *logger.Logger,
	redisClient *redisPkg.Client,
	portfolioRepo repository.PortfolioRepository,
	positionRepo repository.PositionRepository,
	predictionRepo repository.PredictionRepository,
	priceFeed repository.PriceFeedRepository,
	batchRunRepo repository.BatchRunRepository,
	decisionEngine *DecisionEngine,
	executor TradeExecutor,
	notifier telegram.Notifier,
) TradingService {
	return &tradingService{
		cfg:            cfg,
		log:            log,
		redisClient:    redisClient,
		portfolioRepo:  portfolioRepo,
		positionRepo:   positionRepo,
		predictionRepo: predictionRepo,
		priceFeed:      priceFeed,
		batchRunRepo:   batchRunRepo,
		decisionEngine: decisionEngine,
		executor:       executor,
		notifier:       notifier,
	}
}

func (s *tradingService) RunTradeCycle(ctx context.Context, modelType *entity.ModelType) *dto.BatchResult {
	result := dto.NewBatchResult(entity.BatchOperationRunTradeCycle)

	models := entity.AllModelTypes()
	if modelType != nil {
		models = []entity.ModelType{*modelType}
	}

	// One result per portfolio cycle, folded into the batch total.
	for _, model := range models {
		cycle := dto.NewBatchResult(result.Operation)
		if err := s.runCycleForModel(ctx, model, cycle); err != nil {
			cycle.AddError(fmt.Errorf("%s: %w", model, err))
		}
		result.Merge(cycle)
	}

	result.Finish()
	if err := s.batchRunRepo.Record(ctx, result); err != nil {
		s.log.Error("Failed to record batch run", logger.ErrorField(err), logger.StringField("operation", result.Operation))
	}
	return result
}

func (s *tradingService) runCycleForModel(ctx context.Context, model entity.ModelType, result *dto.BatchResult) error {
	unlock, err := s.acquireLock(ctx, model)
	if err != nil {
		return err
	}
	defer unlock()

	portfolio, err := s.portfolioRepo.GetOrCreate(ctx, model, s.cfg.Trading.StartingCash)
	if err != nil {
		return fmt.Errorf("load portfolio: %w", err)
	}

	now := time.Now().UTC()
	day := utils.TruncateToDay(now)

	positions, err := s.positionRepo.GetByPortfolio(ctx, portfolio.ID)
	if err != nil {
		return fmt.Errorf("load positions: %w", err)
	}

	valuations, portfolioValue := s.valuePortfolio(ctx, portfolio, positions, result)

	s.log.DebugContext(ctx, "Starting trade cycle",
		logger.StringField("model_type", string(model)),
		logger.Float64Field("portfolio_value", portfolioValue),
		logger.IntField("positions", len(positions)),
	)

	// Sell pass.
	for _, position := range positions {
		predictions, err := s.predictionRepo.FindLatestForCompany(ctx, position.CompanyID, day)
		if err != nil {
			result.AddError(fmt.Errorf("%s predictions for %s: %w", model, position.Ticker, err))
			continue
		}

		decision := s.decisionEngine.SellDecision(position, valuations[position.CompanyID], predictions, model, now)
		if decision == nil {
			continue
		}
		s.executeSell(ctx, portfolio, *decision, valuations[position.CompanyID], result)
	}

	// Recompute cash, open slots and value before buying.
	portfolio, err = s.portfolioRepo.GetByModelType(ctx, model)
	if err != nil {
		return fmt.Errorf("reload portfolio: %w", err)
	}
	positions, err = s.positionRepo.GetByPortfolio(ctx, portfolio.ID)
	if err != nil {
		return fmt.Errorf("reload positions: %w", err)
	}
	_, portfolioValue = s.valuePortfolio(ctx, portfolio, positions, result)

	// Buy pass: same-day predictions target the next calendar day. All
	// models are loaded so agreement and consensus rules can see both.
	predictions, err := s.predictionRepo.FindForTargetDate(ctx, utils.NextDay(now), nil)
	if err != nil {
		return fmt.Errorf("load predictions: %w", err)
	}

	for _, decision := range s.decisionEngine.BuyCandidates(model, predictions, positions, portfolioValue) {
		price, err := s.priceFeed.GetQuote(ctx, decision.Ticker)
		if errors.Is(err, repository.ErrPriceUnavailable) {
			result.Add("skipped_missing_price")
			continue
		}
		if err != nil {
			result.AddError(fmt.Errorf("%s quote for %s: %w", model, decision.Ticker, err))
			continue
		}

		trade, err := s.executor.ExecuteBuy(ctx, portfolio, decision, price, portfolioValue)
		if s.isSkip(err) {
			s.log.DebugContext(ctx, "Buy decision skipped",
				logger.StringField("model_type", string(model)),
				logger.StringField("ticker", decision.Ticker),
				logger.ErrorField(err),
			)
			result.Add("skipped_trades")
			continue
		}
		if err != nil {
			result.AddError(fmt.Errorf("%s buy %s: %w", model, decision.Ticker, err))
			continue
		}
		result.Add("buys")
		s.notifyTrade(trade)
	}

	return nil
}

func (s *tradingService) executeSell(ctx context.Context, portfolio *entity.Portfolio, decision dto.TradeDecision, valuation dto.Valuation, result *dto.BatchResult) {
	// Selling needs a live price; a stale valuation means the quote already
	// failed this cycle, so skip and let the next cycle retry.
	if valuation.Stale {
		result.Add("skipped_missing_price")
		return
	}

	trade, err := s.executor.ExecuteSell(ctx, portfolio, decision, valuation.Price)
	if s.isSkip(err) {
		result.Add("skipped_trades")
		return
	}
	if err != nil {
		result.AddError(fmt.Errorf("%s sell %s: %w", portfolio.ModelType, decision.Ticker, err))
		return
	}
	result.Add("sells")
	s.notifyTrade(trade)
}

// valuePortfolio computes total value from live quotes, tagging positions
// whose quote failed as stale and valuing them at avgCost.
func (s *tradingService) valuePortfolio(ctx context.Context, portfolio *entity.Portfolio, positions []entity.Position, result *dto.BatchResult) (map[uint]dto.Valuation, float64) {
	valuations := make(map[uint]dto.Valuation, len(positions))
	total := portfolio.CurrentCash

	for _, position := range positions {
		price, err := s.priceFeed.GetQuote(ctx, position.Ticker)
		if err != nil {
			s.log.DebugContext(ctx, "Quote failed, valuing position at cost",
				logger.StringField("ticker", position.Ticker),
				logger.ErrorField(err),
			)
			result.Add("stale_valuations")
			valuations[position.CompanyID] = dto.Valuation{Price: position.AvgCost, Stale: true}
			total += position.CostBasis()
			continue
		}
		valuations[position.CompanyID] = dto.Valuation{Price: price, Stale: false}
		total += position.Shares * price
	}

	return valuations, total
}

func (s *tradingService) acquireLock(ctx context.Context, model entity.ModelType) (func(), error) {
	lockDuration, err := time.ParseDuration(s.cfg.Trading.PortfolioLockDuration)
	if err != nil {
		lockDuration = 5 * time.Minute
	}

	key := fmt.Sprintf(common.RedisKeyPortfolioLock, model)
	ok, err := s.redisClient.SetNX(ctx, key, time.Now().UTC().Unix(), lockDuration).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire portfolio lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("trade cycle already running for %s", model)
	}

	return func() {
		if err := s.redisClient.Del(context.Background(), key).Err(); err != nil {
			s.log.Error("Failed to release portfolio lock", logger.ErrorField(err), logger.StringField("key", key))
		}
	}, nil
}

func (s *tradingService) isSkip(err error) bool {
	return errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrNoPosition) ||
		errors.Is(err, ErrBelowMinimumTicket) ||
		errors.Is(err, ErrPositionCapReached)
}

func (s *tradingService) notifyTrade(trade *entity.Trade) {
	if s.notifier == nil || trade == nil {
		return
	}
	if err := s.notifier.SendMessage(telegram.FormatTradeExecuted(trade)); err != nil {
		s.log.Error("Failed to send trade notification", logger.ErrorField(err), logger.StringField("ticker", trade.Ticker))
	}
}
