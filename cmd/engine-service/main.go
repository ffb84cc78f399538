package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-predictor/internal/engine/config"
	delivery "golang-stock-predictor/internal/engine/delivery/http"
	"golang-stock-predictor/internal/engine/repository"
	"golang-stock-predictor/internal/engine/service"
	"golang-stock-predictor/internal/entity"
	"golang-stock-predictor/pkg/logger"
	"golang-stock-predictor/pkg/postgres"
	"golang-stock-predictor/pkg/redis"
	"golang-stock-predictor/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var (
	configPath string
	runModel   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the prediction engine service",
	Run:   runServe,
}

var runCmd = &cobra.Command{
	Use:       "run [predictions|evaluations|trade-cycle]",
	Short:     "Runs a single batch operation and exits",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"predictions", "evaluations", "trade-cycle"},
	Run:       runOnce,
}

// deps bundles the wired services for both commands.
type deps struct {
	cfg                *config.Config
	log                *logger.Logger
	predictionService  service.PredictionService
	evaluatorService   service.EvaluatorService
	tradingService     service.TradingService
	diagnosticsService service.DiagnosticsService
	portfolioRepo      repository.PortfolioRepository
	positionRepo       repository.PositionRepository
	tradeRepo          repository.TradeRepository
	predictionRepo     repository.PredictionRepository
	batchRunRepo       repository.BatchRunRepository
	priceFeed          repository.PriceFeedRepository
	cleanup            func()
}

func buildDeps() (*deps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	notifier := telegram.NewNoopNotifier()
	if cfg.Telegram.Enabled {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telegram notifier: %w", err)
		}
	}

	companyRepo := repository.NewCompanyRepository(db.DB)
	newsRepo := repository.NewNewsImpactSignalRepository(db.DB)
	socialRepo := repository.NewSocialImpactSignalRepository(db.DB)
	predictionRepo := repository.NewPredictionRepository(db.DB)
	portfolioRepo := repository.NewPortfolioRepository(db.DB)
	positionRepo := repository.NewPositionRepository(db.DB)
	tradeRepo := repository.NewTradeRepository(db.DB)
	batchRunRepo := repository.NewBatchRunRepository(db.DB)
	priceFeed, err := repository.NewYahooFinanceRepository(cfg, appLogger, redisClient)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize price feed: %w", err)
	}

	aggregator := service.NewSignalAggregator(newsRepo, socialRepo, priceFeed, cfg.Signals, appLogger)
	decisionEngine := service.NewDecisionEngine(cfg.Trading)
	executor := service.NewTradeExecutor(db.DB, cfg.Trading, appLogger)

	predictionSvc := service.NewPredictionService(cfg, appLogger, companyRepo, aggregator, priceFeed, predictionRepo, batchRunRepo, redisClient, notifier)
	evaluatorSvc := service.NewEvaluatorService(appLogger, predictionRepo, priceFeed, batchRunRepo)
	tradingSvc := service.NewTradingService(cfg, appLogger, redisClient, portfolioRepo, positionRepo, predictionRepo, priceFeed, batchRunRepo, decisionEngine, executor, notifier)
	diagnosticsSvc := service.NewDiagnosticsService(appLogger, predictionRepo, positionRepo, portfolioRepo)

	cleanup := func() {
		if sqlDB, err := db.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = redisClient.Close()
		_ = appLogger.Sync()
	}

	return &deps{
		cfg:                cfg,
		log:                appLogger,
		predictionService:  predictionSvc,
		evaluatorService:   evaluatorSvc,
		tradingService:     tradingSvc,
		diagnosticsService: diagnosticsSvc,
		portfolioRepo:      portfolioRepo,
		positionRepo:       positionRepo,
		tradeRepo:          tradeRepo,
		predictionRepo:     predictionRepo,
		batchRunRepo:       batchRunRepo,
		priceFeed:          priceFeed,
		cleanup:            cleanup,
	}, nil
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps()
	if err != nil {
		log.Fatalf("Failed to start engine service: %v", err)
	}
	defer d.cleanup()

	d.log.Info("Starting engine service", logger.StringField("name", d.cfg.App.Name))

	// Scheduled batch operations.
	scheduler := cron.New()
	if spec := d.cfg.Scheduler.GeneratePredictionsCron; spec != "" {
		if _, err := scheduler.AddFunc(spec, func() {
			d.predictionService.GeneratePredictions(context.Background(), time.Now().UTC())
		}); err != nil {
			d.log.Fatal("Invalid generate_predictions_cron", logger.ErrorField(err))
		}
	}
	if spec := d.cfg.Scheduler.EvaluatePendingCron; spec != "" {
		if _, err := scheduler.AddFunc(spec, func() {
			d.evaluatorService.EvaluatePending(context.Background())
		}); err != nil {
			d.log.Fatal("Invalid evaluate_pending_cron", logger.ErrorField(err))
		}
	}
	if spec := d.cfg.Scheduler.RunTradeCycleCron; spec != "" {
		if _, err := scheduler.AddFunc(spec, func() {
			d.tradingService.RunTradeCycle(context.Background(), nil)
		}); err != nil {
			d.log.Fatal("Invalid run_trade_cycle_cron", logger.ErrorField(err))
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP API.
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	apiGroup := e.Group("/api/v1")
	delivery.NewPortfolioHandler(d.portfolioRepo, d.positionRepo, d.tradeRepo, d.priceFeed, d.log).RegisterRoutes(apiGroup.Group("/portfolios"))
	delivery.NewPredictionHandler(d.predictionRepo, d.log).RegisterRoutes(apiGroup.Group("/predictions"))
	delivery.NewBatchHandler(d.predictionService, d.evaluatorService, d.tradingService, d.diagnosticsService, d.batchRunRepo, d.log).RegisterRoutes(apiGroup.Group("/batches"))

	go func() {
		addr := fmt.Sprintf("%s:%d", d.cfg.API.Host, d.cfg.API.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			d.log.Fatal("HTTP server stopped", logger.ErrorField(err))
		}
	}()

	d.log.Info("Engine service started")
	<-ctx.Done()

	d.log.Info("Shutting down engine service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		d.log.Error("Failed to shut down HTTP server", logger.ErrorField(err))
	}
	d.log.Info("Engine service stopped")
}

func runOnce(cmd *cobra.Command, args []string) {
	d, err := buildDeps()
	if err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}
	defer d.cleanup()

	ctx := context.Background()
	switch args[0] {
	case "predictions":
		result := d.predictionService.GeneratePredictions(ctx, time.Now().UTC())
		d.log.Info("Prediction generation finished", logger.Field("counts", result.Counts), logger.IntField("errors", len(result.Errors)))
	case "evaluations":
		result := d.evaluatorService.EvaluatePending(ctx)
		d.log.Info("Evaluation finished", logger.Field("counts", result.Counts), logger.IntField("errors", len(result.Errors)))
	case "trade-cycle":
		var modelType *entity.ModelType
		if runModel != "" && runModel != "all" {
			parsed := entity.ModelType(runModel)
			if !parsed.Valid() {
				d.log.Fatal("Invalid model type", logger.StringField("model", runModel))
			}
			modelType = &parsed
		}
		result := d.tradingService.RunTradeCycle(ctx, modelType)
		d.log.Info("Trade cycle finished", logger.Field("counts", result.Counts), logger.IntField("errors", len(result.Errors)))
	}
}

func main() {
	rootCmd := &cobra.Command{Use: "engine-service"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-engine.yaml", "Path to the configuration file")
	runCmd.Flags().StringVarP(&runModel, "model", "m", "all", "Model type for the trade cycle (fundamentals, hype, combined or all)")

	rootCmd.AddCommand(serveCmd, runCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing engine-service CLI: %s\n", err)
		os.Exit(1)
	}
}
