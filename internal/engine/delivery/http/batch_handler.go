package http

import (
	"net/http"
	"time"

	"golang-stock-predictor/internal/engine/repository"
	"golang-stock-predictor/internal/engine/service"
	"golang-stock-predictor/internal/entity"
	"golang-stock-predictor/pkg/logger"

	"github.com/labstack/echo/v4"
)

// BatchHandler exposes the batch operations to schedulers and operators.
// Every operation is idempotent and always returns a structured result.
type BatchHandler struct {
	predictionService  service.PredictionService
	evaluatorService   service.EvaluatorService
	tradingService     service.TradingService
	diagnosticsService service.DiagnosticsService
	batchRunRepo       repository.BatchRunRepository
	logger             *logger.Logger
}

func NewBatchHandler(
	predictionService service.PredictionService,
	evaluatorService service.EvaluatorService,
	tradingService service.TradingService,
	diagnosticsService service.DiagnosticsService,
	batchRunRepo repository.BatchRunRepository,
	logger *logger.Logger,
) *BatchHandler {
	return &BatchHandler{
		predictionService:  predictionService,
		evaluatorService:   evaluatorService,
		tradingService:     tradingService,
		diagnosticsService: diagnosticsService,
		batchRunRepo:       batchRunRepo,
		logger:             logger,
	}
}

// RegisterRoutes registers the batch routes to the Echo group.
func (h *BatchHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/predictions", h.GeneratePredictions)
	g.POST("/evaluations", h.EvaluatePending)
	g.POST("/trade-cycles", h.RunTradeCycle)
	g.GET("/runs", h.GetRecentRuns)
	g.GET("/diagnostics", h.GetDiagnostics)
}

// GeneratePredictions runs prediction generation for today (or the given
// day query parameter).
func (h *BatchHandler) GeneratePredictions(c echo.Context) error {
	day := time.Now().UTC()
	if raw := c.QueryParam("day"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid day, expected YYYY-MM-DD"})
		}
		day = parsed
	}

	result := h.predictionService.GeneratePredictions(c.Request().Context(), day)
	return c.JSON(http.StatusOK, result)
}

// EvaluatePending runs the evaluator over all due pending predictions.
func (h *BatchHandler) EvaluatePending(c echo.Context) error {
	result := h.evaluatorService.EvaluatePending(c.Request().Context())
	return c.JSON(http.StatusOK, result)
}

// RunTradeCycle runs the trade cycle for one portfolio (model query
// parameter) or all of them.
func (h *BatchHandler) RunTradeCycle(c echo.Context) error {
	var modelType *entity.ModelType
	if raw := c.QueryParam("model"); raw != "" && raw != "all" {
		parsed := entity.ModelType(raw)
		if !parsed.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid model type"})
		}
		modelType = &parsed
	}

	result := h.tradingService.RunTradeCycle(c.Request().Context(), modelType)
	return c.JSON(http.StatusOK, result)
}

// GetRecentRuns lists the most recent batch run records.
func (h *BatchHandler) GetRecentRuns(c echo.Context) error {
	runs, err := h.batchRunRepo.GetRecent(c.Request().Context(), 20)
	if err != nil {
		h.logger.Error("Failed to get batch runs", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get batch runs"})
	}
	return c.JSON(http.StatusOK, runs)
}

// GetDiagnostics reports detected data inconsistencies without repairing
// them.
func (h *BatchHandler) GetDiagnostics(c echo.Context) error {
	report, err := h.diagnosticsService.Check(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to run diagnostics", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to run diagnostics"})
	}
	return c.JSON(http.StatusOK, report)
}
