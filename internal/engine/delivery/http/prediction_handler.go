package http

import (
	"net/http"
	"time"

	"golang-stock-predictor/internal/engine/dto"
	"golang-stock-predictor/internal/engine/repository"
	"golang-stock-predictor/internal/entity"
	"golang-stock-predictor/pkg/logger"
	"golang-stock-predictor/pkg/utils"

	"github.com/labstack/echo/v4"
)

// PredictionHandler exposes the read-only prediction surface.
type PredictionHandler struct {
	predictionRepo repository.PredictionRepository
	logger         *logger.Logger
}

func NewPredictionHandler(predictionRepo repository.PredictionRepository, logger *logger.Logger) *PredictionHandler {
	return &PredictionHandler{predictionRepo: predictionRepo, logger: logger}
}

// RegisterRoutes registers the prediction routes to the Echo group.
func (h *PredictionHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetPredictions)
	g.GET("/accuracy", h.GetAccuracy)
}

// GetPredictions lists predictions, filterable by model, target date and
// pending state.
func (h *PredictionHandler) GetPredictions(c echo.Context) error {
	param := dto.GetPredictionsParam{Limit: 100}

	if raw := c.QueryParam("model"); raw != "" {
		modelType := entity.ModelType(raw)
		if !modelType.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid model type"})
		}
		param.ModelType = &modelType
	}
	if raw := c.QueryParam("target_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid target_date, expected YYYY-MM-DD"})
		}
		param.TargetDate = utils.ToPointer(utils.TruncateToDay(parsed))
	}
	if raw := c.QueryParam("pending"); raw != "" {
		param.Pending = utils.ToPointer(raw == "true")
	}

	predictions, err := h.predictionRepo.Get(c.Request().Context(), param)
	if err != nil {
		h.logger.Error("Failed to get predictions", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get predictions"})
	}

	return c.JSON(http.StatusOK, predictions)
}

// GetAccuracy returns evaluated-prediction accuracy grouped by model.
func (h *PredictionHandler) GetAccuracy(c echo.Context) error {
	accuracy, err := h.predictionRepo.AccuracyByModel(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get accuracy", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get accuracy"})
	}
	return c.JSON(http.StatusOK, accuracy)
}
