package http

import (
	"net/http"
	"strconv"

	"golang-stock-predictor/internal/engine/dto"
	"golang-stock-predictor/internal/engine/repository"
	"golang-stock-predictor/internal/entity"
	"golang-stock-predictor/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PortfolioHandler exposes the read-only portfolio surface.
type PortfolioHandler struct {
	portfolioRepo repository.PortfolioRepository
	positionRepo  repository.PositionRepository
	tradeRepo     repository.TradeRepository
	priceFeed     repository.PriceFeedRepository
	logger        *logger.Logger
}

func NewPortfolioHandler(
	portfolioRepo repository.PortfolioRepository,
	positionRepo repository.PositionRepository,
	tradeRepo repository.TradeRepository,
	priceFeed repository.PriceFeedRepository,
	logger *logger.Logger,
) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioRepo: portfolioRepo,
		positionRepo:  positionRepo,
		tradeRepo:     tradeRepo,
		priceFeed:     priceFeed,
		logger:        logger,
	}
}

// RegisterRoutes registers the portfolio routes to the Echo group.
func (h *PortfolioHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetAllPortfolios)
	g.GET("/:modelType", h.GetPortfolio)
	g.GET("/:modelType/trades", h.GetTrades)
}

// GetAllPortfolios returns every portfolio with its positions and current
// total value.
func (h *PortfolioHandler) GetAllPortfolios(c echo.Context) error {
	ctx := c.Request().Context()

	portfolios, err := h.portfolioRepo.GetAll(ctx)
	if err != nil {
		h.logger.Error("Failed to get portfolios", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get portfolios"})
	}

	summaries := make([]dto.PortfolioSummary, 0, len(portfolios))
	for _, portfolio := range portfolios {
		summary, err := h.summarize(c, portfolio)
		if err != nil {
			h.logger.Error("Failed to summarize portfolio", logger.ErrorField(err), logger.StringField("model_type", string(portfolio.ModelType)))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to summarize portfolio"})
		}
		summaries = append(summaries, *summary)
	}

	return c.JSON(http.StatusOK, summaries)
}

// GetPortfolio returns one model's portfolio with positions and value.
func (h *PortfolioHandler) GetPortfolio(c echo.Context) error {
	modelType := entity.ModelType(c.Param("modelType"))
	if !modelType.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid model type"})
	}

	portfolio, err := h.portfolioRepo.GetByModelType(c.Request().Context(), modelType)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Portfolio not found"})
	}

	summary, err := h.summarize(c, *portfolio)
	if err != nil {
		h.logger.Error("Failed to summarize portfolio", logger.ErrorField(err), logger.StringField("model_type", string(modelType)))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to summarize portfolio"})
	}

	return c.JSON(http.StatusOK, summary)
}

// GetTrades returns a portfolio's most recent trades.
func (h *PortfolioHandler) GetTrades(c echo.Context) error {
	modelType := entity.ModelType(c.Param("modelType"))
	if !modelType.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid model type"})
	}

	portfolio, err := h.portfolioRepo.GetByModelType(c.Request().Context(), modelType)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Portfolio not found"})
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
		}
		limit = parsed
	}

	trades, err := h.tradeRepo.GetByPortfolio(c.Request().Context(), portfolio.ID, limit)
	if err != nil {
		h.logger.Error("Failed to get trades", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get trades"})
	}

	return c.JSON(http.StatusOK, trades)
}

func (h *PortfolioHandler) summarize(c echo.Context, portfolio entity.Portfolio) (*dto.PortfolioSummary, error) {
	ctx := c.Request().Context()

	positions, err := h.positionRepo.GetByPortfolio(ctx, portfolio.ID)
	if err != nil {
		return nil, err
	}

	summary := dto.PortfolioSummary{
		Portfolio:  portfolio,
		Positions:  positions,
		TotalValue: portfolio.CurrentCash,
	}
	for _, position := range positions {
		price, err := h.priceFeed.GetQuote(ctx, position.Ticker)
		if err != nil {
			summary.StaleCount++
			summary.TotalValue += position.CostBasis()
			continue
		}
		summary.TotalValue += position.Shares * price
	}

	return &summary, nil
}
