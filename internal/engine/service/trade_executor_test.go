package service

import (
	"context"
	"testing"

	"golang-stock-predictor/internal/engine/config"
	"golang-stock-predictor/internal/engine/dto"
	"golang-stock-predictor/internal/entity"
	"golang-stock-predictor/pkg/logger"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&entity.Portfolio{}, &entity.Position{}, &entity.Trade{}))
	return db
}

func seedPortfolio(t *testing.T, db *gorm.DB, cash float64) *entity.Portfolio {
	t.Helper()
	portfolio := &entity.Portfolio{
		ModelType:    entity.ModelTypeFundamentals,
		Name:         "fundamentals portfolio",
		StartingCash: cash,
		CurrentCash:  cash,
	}
	require.NoError(t, db.Create(portfolio).Error)
	return portfolio
}

func seedPosition(t *testing.T, db *gorm.DB, portfolioID uint, shares, avgCost float64) *entity.Position {
	t.Helper()
	position := &entity.Position{
		PortfolioID: portfolioID,
		CompanyID:   42,
		Ticker:      "ACME",
		Shares:      shares,
		AvgCost:     avgCost,
	}
	require.NoError(t, db.Create(position).Error)
	return position
}

func reloadPortfolio(t *testing.T, db *gorm.DB, id uint) entity.Portfolio {
	t.Helper()
	var portfolio entity.Portfolio
	require.NoError(t, db.First(&portfolio, id).Error)
	return portfolio
}

func countTrades(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&entity.Trade{}).Count(&count).Error)
	return count
}

func ledgerBuy(confidence float64) dto.TradeDecision {
	return dto.TradeDecision{
		Action:     entity.TradeTypeBuy,
		CompanyID:  42,
		Ticker:     "ACME",
		Confidence: confidence,
		Reason:     "fundamentals model predicts up",
	}
}

func ledgerSell(shares float64) dto.TradeDecision {
	return dto.TradeDecision{
		Action:    entity.TradeTypeSell,
		CompanyID: 42,
		Ticker:    "ACME",
		Shares:    shares,
		Reason:    "profit target reached",
	}
}

func TestExecuteBuy(t *testing.T) {
	ctx := context.Background()

	t.Run("cash is debited by exactly the trade value with one trade row", func(t *testing.T) {
		db := newLedgerDB(t)
		portfolio := seedPortfolio(t, db, 100000)
		executor := NewTradeExecutor(db, config.DefaultTrading(), logger.NewNop())

		trade, err := executor.ExecuteBuy(ctx, portfolio, ledgerBuy(0.70), 50, 100000)
		require.NoError(t, err)

		require.Equal(t, entity.TradeTypeBuy, trade.Type)
		require.InDelta(t, 5000, trade.TotalValue, 1e-9)
		require.InDelta(t, 100, trade.Shares, 1e-9)

		reloaded := reloadPortfolio(t, db, portfolio.ID)
		require.InDelta(t, 100000, reloaded.CurrentCash+trade.TotalValue, 1e-9)
		require.InDelta(t, reloaded.CurrentCash, portfolio.CurrentCash, 1e-9)
		require.EqualValues(t, 1, countTrades(t, db))

		var position entity.Position
		require.NoError(t, db.Where("portfolio_id = ? AND company_id = ?", portfolio.ID, 42).First(&position).Error)
		require.InDelta(t, 100, position.Shares, 1e-9)
		require.InDelta(t, 50, position.AvgCost, 1e-9)
	})

	t.Run("high confidence uses the larger sizing", func(t *testing.T) {
		db := newLedgerDB(t)
		portfolio := seedPortfolio(t, db, 100000)
		executor := NewTradeExecutor(db, config.DefaultTrading(), logger.NewNop())

		trade, err := executor.ExecuteBuy(ctx, portfolio, ledgerBuy(0.85), 80, 100000)
		require.NoError(t, err)

		require.InDelta(t, 8000, trade.TotalValue, 1e-9)
		require.InDelta(t, 92000, reloadPortfolio(t, db, portfolio.ID).CurrentCash, 1e-9)
	})

	t.Run("adding to a position shrinks the trade to the cap headroom and reweights avgCost", func(t *testing.T) {
		db := newLedgerDB(t)
		portfolio := seedPortfolio(t, db, 100000)
		seedPosition(t, db, portfolio.ID, 140, 100)
		executor := NewTradeExecutor(db, config.DefaultTrading(), logger.NewNop())

		// Cost basis 14000 against a 15000 cap leaves 1000 of headroom.
		trade, err := executor.ExecuteBuy(ctx, portfolio, ledgerBuy(0.70), 125, 100000)
		require.NoError(t, err)

		require.InDelta(t, 1000, trade.TotalValue, 1e-9)
		require.InDelta(t, 8, trade.Shares, 1e-9)

		var position entity.Position
		require.NoError(t, db.Where("portfolio_id = ? AND company_id = ?", portfolio.ID, 42).First(&position).Error)
		require.InDelta(t, 148, position.Shares, 1e-9)
		require.InDelta(t, 15000.0/148.0, position.AvgCost, 1e-9)
		require.InDelta(t, 99000, reloadPortfolio(t, db, portfolio.ID).CurrentCash, 1e-9)
	})

	t.Run("a position at the cap rejects the buy and leaves the ledger untouched", func(t *testing.T) {
		db := newLedgerDB(t)
		portfolio := seedPortfolio(t, db, 100000)
		seedPosition(t, db, portfolio.ID, 150, 100)
		executor := NewTradeExecutor(db, config.DefaultTrading(), logger.NewNop())

		_, err := executor.ExecuteBuy(ctx, portfolio, ledgerBuy(0.70), 125, 100000)
		require.ErrorIs(t, err, ErrPositionCapReached)

		require.InDelta(t, 100000, reloadPortfolio(t, db, portfolio.ID).CurrentCash, 1e-9)
		require.EqualValues(t, 0, countTrades(t, db))
	})

	t.Run("the trade never spends more than the cash ceiling", func(t *testing.T) {
		db := newLedgerDB(t)
		portfolio := seedPortfolio(t, db, 1000)
		executor := NewTradeExecutor(db, config.DefaultTrading(), logger.NewNop())

		trade, err := executor.ExecuteBuy(ctx, portfolio, ledgerBuy(0.70), 9.5, 100000)
		require.NoError(t, err)

		require.InDelta(t, 950, trade.TotalValue, 1e-9)
		require.InDelta(t, 50, reloadPortfolio(t, db, portfolio.ID).CurrentCash, 1e-9)
	})

	t.Run("a trade shrunk below the minimum ticket is rejected", func(t *testing.T) {
		db := newLedgerDB(t)
		portfolio := seedPortfolio(t, db, 100)
		executor := NewTradeExecutor(db, config.DefaultTrading(), logger.NewNop())

		_, err := executor.ExecuteBuy(ctx, portfolio, ledgerBuy(0.70), 10, 100000)
		require.ErrorIs(t, err, ErrBelowMinimumTicket)

		require.InDelta(t, 100, reloadPortfolio(t, db, portfolio.ID).CurrentCash, 1e-9)
		require.EqualValues(t, 0, countTrades(t, db))
	})

	t.Run("a non-positive price is rejected", func(t *testing.T) {
		db := newLedgerDB(t)
		portfolio := seedPortfolio(t, db, 100000)
		executor := NewTradeExecutor(db, config.DefaultTrading(), logger.NewNop())

		_, err := executor.ExecuteBuy(ctx, portfolio, ledgerBuy(0.70), 0, 100000)
		require.ErrorIs(t, err, ErrInvalidPrice)
	})
}

func TestExecuteSell(t *testing.T) {
	ctx := context.Background()

	t.Run("full sell credits the proceeds and removes the position", func(t *testing.T) {
		db := newLedgerDB(t)
		portfolio := seedPortfolio(t, db, 50000)
		seedPosition(t, db, portfolio.ID, 100, 100)
		executor := NewTradeExecutor(db, config.DefaultTrading(), logger.NewNop())

		trade, err := executor.ExecuteSell(ctx, portfolio, ledgerSell(100), 106)
		require.NoError(t, err)

		require.Equal(t, entity.TradeTypeSell, trade.Type)
		require.InDelta(t, 10600, trade.TotalValue, 1e-9)
		require.InDelta(t, 60600, reloadPortfolio(t, db, portfolio.ID).CurrentCash, 1e-9)
		require.EqualValues(t, 1, countTrades(t, db))

		var count int64
		require.NoError(t, db.Model(&entity.Position{}).Count(&count).Error)
		require.EqualValues(t, 0, count)
	})

	t.Run("partial sell reduces shares and never moves avgCost", func(t *testing.T) {
		db := newLedgerDB(t)
		portfolio := seedPortfolio(t, db, 50000)
		seedPosition(t, db, portfolio.ID, 100, 100)
		executor := NewTradeExecutor(db, config.DefaultTrading(), logger.NewNop())

		trade, err := executor.ExecuteSell(ctx, portfolio, ledgerSell(40), 90)
		require.NoError(t, err)

		require.InDelta(t, 3600, trade.TotalValue, 1e-9)

		var position entity.Position
		require.NoError(t, db.Where("portfolio_id = ? AND company_id = ?", portfolio.ID, 42).First(&position).Error)
		require.InDelta(t, 60, position.Shares, 1e-9)
		require.InDelta(t, 100, position.AvgCost, 1e-9)
	})

	t.Run("zero requested shares sells the entire position", func(t *testing.T) {
		db := newLedgerDB(t)
		portfolio := seedPortfolio(t, db, 0)
		seedPosition(t, db, portfolio.ID, 25, 40)
		executor := NewTradeExecutor(db, config.DefaultTrading(), logger.NewNop())

		trade, err := executor.ExecuteSell(ctx, portfolio, ledgerSell(0), 40)
		require.NoError(t, err)

		require.InDelta(t, 25, trade.Shares, 1e-9)

		var count int64
		require.NoError(t, db.Model(&entity.Position{}).Count(&count).Error)
		require.EqualValues(t, 0, count)
	})

	t.Run("selling without a position is rejected", func(t *testing.T) {
		db := newLedgerDB(t)
		portfolio := seedPortfolio(t, db, 50000)
		executor := NewTradeExecutor(db, config.DefaultTrading(), logger.NewNop())

		_, err := executor.ExecuteSell(ctx, portfolio, ledgerSell(10), 100)
		require.ErrorIs(t, err, ErrNoPosition)
		require.EqualValues(t, 0, countTrades(t, db))
	})
}
