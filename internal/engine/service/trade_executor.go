package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang-stock-predictor/internal/engine/config"
	"golang-stock-predictor/internal/engine/dto"
	"golang-stock-predictor/internal/entity"
	"golang-stock-predictor/pkg/logger"

	"gorm.io/gorm"
)

// Skip conditions for a single trade decision. None of them mutates the
// ledger; the caller logs the decision as skipped and moves on.
var (
	ErrInvalidPrice       = errors.New("live price required")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNoPosition         = errors.New("no open position")
	ErrBelowMinimumTicket = errors.New("trade value below minimum ticket")
	ErrPositionCapReached = errors.New("position cap reached")
)

// TradeExecutor applies trade decisions to a portfolio. Cash change, position
// change and the trade record are committed as one transaction; a partial
// application is never observable.
type TradeExecutor interface {
	ExecuteBuy(ctx context.Context, portfolio *entity.Portfolio, decision dto.TradeDecision, price, portfolioValue float64) (*entity.Trade, error)
	ExecuteSell(ctx context.Context, portfolio *entity.Portfolio, decision dto.TradeDecision, price float64) (*entity.Trade, error)
}

type tradeExecutor struct {
	db  *gorm.DB
	cfg config.Trading
	log *logger.Logger
}

func NewTradeExecutor(db *gorm.DB, cfg config.Trading, log *logger.Logger) TradeExecutor {
	return &tradeExecutor{db: db, cfg: cfg, log: log}
}

func (x *tradeExecutor) ExecuteBuy(ctx context.Context, portfolio *entity.Portfolio, decision dto.TradeDecision, price, portfolioValue float64) (*entity.Trade, error) {
	if price <= 0 {
		return nil, ErrInvalidPrice
	}

	positionPct := x.cfg.BasePositionPct
	if decision.Confidence >= x.cfg.HighConfThreshold {
		positionPct = x.cfg.HighConfPositionPct
	}
	tradeValue := portfolioValue * positionPct

	var trade *entity.Trade
	err := x.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var position entity.Position
		hasPosition := true
		err := tx.Where("portfolio_id = ? AND company_id = ?", portfolio.ID, decision.CompanyID).First(&position).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hasPosition = false
		} else if err != nil {
			return err
		}

		// Adding to an existing position may not push its cost basis above
		// the per-symbol cap; shrink the trade to the remaining headroom.
		if hasPosition {
			headroom := x.cfg.MaxPositionPct*portfolioValue - position.CostBasis()
			if headroom <= 0 {
				return ErrPositionCapReached
			}
			if tradeValue > headroom {
				tradeValue = headroom
			}
		}

		var current entity.Portfolio
		if err := tx.First(&current, portfolio.ID).Error; err != nil {
			return err
		}

		// Never fully drain cash.
		if maxSpend := current.CurrentCash * x.cfg.MaxCashUsePct; tradeValue > maxSpend {
			tradeValue = maxSpend
		}
		if tradeValue < x.cfg.MinTradeValue {
			return ErrBelowMinimumTicket
		}

		shares := tradeValue / price
		cost := shares * price

		res := tx.Model(&entity.Portfolio{}).
			Where("id = ? AND current_cash >= ?", portfolio.ID, cost).
			UpdateColumn("current_cash", gorm.Expr("current_cash - ?", cost))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientFunds
		}

		if hasPosition {
			newShares := position.Shares + shares
			newAvgCost := (position.CostBasis() + cost) / newShares
			if err := tx.Model(&position).Updates(map[string]interface{}{
				"shares":   newShares,
				"avg_cost": newAvgCost,
			}).Error; err != nil {
				return err
			}
		} else {
			position = entity.Position{
				PortfolioID: portfolio.ID,
				CompanyID:   decision.CompanyID,
				Ticker:      decision.Ticker,
				Shares:      shares,
				AvgCost:     price,
			}
			if err := tx.Create(&position).Error; err != nil {
				return err
			}
		}

		trade = x.buildTrade(portfolio, decision, entity.TradeTypeBuy, shares, price, cost)
		if err := tx.Create(trade).Error; err != nil {
			return err
		}

		portfolio.CurrentCash = current.CurrentCash - cost
		return nil
	})
	if err != nil {
		return nil, err
	}

	x.log.Info("Buy executed",
		logger.StringField("ticker", decision.Ticker),
		logger.StringField("model_type", string(portfolio.ModelType)),
		logger.Float64Field("shares", trade.Shares),
		logger.Float64Field("price", trade.Price),
		logger.Float64Field("total_value", trade.TotalValue),
	)
	return trade, nil
}

func (x *tradeExecutor) ExecuteSell(ctx context.Context, portfolio *entity.Portfolio, decision dto.TradeDecision, price float64) (*entity.Trade, error) {
	if price <= 0 {
		return nil, ErrInvalidPrice
	}

	var trade *entity.Trade
	err := x.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var position entity.Position
		err := tx.Where("portfolio_id = ? AND company_id = ?", portfolio.ID, decision.CompanyID).First(&position).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoPosition
		}
		if err != nil {
			return err
		}

		shares := decision.Shares
		if shares <= 0 || shares >= position.Shares {
			shares = position.Shares
		}
		proceeds := shares * price

		res := tx.Model(&entity.Portfolio{}).
			Where("id = ?", portfolio.ID).
			UpdateColumn("current_cash", gorm.Expr("current_cash + ?", proceeds))
		if res.Error != nil {
			return res.Error
		}

		if shares >= position.Shares {
			// Zero-share positions are never stored.
			if err := tx.Delete(&position).Error; err != nil {
				return err
			}
		} else {
			// AvgCost never moves on a sell.
			if err := tx.Model(&position).Update("shares", position.Shares-shares).Error; err != nil {
				return err
			}
		}

		trade = x.buildTrade(portfolio, decision, entity.TradeTypeSell, shares, price, proceeds)
		if err := tx.Create(trade).Error; err != nil {
			return err
		}

		portfolio.CurrentCash += proceeds
		return nil
	})
	if err != nil {
		return nil, err
	}

	x.log.Info("Sell executed",
		logger.StringField("ticker", decision.Ticker),
		logger.StringField("model_type", string(portfolio.ModelType)),
		logger.StringField("reason", decision.Reason),
		logger.Float64Field("shares", trade.Shares),
		logger.Float64Field("price", trade.Price),
	)
	return trade, nil
}

func (x *tradeExecutor) buildTrade(portfolio *entity.Portfolio, decision dto.TradeDecision, tradeType entity.TradeType, shares, price, totalValue float64) *entity.Trade {
	rationale, err := json.Marshal(decision)
	if err != nil {
		rationale = nil
	}
	return &entity.Trade{
		PortfolioID:  portfolio.ID,
		CompanyID:    decision.CompanyID,
		Ticker:       decision.Ticker,
		Type:         tradeType,
		Shares:       shares,
		Price:        price,
		TotalValue:   totalValue,
		ModelType:    portfolio.ModelType,
		PredictionID: decision.PredictionID,
		Note:         decision.Reason,
		Rationale:    rationale,
		ExecutedAt:   time.Now().UTC(),
	}
}
