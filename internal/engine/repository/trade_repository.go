package repository

import (
	"context"

	"golang-stock-predictor/internal/entity"

	"gorm.io/gorm"
)

type TradeRepository interface {
	GetByPortfolio(ctx context.Context, portfolioID uint, limit int) ([]entity.Trade, error)
}

type tradeRepository struct {
	db *gorm.DB
}

func NewTradeRepository(db *gorm.DB) TradeRepository {
	return &tradeRepository{db: db}
}

func (r *tradeRepository) GetByPortfolio(ctx context.Context, portfolioID uint, limit int) ([]entity.Trade, error) {
	query := r.db.WithContext(ctx).
		Where("portfolio_id = ?", portfolioID).
		Order("executed_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var trades []entity.Trade
	if err := query.Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}
