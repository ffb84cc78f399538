package repository

import (
	"context"

	"golang-stock-predictor/internal/entity"

	"gorm.io/gorm"
)

type PositionRepository interface {
	GetByPortfolio(ctx context.Context, portfolioID uint) ([]entity.Position, error)
	FindNonPositiveShares(ctx context.Context) ([]uint, error)
}

type positionRepository struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) GetByPortfolio(ctx context.Context, portfolioID uint) ([]entity.Position, error) {
	var positions []entity.Position
	if err := r.db.WithContext(ctx).
		Where("portfolio_id = ?", portfolioID).
		Order("ticker asc").
		Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *positionRepository) FindNonPositiveShares(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entity.Position{}).
		Where("shares <= 0").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
