package repository

import (
	"context"
	"fmt"

	"golang-stock-predictor/internal/entity"

	"gorm.io/gorm"
)

type PortfolioRepository interface {
	// GetOrCreate returns the portfolio for the given model type, creating it
	// with the configured starting cash on first use.
	GetOrCreate(ctx context.Context, modelType entity.ModelType, startingCash float64) (*entity.Portfolio, error)

	GetByModelType(ctx context.Context, modelType entity.ModelType) (*entity.Portfolio, error)
	GetAll(ctx context.Context) ([]entity.Portfolio, error)
	FindNegativeCash(ctx context.Context) ([]uint, error)
}

type portfolioRepository struct {
	db *gorm.DB
}

func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &portfolioRepository{db: db}
}

func (r *portfolioRepository) GetOrCreate(ctx context.Context, modelType entity.ModelType, startingCash float64) (*entity.Portfolio, error) {
	if !modelType.Valid() {
		return nil, fmt.Errorf("invalid model type %q", modelType)
	}

	portfolio := entity.Portfolio{
		ModelType:    modelType,
		Name:         fmt.Sprintf("%s portfolio", modelType),
		StartingCash: startingCash,
		CurrentCash:  startingCash,
	}
	if err := r.db.WithContext(ctx).
		Where(entity.Portfolio{ModelType: modelType}).
		FirstOrCreate(&portfolio).Error; err != nil {
		return nil, err
	}
	return &portfolio, nil
}

func (r *portfolioRepository) GetByModelType(ctx context.Context, modelType entity.ModelType) (*entity.Portfolio, error) {
	var portfolio entity.Portfolio
	if err := r.db.WithContext(ctx).Where("model_type = ?", modelType).First(&portfolio).Error; err != nil {
		return nil, err
	}
	return &portfolio, nil
}

func (r *portfolioRepository) GetAll(ctx context.Context) ([]entity.Portfolio, error) {
	var portfolios []entity.Portfolio
	if err := r.db.WithContext(ctx).Order("model_type asc").Find(&portfolios).Error; err != nil {
		return nil, err
	}
	return portfolios, nil
}

func (r *portfolioRepository) FindNegativeCash(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entity.Portfolio{}).
		Where("current_cash < 0").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
