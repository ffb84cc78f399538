package repository

import (
	"context"

	"golang-stock-predictor/internal/entity"

	"gorm.io/gorm"
)

type CompanyRepository interface {
	GetActive(ctx context.Context) ([]entity.Company, error)
	GetByID(ctx context.Context, id uint) (*entity.Company, error)
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) GetActive(ctx context.Context) ([]entity.Company, error) {
	var companies []entity.Company
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("ticker asc").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *companyRepository) GetByID(ctx context.Context, id uint) (*entity.Company, error) {
	var company entity.Company
	if err := r.db.WithContext(ctx).First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}
