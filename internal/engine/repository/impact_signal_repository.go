package repository

import (
	"context"
	"time"

	"golang-stock-predictor/internal/entity"

	"gorm.io/gorm"
)

type NewsImpactSignalRepository interface {
	GetWindow(ctx context.Context, companyID uint, since time.Time) ([]entity.NewsImpactSignal, error)
}

type SocialImpactSignalRepository interface {
	GetWindow(ctx context.Context, companyID uint, since time.Time) ([]entity.SocialImpactSignal, error)
}

type newsImpactSignalRepository struct {
	db *gorm.DB
}

func NewNewsImpactSignalRepository(db *gorm.DB) NewsImpactSignalRepository {
	return &newsImpactSignalRepository{db: db}
}

func (r *newsImpactSignalRepository) GetWindow(ctx context.Context, companyID uint, since time.Time) ([]entity.NewsImpactSignal, error) {
	var signals []entity.NewsImpactSignal
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND published_at >= ?", companyID, since).
		Find(&signals).Error; err != nil {
		return nil, err
	}
	return signals, nil
}

type socialImpactSignalRepository struct {
	db *gorm.DB
}

func NewSocialImpactSignalRepository(db *gorm.DB) SocialImpactSignalRepository {
	return &socialImpactSignalRepository{db: db}
}

func (r *socialImpactSignalRepository) GetWindow(ctx context.Context, companyID uint, since time.Time) ([]entity.SocialImpactSignal, error) {
	var signals []entity.SocialImpactSignal
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND posted_at >= ?", companyID, since).
		Find(&signals).Error; err != nil {
		return nil, err
	}
	return signals, nil
}
