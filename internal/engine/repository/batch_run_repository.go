package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"golang-stock-predictor/internal/engine/dto"
	"golang-stock-predictor/internal/entity"

	"gorm.io/gorm"
)

type BatchRunRepository interface {
	// Record persists the outcome of a completed batch operation.
	Record(ctx context.Context, result *dto.BatchResult) error
	GetRecent(ctx context.Context, limit int) ([]entity.BatchRun, error)
}

type batchRunRepository struct {
	db *gorm.DB
}

func NewBatchRunRepository(db *gorm.DB) BatchRunRepository {
	return &batchRunRepository{db: db}
}

func (r *batchRunRepository) Record(ctx context.Context, result *dto.BatchResult) error {
	counts, err := json.Marshal(result.Counts)
	if err != nil {
		return fmt.Errorf("failed to marshal batch counts: %w", err)
	}

	run := entity.BatchRun{
		Operation:   result.Operation,
		Counts:      counts,
		Errors:      result.Errors,
		StartedAt:   result.StartedAt,
		CompletedAt: sql.NullTime{Time: result.CompletedAt, Valid: !result.CompletedAt.IsZero()},
	}
	return r.db.WithContext(ctx).Create(&run).Error
}

func (r *batchRunRepository) GetRecent(ctx context.Context, limit int) ([]entity.BatchRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []entity.BatchRun
	if err := r.db.WithContext(ctx).Order("started_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
