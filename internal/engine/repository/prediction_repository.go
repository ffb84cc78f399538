package repository

import (
	"context"
	"time"

	"golang-stock-predictor/internal/engine/dto"
	"golang-stock-predictor/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PredictionRepository interface {
	// Upsert creates the prediction or, when a row already exists for the
	// same (company, target date, model type), overwrites only the forecast
	// fields. Evaluation fields are never touched by an upsert.
	Upsert(ctx context.Context, prediction *entity.Prediction) error

	// FindPending returns predictions whose target date has passed and that
	// have not been evaluated yet.
	FindPending(ctx context.Context, before time.Time) ([]entity.Prediction, error)

	// MarkEvaluated writes the evaluation outcome in a single atomic update.
	// Only pending rows are touched, which makes re-runs idempotent.
	MarkEvaluated(ctx context.Context, id uint, direction entity.Direction, change float64, wasCorrect bool, evaluatedAt time.Time) error

	// FindForTargetDate returns predictions targeting the given day,
	// optionally restricted to one model.
	FindForTargetDate(ctx context.Context, targetDate time.Time, modelType *entity.ModelType) ([]entity.Prediction, error)

	// FindLatestForCompany returns the newest prediction per model type for a
	// company with a target date at or after the given day.
	FindLatestForCompany(ctx context.Context, companyID uint, since time.Time) ([]entity.Prediction, error)

	Get(ctx context.Context, param dto.GetPredictionsParam) ([]entity.Prediction, error)
	AccuracyByModel(ctx context.Context) ([]dto.ModelAccuracy, error)
	FindEvaluatedMissingChange(ctx context.Context) ([]uint, error)
}

type predictionRepository struct {
	db *gorm.DB
}

func NewPredictionRepository(db *gorm.DB) PredictionRepository {
	return &predictionRepository{db: db}
}

// forecastColumns are the fields a re-run of prediction generation is allowed
// to overwrite.
var forecastColumns = []string{
	"prediction_date",
	"predicted_direction",
	"confidence",
	"baseline_price",
	"predicted_change",
	"news_impact_score",
	"social_impact_score",
	"volatility",
	"momentum",
	"updated_at",
}

func (r *predictionRepository) Upsert(ctx context.Context, prediction *entity.Prediction) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "company_id"},
			{Name: "target_date"},
			{Name: "model_type"},
		},
		DoUpdates: clause.AssignmentColumns(forecastColumns),
	}).Create(prediction).Error
}

func (r *predictionRepository) FindPending(ctx context.Context, before time.Time) ([]entity.Prediction, error) {
	var predictions []entity.Prediction
	if err := r.db.WithContext(ctx).
		Where("target_date < ? AND was_correct IS NULL", before).
		Order("target_date asc").
		Find(&predictions).Error; err != nil {
		return nil, err
	}
	return predictions, nil
}

func (r *predictionRepository) MarkEvaluated(ctx context.Context, id uint, direction entity.Direction, change float64, wasCorrect bool, evaluatedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.Prediction{}).
		Where("id = ? AND was_correct IS NULL", id).
		Updates(map[string]interface{}{
			"actual_direction": direction,
			"actual_change":    change,
			"was_correct":      wasCorrect,
			"evaluated_at":     evaluatedAt,
		}).Error
}

func (r *predictionRepository) FindForTargetDate(ctx context.Context, targetDate time.Time, modelType *entity.ModelType) ([]entity.Prediction, error) {
	query := r.db.WithContext(ctx).Where("target_date = ?", targetDate)
	if modelType != nil {
		query = query.Where("model_type = ?", *modelType)
	}

	var predictions []entity.Prediction
	if err := query.Order("confidence desc").Find(&predictions).Error; err != nil {
		return nil, err
	}
	return predictions, nil
}

func (r *predictionRepository) FindLatestForCompany(ctx context.Context, companyID uint, since time.Time) ([]entity.Prediction, error) {
	var predictions []entity.Prediction
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND target_date >= ?", companyID, since).
		Order("target_date desc").
		Find(&predictions).Error; err != nil {
		return nil, err
	}

	// Keep only the newest prediction per model type.
	latest := make([]entity.Prediction, 0, 3)
	seen := map[entity.ModelType]bool{}
	for _, p := range predictions {
		if seen[p.ModelType] {
			continue
		}
		seen[p.ModelType] = true
		latest = append(latest, p)
	}
	return latest, nil
}

func (r *predictionRepository) Get(ctx context.Context, param dto.GetPredictionsParam) ([]entity.Prediction, error) {
	query := r.db.WithContext(ctx)

	if param.ModelType != nil {
		query = query.Where("model_type = ?", *param.ModelType)
	}
	if param.CompanyID != nil {
		query = query.Where("company_id = ?", *param.CompanyID)
	}
	if param.TargetDate != nil {
		query = query.Where("target_date = ?", *param.TargetDate)
	}
	if param.Pending != nil {
		if *param.Pending {
			query = query.Where("was_correct IS NULL")
		} else {
			query = query.Where("was_correct IS NOT NULL")
		}
	}
	if param.Limit > 0 {
		query = query.Limit(param.Limit)
	}

	var predictions []entity.Prediction
	if err := query.Order("target_date desc, confidence desc").Find(&predictions).Error; err != nil {
		return nil, err
	}
	return predictions, nil
}

func (r *predictionRepository) AccuracyByModel(ctx context.Context) ([]dto.ModelAccuracy, error) {
	var rows []dto.ModelAccuracy
	err := r.db.WithContext(ctx).Model(&entity.Prediction{}).
		Select("model_type, COUNT(*) AS evaluated, COUNT(*) FILTER (WHERE was_correct) AS correct").
		Where("was_correct IS NOT NULL").
		Group("model_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		if rows[i].Evaluated > 0 {
			rows[i].AccuracyPct = float64(rows[i].Correct) / float64(rows[i].Evaluated) * 100
		}
	}
	return rows, nil
}

func (r *predictionRepository) FindEvaluatedMissingChange(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entity.Prediction{}).
		Where("was_correct IS NOT NULL AND actual_change IS NULL").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
