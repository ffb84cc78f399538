package repository

import (
	"context"
	"testing"
	"time"

	"golang-stock-predictor/internal/entity"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPredictionDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&entity.Prediction{}))
	return db
}

func forecast(confidence float64, targetDate time.Time) entity.Prediction {
	return entity.Prediction{
		CompanyID:          1,
		Ticker:             "ACME",
		ModelType:          entity.ModelTypeFundamentals,
		PredictionDate:     targetDate.AddDate(0, 0, -1),
		TargetDate:         targetDate,
		PredictedDirection: entity.DirectionUp,
		Confidence:         confidence,
		BaselinePrice:      100,
		PredictedChange:    confidence * 3,
	}
}

func countPredictions(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&entity.Prediction{}).Count(&count).Error)
	return count
}

func TestPredictionUpsert(t *testing.T) {
	ctx := context.Background()
	targetDate := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	t.Run("re-generation refreshes the forecast without a second row", func(t *testing.T) {
		db := newPredictionDB(t)
		repo := NewPredictionRepository(db)

		first := forecast(0.70, targetDate)
		require.NoError(t, repo.Upsert(ctx, &first))

		second := forecast(0.80, targetDate)
		require.NoError(t, repo.Upsert(ctx, &second))

		require.EqualValues(t, 1, countPredictions(t, db))

		var stored entity.Prediction
		require.NoError(t, db.First(&stored, first.ID).Error)
		require.InDelta(t, 0.80, stored.Confidence, 1e-9)
	})

	t.Run("evaluation outcome survives re-generation", func(t *testing.T) {
		db := newPredictionDB(t)
		repo := NewPredictionRepository(db)

		prediction := forecast(0.70, targetDate)
		require.NoError(t, repo.Upsert(ctx, &prediction))
		require.NoError(t, repo.MarkEvaluated(ctx, prediction.ID, entity.DirectionUp, 2.5, true, time.Now().UTC()))

		refreshed := forecast(0.90, targetDate)
		require.NoError(t, repo.Upsert(ctx, &refreshed))

		var stored entity.Prediction
		require.NoError(t, db.First(&stored, prediction.ID).Error)
		require.InDelta(t, 0.90, stored.Confidence, 1e-9)
		require.NotNil(t, stored.WasCorrect)
		require.True(t, *stored.WasCorrect)
		require.NotNil(t, stored.ActualChange)
		require.InDelta(t, 2.5, *stored.ActualChange, 1e-9)
	})

	t.Run("a second evaluation never overwrites the first", func(t *testing.T) {
		db := newPredictionDB(t)
		repo := NewPredictionRepository(db)

		prediction := forecast(0.70, targetDate)
		require.NoError(t, repo.Upsert(ctx, &prediction))
		require.NoError(t, repo.MarkEvaluated(ctx, prediction.ID, entity.DirectionUp, 2.5, true, time.Now().UTC()))
		require.NoError(t, repo.MarkEvaluated(ctx, prediction.ID, entity.DirectionDown, -1.0, false, time.Now().UTC()))

		var stored entity.Prediction
		require.NoError(t, db.First(&stored, prediction.ID).Error)
		require.Equal(t, entity.DirectionUp, *stored.ActualDirection)
		require.True(t, *stored.WasCorrect)
		require.InDelta(t, 2.5, *stored.ActualChange, 1e-9)
	})
}
