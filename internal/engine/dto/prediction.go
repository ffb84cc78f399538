package dto

import (
	"time"

	"golang-stock-predictor/internal/entity"
)

// ModelInput is the aggregated signal set handed to the scoring functions.
// Volatility and Momentum are nil when there is not enough price history.
type ModelInput struct {
	NewsImpact   float64  `json:"news_impact"`
	SocialImpact float64  `json:"social_impact"`
	Volatility   *float64 `json:"volatility,omitempty"`
	Momentum     *float64 `json:"momentum,omitempty"`
}

// ModelOutput is the result of scoring one model for one company.
type ModelOutput struct {
	Direction       entity.Direction `json:"direction"`
	Confidence      float64          `json:"confidence"`
	PredictedChange float64          `json:"predicted_change"`
	Score           float64          `json:"score"`
}

// ModelAccuracy summarizes evaluated predictions for one model.
type ModelAccuracy struct {
	ModelType   entity.ModelType `json:"model_type"`
	Evaluated   int64            `json:"evaluated"`
	Correct     int64            `json:"correct"`
	AccuracyPct float64          `json:"accuracy_pct"`
}

// GetPredictionsParam filters prediction list queries.
type GetPredictionsParam struct {
	ModelType  *entity.ModelType
	CompanyID  *uint
	TargetDate *time.Time
	Pending    *bool
	Limit      int
}
