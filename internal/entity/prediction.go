package entity

import "time"

// Direction is a predicted or realized price direction.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Prediction is one model's next-day estimate for a company. Exactly one row
// exists per (company, target date, model type); generation upserts the
// forecast fields, evaluation later fills the actual_* fields exactly once.
type Prediction struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	CompanyID          uint      `gorm:"not null;uniqueIndex:idx_predictions_company_target_model" json:"company_id"`
	Ticker             string    `gorm:"type:varchar(20);not null" json:"ticker"`
	ModelType          ModelType `gorm:"type:varchar(20);not null;uniqueIndex:idx_predictions_company_target_model" json:"model_type"`
	PredictionDate     time.Time `gorm:"not null" json:"prediction_date"`
	TargetDate         time.Time `gorm:"not null;uniqueIndex:idx_predictions_company_target_model;index" json:"target_date"`
	PredictedDirection Direction `gorm:"type:varchar(10);not null" json:"predicted_direction"`
	Confidence         float64   `gorm:"not null" json:"confidence"`
	BaselinePrice      float64   `gorm:"not null" json:"baseline_price"`
	PredictedChange    float64   `gorm:"not null" json:"predicted_change"`

	// Aggregated model inputs, kept for later inspection.
	NewsImpactScore   float64  `gorm:"not null" json:"news_impact_score"`
	SocialImpactScore float64  `gorm:"not null" json:"social_impact_score"`
	Volatility        *float64 `json:"volatility,omitempty"`
	Momentum          *float64 `json:"momentum,omitempty"`

	// Evaluation outcome. All nil while the prediction is pending.
	ActualDirection *Direction `gorm:"type:varchar(10)" json:"actual_direction,omitempty"`
	ActualChange    *float64   `json:"actual_change,omitempty"`
	WasCorrect      *bool      `json:"was_correct,omitempty"`
	EvaluatedAt     *time.Time `json:"evaluated_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Prediction) TableName() string {
	return "predictions"
}

// Evaluated reports whether the prediction has been scored against a real
// price move.
func (p *Prediction) Evaluated() bool {
	return p.WasCorrect != nil
}
