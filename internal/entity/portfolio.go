package entity

import "time"

// Portfolio is one model's simulated trading book. One row per model type,
// created lazily on the first trade cycle.
type Portfolio struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ModelType    ModelType `gorm:"type:varchar(20);unique;not null" json:"model_type"`
	Name         string    `gorm:"not null" json:"name"`
	StartingCash float64   `gorm:"not null" json:"starting_cash"`
	CurrentCash  float64   `gorm:"not null" json:"current_cash"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Portfolio) TableName() string {
	return "portfolios"
}
