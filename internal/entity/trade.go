package entity

import (
	"time"

	"gorm.io/datatypes"
)

// TradeType is the side of a simulated trade.
type TradeType string

const (
	TradeTypeBuy  TradeType = "buy"
	TradeTypeSell TradeType = "sell"
)

// Trade is an immutable record of one executed simulated trade. Every cash or
// position mutation corresponds to exactly one trade row and vice versa.
type Trade struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	PortfolioID  uint           `gorm:"not null;index" json:"portfolio_id"`
	CompanyID    uint           `gorm:"not null;index" json:"company_id"`
	Ticker       string         `gorm:"type:varchar(20);not null" json:"ticker"`
	Type         TradeType      `gorm:"type:varchar(10);not null" json:"type"`
	Shares       float64        `gorm:"not null" json:"shares"`
	Price        float64        `gorm:"not null" json:"price"`
	TotalValue   float64        `gorm:"not null" json:"total_value"`
	ModelType    ModelType      `gorm:"type:varchar(20)" json:"model_type,omitempty"`
	PredictionID *uint          `json:"prediction_id,omitempty"`
	Note         string         `gorm:"type:text" json:"note,omitempty"`
	Rationale    datatypes.JSON `gorm:"type:jsonb" json:"rationale,omitempty"`
	ExecutedAt   time.Time      `gorm:"not null" json:"executed_at"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (Trade) TableName() string {
	return "trades"
}
