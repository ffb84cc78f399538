package entity

import (
	"time"

	"gorm.io/gorm"
)

// Company is a tracked listed company. Companies are owned by the ingestion
// side of the system; this service only reads them.
type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Ticker    string         `gorm:"type:varchar(20);unique;not null" json:"ticker"`
	Name      string         `gorm:"not null" json:"name"`
	Sector    string         `gorm:"type:varchar(100)" json:"sector,omitempty"`
	Industry  string         `gorm:"type:varchar(100)" json:"industry,omitempty"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Company) TableName() string {
	return "companies"
}
