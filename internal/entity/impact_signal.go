package entity

import "time"

// NewsImpactSignal is an already-scored news item for a company. Rows are
// written by the news ingestion pipeline and are read-only here.
type NewsImpactSignal struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CompanyID   uint      `gorm:"not null;index" json:"company_id"`
	ImpactScore float64   `gorm:"not null" json:"impact_score"`
	Sentiment   string    `gorm:"type:varchar(20)" json:"sentiment"`
	Confidence  float64   `gorm:"not null" json:"confidence"`
	Source      string    `gorm:"type:varchar(100)" json:"source"`
	PublishedAt time.Time `gorm:"not null;index" json:"published_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (NewsImpactSignal) TableName() string {
	return "news_impact_signals"
}

// SocialImpactSignal is an already-scored social media post for a company.
// Sentiment is -1, 0 or 1; SourceWeight reflects how much the originating
// platform is trusted.
type SocialImpactSignal struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CompanyID    uint      `gorm:"not null;index" json:"company_id"`
	Sentiment    int       `gorm:"not null" json:"sentiment"`
	Confidence   float64   `gorm:"not null" json:"confidence"`
	SourceWeight float64   `gorm:"not null;default:1" json:"source_weight"`
	Source       string    `gorm:"type:varchar(100)" json:"source"`
	PostedAt     time.Time `gorm:"not null;index" json:"posted_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SocialImpactSignal) TableName() string {
	return "social_impact_signals"
}
