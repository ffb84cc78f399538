package entity

import "time"

// Position is a portfolio's open holding in one company. A position with zero
// shares is never stored; the executor deletes it instead. AvgCost only moves
// on buys (weighted average of old and new cost basis), never on sells.
type Position struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PortfolioID uint      `gorm:"not null;uniqueIndex:idx_positions_portfolio_company" json:"portfolio_id"`
	CompanyID   uint      `gorm:"not null;uniqueIndex:idx_positions_portfolio_company" json:"company_id"`
	Ticker      string    `gorm:"type:varchar(20);not null" json:"ticker"`
	Shares      float64   `gorm:"not null" json:"shares"`
	AvgCost     float64   `gorm:"not null" json:"avg_cost"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}

// CostBasis is the total purchase cost of the open shares.
func (p *Position) CostBasis() float64 {
	return p.Shares * p.AvgCost
}

// AgeDays is the whole number of days the position has been open.
func (p *Position) AgeDays(now time.Time) int {
	return int(now.Sub(p.CreatedAt).Hours() / 24)
}
