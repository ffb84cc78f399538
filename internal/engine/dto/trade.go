package dto

import "golang-stock-predictor/internal/entity"

// Valuation tags a position price as live (fresh quote) or stale (avgCost
// fallback after a failed quote) so risk math can tell them apart.
type Valuation struct {
	Price float64 `json:"price"`
	Stale bool    `json:"stale"`
}

// TradeDecision is one buy or sell the decision engine wants executed.
type TradeDecision struct {
	Action       entity.TradeType `json:"action"`
	CompanyID    uint             `json:"company_id"`
	Ticker       string           `json:"ticker"`
	Shares       float64          `json:"shares,omitempty"` // sell only; 0 means the entire position
	Confidence   float64          `json:"confidence,omitempty"`
	PredictionID *uint            `json:"prediction_id,omitempty"`
	Reason       string           `json:"reason"`
}

// PortfolioSummary is the read-side view of one portfolio.
type PortfolioSummary struct {
	Portfolio  entity.Portfolio  `json:"portfolio"`
	Positions  []entity.Position `json:"positions"`
	TotalValue float64           `json:"total_value"`
	StaleCount int               `json:"stale_count"`
}

// DiagnosticsReport lists detected data inconsistencies. The engine never
// repairs them.
type DiagnosticsReport struct {
	EvaluatedMissingActualChange []uint `json:"evaluated_missing_actual_change"`
	NonPositivePositions         []uint `json:"non_positive_positions"`
	NegativeCashPortfolios       []uint `json:"negative_cash_portfolios"`
}

// Empty reports whether no inconsistencies were found.
func (r *DiagnosticsReport) Empty() bool {
	return len(r.EvaluatedMissingActualChange) == 0 &&
		len(r.NonPositivePositions) == 0 &&
		len(r.NegativeCashPortfolios) == 0
}
