package service

import (
	"fmt"
	"sort"
	"time"

	"golang-stock-predictor/internal/engine/config"
	"golang-stock-predictor/internal/engine/dto"
	"golang-stock-predictor/internal/entity"
)

// DecisionEngine converts predictions and position state into trade decisions
// under fixed risk rules. It holds an immutable config and no other state.
type DecisionEngine struct {
	cfg config.Trading
}

func NewDecisionEngine(cfg config.Trading) *DecisionEngine {
	return &DecisionEngine{cfg: cfg}
}

// SellDecision applies the exit rules to one open position, first match wins:
// profit target, stop loss, max holding period, prediction reversal. Profit
// target and stop loss are only checked against a live quote; a stale
// avgCost fallback would always read as 0% and is excluded from that math.
// Returns nil when the position should be held.
func (e *DecisionEngine) SellDecision(position entity.Position, valuation dto.Valuation, predictions []entity.Prediction, portfolioModel entity.ModelType, now time.Time) *dto.TradeDecision {
	if !valuation.Stale && position.AvgCost > 0 {
		gain := (valuation.Price - position.AvgCost) / position.AvgCost
		if gain >= e.cfg.ProfitTargetPct {
			return e.sellAll(position, fmt.Sprintf("profit target reached (%+.2f%%)", gain*100), nil)
		}
		if gain <= -e.cfg.StopLossPct {
			return e.sellAll(position, fmt.Sprintf("stop loss triggered (%+.2f%%)", gain*100), nil)
		}
	}

	if position.AgeDays(now) >= e.cfg.MaxHoldDays {
		return e.sellAll(position, fmt.Sprintf("max holding period of %d days reached", e.cfg.MaxHoldDays), nil)
	}

	for _, p := range predictions {
		if !e.modelDrivesPortfolio(p.ModelType, portfolioModel) {
			continue
		}
		if p.PredictedDirection == entity.DirectionDown && p.Confidence >= e.cfg.ReversalConfidenceMin {
			predictionID := p.ID
			return e.sellAll(position, fmt.Sprintf("%s prediction reversed to down (confidence %.2f)", p.ModelType, p.Confidence), &predictionID)
		}
	}

	return nil
}

// BuyCandidates filters same-day predictions into a confidence-ranked buy
// list, dropping symbols already at the position cap and truncating to the
// number of open slots under the concurrent position limit.
func (e *DecisionEngine) BuyCandidates(portfolioModel entity.ModelType, predictions []entity.Prediction, positions []entity.Position, portfolioValue float64) []dto.TradeDecision {
	slots := e.cfg.MaxPositions - len(positions)
	if slots <= 0 {
		return nil
	}

	byCompany := map[uint]map[entity.ModelType]entity.Prediction{}
	for _, p := range predictions {
		if byCompany[p.CompanyID] == nil {
			byCompany[p.CompanyID] = map[entity.ModelType]entity.Prediction{}
		}
		byCompany[p.CompanyID][p.ModelType] = p
	}

	heldBasis := map[uint]float64{}
	for _, pos := range positions {
		heldBasis[pos.CompanyID] = pos.CostBasis()
	}

	var candidates []dto.TradeDecision
	for companyID, models := range byCompany {
		if heldBasis[companyID] >= e.cfg.MaxPositionPct*portfolioValue {
			continue
		}

		var decision *dto.TradeDecision
		if portfolioModel == entity.ModelTypeCombined {
			decision = e.combinedCandidate(models)
		} else {
			decision = e.singleModelCandidate(portfolioModel, models)
		}
		if decision != nil {
			candidates = append(candidates, *decision)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > slots {
		candidates = candidates[:slots]
	}
	return candidates
}

// singleModelCandidate builds a buy from one model's prediction. Agreement
// from the other model boosts confidence; the boost never applies in the
// combined flow.
func (e *DecisionEngine) singleModelCandidate(model entity.ModelType, models map[entity.ModelType]entity.Prediction) *dto.TradeDecision {
	p, ok := models[model]
	if !ok || p.PredictedDirection != entity.DirectionUp || p.Confidence < e.cfg.BuyConfidenceMin {
		return nil
	}

	confidence := p.Confidence
	reason := fmt.Sprintf("%s model predicts up (confidence %.2f)", model, p.Confidence)

	if other, ok := models[otherModel(model)]; ok && other.PredictedDirection == entity.DirectionUp {
		confidence = confidence + e.cfg.AgreementBoost
		if confidence > e.cfg.MaxConfidence {
			confidence = e.cfg.MaxConfidence
		}
		reason += fmt.Sprintf(", %s agrees", other.ModelType)
	}

	predictionID := p.ID
	return &dto.TradeDecision{
		Action:       entity.TradeTypeBuy,
		CompanyID:    p.CompanyID,
		Ticker:       p.Ticker,
		Confidence:   confidence,
		PredictionID: &predictionID,
		Reason:       reason,
	}
}

// combinedCandidate requires consensus: both underlying models predict up
// with sufficient confidence. Effective confidence is their average.
func (e *DecisionEngine) combinedCandidate(models map[entity.ModelType]entity.Prediction) *dto.TradeDecision {
	fund, okF := models[entity.ModelTypeFundamentals]
	hype, okH := models[entity.ModelTypeHype]
	if !okF || !okH {
		return nil
	}
	if fund.PredictedDirection != entity.DirectionUp || fund.Confidence < e.cfg.BuyConfidenceMin {
		return nil
	}
	if hype.PredictedDirection != entity.DirectionUp || hype.Confidence < e.cfg.BuyConfidenceMin {
		return nil
	}

	predictionID := fund.ID
	return &dto.TradeDecision{
		Action:       entity.TradeTypeBuy,
		CompanyID:    fund.CompanyID,
		Ticker:       fund.Ticker,
		Confidence:   (fund.Confidence + hype.Confidence) / 2,
		PredictionID: &predictionID,
		Reason:       fmt.Sprintf("both models predict up (fundamentals %.2f, hype %.2f)", fund.Confidence, hype.Confidence),
	}
}

func (e *DecisionEngine) sellAll(position entity.Position, reason string, predictionID *uint) *dto.TradeDecision {
	return &dto.TradeDecision{
		Action:       entity.TradeTypeSell,
		CompanyID:    position.CompanyID,
		Ticker:       position.Ticker,
		Shares:       position.Shares,
		PredictionID: predictionID,
		Reason:       reason,
	}
}

// modelDrivesPortfolio reports whether a prediction from the given model can
// trigger decisions for the given portfolio. The combined portfolio listens
// to both underlying models.
func (e *DecisionEngine) modelDrivesPortfolio(predictionModel, portfolioModel entity.ModelType) bool {
	if portfolioModel == entity.ModelTypeCombined {
		return predictionModel == entity.ModelTypeFundamentals || predictionModel == entity.ModelTypeHype
	}
	return predictionModel == portfolioModel
}

func otherModel(model entity.ModelType) entity.ModelType {
	if model == entity.ModelTypeFundamentals {
		return entity.ModelTypeHype
	}
	return entity.ModelTypeFundamentals
}
