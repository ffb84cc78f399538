package service

import (
	"math"

	"golang-stock-predictor/internal/engine/dto"
	"golang-stock-predictor/internal/entity"
)

// Confidence is always reported inside these bounds, for both models.
const (
	ConfidenceFloor = 0.30
	ConfidenceCeil  = 0.95
)

// predictedChangeFactor converts confidence into a predicted percent move.
const predictedChangeFactor = 3.0

// ScoreFundamentals maps aggregated signals to a news-driven next-day
// estimate. News impact dominates, momentum contributes, volatility only
// dampens confidence.
func ScoreFundamentals(in dto.ModelInput) dto.ModelOutput {
	n := clamp(in.NewsImpact, -1, 1)

	m := 0.0
	if in.Momentum != nil {
		m = clamp(*in.Momentum*10, -1, 1)
	}

	score := 0.6*n + 0.25*m

	volPenalty := 0.0
	if in.Volatility != nil {
		volPenalty = math.Min(0.15, *in.Volatility*3)
	}

	confidence := clamp(0.95*math.Abs(score)+0.25-volPenalty, ConfidenceFloor, ConfidenceCeil)

	return buildOutput(score, confidence)
}

// ScoreHype maps aggregated signals to a social-media-driven next-day
// estimate. Social sentiment dominates, news counts at half weight.
func ScoreHype(in dto.ModelInput) dto.ModelOutput {
	s := clamp(in.SocialImpact, -1, 1)
	n := clamp(in.NewsImpact*0.5, -1, 1)

	m := 0.0
	if in.Momentum != nil {
		m = clamp(*in.Momentum*10, -1, 1)
	}

	score := 0.7*s + 0.15*n + 0.15*m
	confidence := clamp(0.85*math.Abs(score)+0.30, ConfidenceFloor, ConfidenceCeil)

	return buildOutput(score, confidence)
}

func buildOutput(score, confidence float64) dto.ModelOutput {
	// A score of exactly zero counts as up.
	direction := entity.DirectionUp
	if score < 0 {
		direction = entity.DirectionDown
	}

	predictedChange := confidence * predictedChangeFactor
	if direction == entity.DirectionDown {
		predictedChange = -predictedChange
	}

	return dto.ModelOutput{
		Direction:       direction,
		Confidence:      confidence,
		PredictedChange: predictedChange,
		Score:           score,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
