package service

import (
	"testing"

	"golang-stock-predictor/internal/engine/dto"
	"golang-stock-predictor/internal/entity"
	"golang-stock-predictor/pkg/utils"

	"github.com/stretchr/testify/require"
)

func TestScoreFundamentals(t *testing.T) {
	t.Run("positive news only", func(t *testing.T) {
		out := ScoreFundamentals(dto.ModelInput{NewsImpact: 0.5})

		require.InDelta(t, 0.30, out.Score, 1e-9)
		require.InDelta(t, 0.535, out.Confidence, 1e-9)
		require.Equal(t, entity.DirectionUp, out.Direction)
		require.InDelta(t, 1.605, out.PredictedChange, 1e-9)
	})

	t.Run("momentum contributes scaled and clamped", func(t *testing.T) {
		// momentum 0.05 scales to 0.5; 0.6*0.5 + 0.25*0.5 = 0.425
		out := ScoreFundamentals(dto.ModelInput{NewsImpact: 0.5, Momentum: utils.ToPointer(0.05)})
		require.InDelta(t, 0.425, out.Score, 1e-9)

		// momentum 0.5 scales past 1 and clamps to 1
		out = ScoreFundamentals(dto.ModelInput{NewsImpact: 0.5, Momentum: utils.ToPointer(0.5)})
		require.InDelta(t, 0.55, out.Score, 1e-9)
	})

	t.Run("volatility dampens confidence", func(t *testing.T) {
		calm := ScoreFundamentals(dto.ModelInput{NewsImpact: 0.5, Volatility: utils.ToPointer(0.01)})
		wild := ScoreFundamentals(dto.ModelInput{NewsImpact: 0.5, Volatility: utils.ToPointer(0.10)})

		require.InDelta(t, 0.505, calm.Confidence, 1e-9)
		// penalty caps at 0.15
		require.InDelta(t, 0.385, wild.Confidence, 1e-9)
		require.Equal(t, calm.Direction, wild.Direction)
	})

	t.Run("negative score predicts down with negative change", func(t *testing.T) {
		out := ScoreFundamentals(dto.ModelInput{NewsImpact: -0.8})

		require.Equal(t, entity.DirectionDown, out.Direction)
		require.Negative(t, out.Score)
		require.Negative(t, out.PredictedChange)
		require.Positive(t, out.Confidence)
	})

	t.Run("zero score predicts up", func(t *testing.T) {
		out := ScoreFundamentals(dto.ModelInput{})

		require.Zero(t, out.Score)
		require.Equal(t, entity.DirectionUp, out.Direction)
		require.InDelta(t, ConfidenceFloor, out.Confidence, 1e-9)
	})

	t.Run("confidence stays within bounds", func(t *testing.T) {
		low := ScoreFundamentals(dto.ModelInput{NewsImpact: 0.01, Volatility: utils.ToPointer(1.0)})
		high := ScoreFundamentals(dto.ModelInput{NewsImpact: 1, Momentum: utils.ToPointer(1.0)})

		require.InDelta(t, ConfidenceFloor, low.Confidence, 1e-9)
		require.InDelta(t, ConfidenceCeil, high.Confidence, 1e-9)
	})

	t.Run("inputs beyond the unit range are clamped", func(t *testing.T) {
		out := ScoreFundamentals(dto.ModelInput{NewsImpact: 5})
		capped := ScoreFundamentals(dto.ModelInput{NewsImpact: 1})

		require.Equal(t, capped.Score, out.Score)
	})
}

func TestScoreHype(t *testing.T) {
	t.Run("positive social only", func(t *testing.T) {
		out := ScoreHype(dto.ModelInput{SocialImpact: 0.8})

		require.InDelta(t, 0.56, out.Score, 1e-9)
		require.InDelta(t, 0.776, out.Confidence, 1e-9)
		require.Equal(t, entity.DirectionUp, out.Direction)
		require.InDelta(t, 2.328, out.PredictedChange, 1e-9)
	})

	t.Run("news counts at half weight", func(t *testing.T) {
		out := ScoreHype(dto.ModelInput{NewsImpact: 1})

		// 0.15 * (1 * 0.5)
		require.InDelta(t, 0.075, out.Score, 1e-9)
	})

	t.Run("negative social predicts down", func(t *testing.T) {
		out := ScoreHype(dto.ModelInput{SocialImpact: -0.9})

		require.Equal(t, entity.DirectionDown, out.Direction)
		require.Negative(t, out.PredictedChange)
	})

	t.Run("zero score predicts up at the floor", func(t *testing.T) {
		out := ScoreHype(dto.ModelInput{})

		require.Equal(t, entity.DirectionUp, out.Direction)
		require.InDelta(t, ConfidenceFloor, out.Confidence, 1e-9)
	})

	t.Run("confidence stays within bounds", func(t *testing.T) {
		high := ScoreHype(dto.ModelInput{SocialImpact: 1, NewsImpact: 1, Momentum: utils.ToPointer(1.0)})

		require.LessOrEqual(t, high.Confidence, ConfidenceCeil)
		require.GreaterOrEqual(t, high.Confidence, ConfidenceFloor)
	})

	t.Run("stronger sentiment means higher confidence", func(t *testing.T) {
		weak := ScoreHype(dto.ModelInput{SocialImpact: 0.3})
		strong := ScoreHype(dto.ModelInput{SocialImpact: 0.9})

		require.Greater(t, strong.Confidence, weak.Confidence)
	})
}
