package telegram

import (
	"fmt"
	"strings"

	"golang-stock-predictor/internal/entity"
)

// FormatHighConfidencePredictions formats high-confidence predictions into
// Markdown messages for Telegram, splitting so no message exceeds the API
// length limit.
func FormatHighConfidencePredictions(predictions []entity.Prediction) []string {
	if len(predictions) == 0 {
		return nil
	}

	const maxLen = 4090
	var messages []string
	var currentMessage strings.Builder
	part := 1

	startNewPart := func() {
		currentMessage.Reset()
		if part == 1 {
			currentMessage.WriteString("🔮 *High Confidence Predictions* 🔮\n\n")
		} else {
			currentMessage.WriteString(fmt.Sprintf("---*High Confidence Predictions Part %d*---\n\n", part))
		}
	}

	startNewPart()

	for _, p := range predictions {
		var entryBuilder strings.Builder

		directionIcon := "📈"
		if p.PredictedDirection == entity.DirectionDown {
			directionIcon = "📉"
		}

		entryBuilder.WriteString(fmt.Sprintf("%s *%s* (%s)\n", directionIcon, p.Ticker, p.ModelType))
		entryBuilder.WriteString(fmt.Sprintf("➡️ *Direction:* %s\n", p.PredictedDirection))
		entryBuilder.WriteString(fmt.Sprintf("🎯 *Confidence:* %.0f%%\n", p.Confidence*100))
		entryBuilder.WriteString(fmt.Sprintf("💹 *Expected Change:* %+.2f%%\n", p.PredictedChange))
		entryBuilder.WriteString(fmt.Sprintf("🗓 *Target:* %s\n\n", p.TargetDate.Format("2006-01-02")))

		entry := entryBuilder.String()
		if currentMessage.Len()+len(entry) > maxLen {
			messages = append(messages, currentMessage.String())
			part++
			startNewPart()
		}
		currentMessage.WriteString(entry)
	}

	if currentMessage.Len() > 0 {
		messages = append(messages, currentMessage.String())
	}

	return messages
}

// FormatTradeExecuted formats a single executed trade for Telegram.
func FormatTradeExecuted(trade *entity.Trade) string {
	icon := "🟢"
	if trade.Type == entity.TradeTypeSell {
		icon = "🔴"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s *%s %s*\n", icon, strings.ToUpper(string(trade.Type)), trade.Ticker))
	b.WriteString(fmt.Sprintf("📊 *Portfolio:* %s\n", trade.ModelType))
	b.WriteString(fmt.Sprintf("🔢 *Shares:* %.4f @ %.2f\n", trade.Shares, trade.Price))
	b.WriteString(fmt.Sprintf("💰 *Value:* %.2f\n", trade.TotalValue))
	if trade.Note != "" {
		b.WriteString(fmt.Sprintf("💬 %s\n", trade.Note))
	}
	return b.String()
}
