package dto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBatchResultMerge(t *testing.T) {
	t.Run("counters and errors fold into the total", func(t *testing.T) {
		total := NewBatchResult("run_trade_cycle")
		total.Add("buys")

		cycle := NewBatchResult("run_trade_cycle")
		cycle.Add("buys")
		cycle.Add("buys")
		cycle.Add("sells")
		cycle.AddError(errors.New("fundamentals: quote failed"))

		total.Merge(cycle)

		require.Equal(t, 3, total.Counts["buys"])
		require.Equal(t, 1, total.Counts["sells"])
		require.Equal(t, []string{"fundamentals: quote failed"}, total.Errors)
	})

	t.Run("merging an empty result changes nothing", func(t *testing.T) {
		total := NewBatchResult("run_trade_cycle")
		total.Add("sells")

		total.Merge(NewBatchResult("run_trade_cycle"))

		require.Equal(t, map[string]int{"sells": 1}, total.Counts)
		require.Empty(t, total.Errors)
	})

	t.Run("nil error is not recorded", func(t *testing.T) {
		result := NewBatchResult("evaluate_pending")
		result.AddError(nil)

		require.Empty(t, result.Errors)
	})
}
