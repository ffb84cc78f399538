package dto

// ChartResponse mirrors the Yahoo Finance v8 chart API payload, reduced to the
// fields this service reads.
type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *ChartError   `json:"error"`
	} `json:"chart"`
}

// ChartError is the error object embedded in a chart response.
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ChartResult is one symbol's chart data.
type ChartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

// DailyPrice is one daily close extracted from a chart response.
type DailyPrice struct {
	Timestamp int64   `json:"timestamp"`
	Close     float64 `json:"close"`
}
