package entity

// ModelType identifies which heuristic produced a prediction or owns a portfolio.
type ModelType string

const (
	ModelTypeFundamentals ModelType = "fundamentals"
	ModelTypeHype         ModelType = "hype"
	ModelTypeCombined     ModelType = "combined"
)

// AllModelTypes returns every model type that owns a trading portfolio.
func AllModelTypes() []ModelType {
	return []ModelType{ModelTypeFundamentals, ModelTypeHype, ModelTypeCombined}
}

// Valid reports whether m is a known model type.
func (m ModelType) Valid() bool {
	switch m {
	case ModelTypeFundamentals, ModelTypeHype, ModelTypeCombined:
		return true
	}
	return false
}

func (m ModelType) String() string {
	return string(m)
}
