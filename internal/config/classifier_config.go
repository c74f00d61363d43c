package config

const (
	// Keyword weights
	BaseTermWeight  = 3
	TitleTermBonus  = 5
	MaxReasonTerms  = 3
	AutoEntityToken = "auto"

	// Confidence assigned when nothing matched and the fallback entity wins.
	FallbackConfidence = 50
)

// ConfidenceBand maps a minimum raw score to a confidence value.
type ConfidenceBand struct {
	MinScore   int
	Confidence int
}

// ConfidenceBands is ordered from the highest threshold to the lowest.
// A score of zero never reaches a band and gets FallbackConfidence.
var ConfidenceBands = []ConfidenceBand{
	{MinScore: 15, Confidence: 98},
	{MinScore: 10, Confidence: 95},
	{MinScore: 7, Confidence: 90},
	{MinScore: 5, Confidence: 85},
	{MinScore: 3, Confidence: 75},
	{MinScore: 1, Confidence: 65},
}
