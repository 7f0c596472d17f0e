package observability

import "strconv"

const (
	tokensPerKilo       = 1000.0
	costFormatPrecision = 6
)

// ModelPricing contains pricing information per 1K tokens
type ModelPricing struct {
	InputPricePer1K  float64
	OutputPricePer1K float64
}

// PricingTable contains pricing for the producer models we allow.
var PricingTable = map[string]ModelPricing{
	"gpt-5-mini":       {InputPricePer1K: 0.0005, OutputPricePer1K: 0.0015},
	"gpt-5-nano":       {InputPricePer1K: 0.0001, OutputPricePer1K: 0.0004},
	"gpt-4o":           {InputPricePer1K: 0.005, OutputPricePer1K: 0.015},
	"gpt-4o-mini":      {InputPricePer1K: 0.00015, OutputPricePer1K: 0.0006},
	"gemini-2.5-flash": {InputPricePer1K: 0.0003, OutputPricePer1K: 0.0025},
	"gemini-2.5-pro":   {InputPricePer1K: 0.00125, OutputPricePer1K: 0.01},
}

// CalculateCost estimates the USD cost of one producer call.
func CalculateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, exists := PricingTable[model]
	if !exists {
		pricing = PricingTable["gpt-5-mini"]
	}
	inputCost := (float64(inputTokens) / tokensPerKilo) * pricing.InputPricePer1K
	outputCost := (float64(outputTokens) / tokensPerKilo) * pricing.OutputPricePer1K
	return inputCost + outputCost
}

// FormatCost formats a cost value as a USD string
func FormatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', costFormatPrecision, 64)
}
