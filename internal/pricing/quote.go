package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Complexity levels accepted by Quote.
const (
	ComplexitySimple  = "simple"
	ComplexityMedium  = "medium"
	ComplexityComplex = "complex"
)

// Urgency levels accepted by Quote.
const (
	UrgencyNormal   = "normal"
	UrgencyUrgent   = "urgent"
	UrgencyCritical = "critical"
)

const defaultBasePriceCents int64 = 2000

// basePrices holds the list price per service type, in cents.
var basePrices = map[string]int64{
	"data_analysis":    2500,
	"content_writing":  1500,
	"research":         2000,
	"code_review":      1500,
	"image_generation": 1000,
}

var complexityMultipliers = map[string]decimal.Decimal{
	ComplexitySimple:  decimal.NewFromFloat(0.8),
	ComplexityMedium:  decimal.NewFromInt(1),
	ComplexityComplex: decimal.NewFromFloat(1.5),
}

var urgencyMultipliers = map[string]decimal.Decimal{
	UrgencyNormal:   decimal.NewFromInt(1),
	UrgencyUrgent:   decimal.NewFromFloat(1.3),
	UrgencyCritical: decimal.NewFromFloat(1.6),
}

// Breakdown explains how a quote was derived.
type Breakdown struct {
	Base                 string `json:"base"`
	ComplexityAdjustment string `json:"complexity_adjustment"`
	UrgencyAdjustment    string `json:"urgency_adjustment"`
}

// Quote is a price estimate for a unit of agent work.
type Quote struct {
	ServiceType     string    `json:"service_type"`
	BasePriceCents  int64     `json:"base_price"`
	Complexity      string    `json:"complexity"`
	Urgency         string    `json:"urgency"`
	FinalPriceCents int64     `json:"final_price"`
	PriceFormatted  string    `json:"price_formatted"`
	Breakdown       Breakdown `json:"breakdown"`
}

// Estimate prices a service request. Unknown service types fall back to
// the default base price; unknown complexity or urgency levels are
// treated as their neutral values, matching how clients call the quote
// tool with free-form strings.
func Estimate(serviceType, complexity, urgency string) Quote {
	base, ok := basePrices[serviceType]
	if !ok {
		base = defaultBasePriceCents
	}
	complexityMult, ok := complexityMultipliers[complexity]
	if !ok {
		complexity = ComplexityMedium
		complexityMult = complexityMultipliers[ComplexityMedium]
	}
	urgencyMult, ok := urgencyMultipliers[urgency]
	if !ok {
		urgency = UrgencyNormal
		urgencyMult = urgencyMultipliers[UrgencyNormal]
	}

	final := decimal.NewFromInt(base).Mul(complexityMult).Mul(urgencyMult).IntPart()

	return Quote{
		ServiceType:     serviceType,
		BasePriceCents:  base,
		Complexity:      complexity,
		Urgency:         urgency,
		FinalPriceCents: final,
		PriceFormatted:  FormatCents(final),
		Breakdown: Breakdown{
			Base:                 FormatCents(base),
			ComplexityAdjustment: formatAdjustment(complexityMult),
			UrgencyAdjustment:    formatAdjustment(urgencyMult),
		},
	}
}

// FormatCents renders an amount of minor currency units as dollars.
func FormatCents(cents int64) string {
	d := decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
	return "$" + d.StringFixed(2)
}

// formatAdjustment renders a multiplier as a signed percentage, e.g. 1.3 -> "+30%".
func formatAdjustment(mult decimal.Decimal) string {
	pct := mult.Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100))
	return fmt.Sprintf("%+d%%", pct.IntPart())
}
