package pricing

import "testing"

func TestEstimate(t *testing.T) {
	tests := []struct {
		name        string
		serviceType string
		complexity  string
		urgency     string
		wantCents   int64
	}{
		{"base price medium normal", "data_analysis", ComplexityMedium, UrgencyNormal, 2500},
		{"complex urgent", "data_analysis", ComplexityComplex, UrgencyUrgent, 4875},
		{"simple discount", "content_writing", ComplexitySimple, UrgencyNormal, 1200},
		{"critical urgency", "image_generation", ComplexityMedium, UrgencyCritical, 1600},
		{"research complex", "research", ComplexityComplex, UrgencyNormal, 3000},
		{"unknown service falls back to default", "translation", ComplexityMedium, UrgencyNormal, 2000},
		{"unknown levels treated as neutral", "code_review", "impossible", "yesterday", 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := Estimate(tt.serviceType, tt.complexity, tt.urgency)
			if quote.FinalPriceCents != tt.wantCents {
				t.Errorf("final price = %d, want %d", quote.FinalPriceCents, tt.wantCents)
			}
		})
	}
}

func TestEstimateBreakdown(t *testing.T) {
	quote := Estimate("data_analysis", ComplexityComplex, UrgencyUrgent)

	if quote.Breakdown.Base != "$25.00" {
		t.Errorf("base = %q, want $25.00", quote.Breakdown.Base)
	}
	if quote.Breakdown.ComplexityAdjustment != "+50%" {
		t.Errorf("complexity adjustment = %q, want +50%%", quote.Breakdown.ComplexityAdjustment)
	}
	if quote.Breakdown.UrgencyAdjustment != "+30%" {
		t.Errorf("urgency adjustment = %q, want +30%%", quote.Breakdown.UrgencyAdjustment)
	}
	if quote.PriceFormatted != "$48.75" {
		t.Errorf("formatted price = %q, want $48.75", quote.PriceFormatted)
	}
}

func TestEstimateNormalizesUnknownLevels(t *testing.T) {
	quote := Estimate("research", "weird", "levels")
	if quote.Complexity != ComplexityMedium {
		t.Errorf("complexity = %q, want %q", quote.Complexity, ComplexityMedium)
	}
	if quote.Urgency != UrgencyNormal {
		t.Errorf("urgency = %q, want %q", quote.Urgency, UrgencyNormal)
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{2500, "$25.00"},
		{100_000, "$1000.00"},
		{-150, "$-1.50"},
	}
	for _, tt := range tests {
		if got := FormatCents(tt.cents); got != tt.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
