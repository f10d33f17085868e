package analysis

import (
	"testing"

	"mailflow/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestParseAnalysis_LabeledOutput(t *testing.T) {
	raw := `Tone: Formal
Sentiment: Negative
Urgency: High
Category: Billing
Complexity: Low
Summary: Customer demands immediate payment of an overdue invoice.`

	result := ParseAnalysis(raw)

	assert.Equal(t, "formal", result.Tone)
	assert.Equal(t, "negative", result.Sentiment)
	assert.Equal(t, models.UrgencyHigh, result.Urgency)
	assert.Equal(t, "billing", result.Category)
	assert.Equal(t, "low", result.Complexity)
	assert.Equal(t, "Customer demands immediate payment of an overdue invoice.", result.Summary)
}

func TestParseAnalysis_ItalianLabels(t *testing.T) {
	raw := `Tono: informale
Urgenza: alta
Categoria: fattura
Riassunto: Il cliente chiede il pagamento della fattura.`

	result := ParseAnalysis(raw)

	assert.Equal(t, "informale", result.Tone)
	assert.Equal(t, models.UrgencyHigh, result.Urgency)
	assert.Equal(t, "fattura", result.Category)
	assert.Equal(t, "Il cliente chiede il pagamento della fattura.", result.Summary)
	// Missing fields keep their defaults
	assert.Equal(t, "neutral", result.Sentiment)
	assert.Equal(t, "medium", result.Complexity)
}

func TestParseAnalysis_Defaults(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty input", raw: ""},
		{name: "whitespace only", raw: "   \n  \n"},
		{name: "no recognized labels", raw: "The email looks fine to me.\nNothing to flag."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseAnalysis(tt.raw)

			assert.Equal(t, "neutral", result.Tone)
			assert.Equal(t, "neutral", result.Sentiment)
			assert.Equal(t, models.UrgencyNormal, result.Urgency)
			assert.Equal(t, "general", result.Category)
			assert.Equal(t, "medium", result.Complexity)
		})
	}
}

func TestParseAnalysis_FreeFormFallsBackToSummary(t *testing.T) {
	raw := "The sender is asking about order status and seems mildly impatient."

	result := ParseAnalysis(raw)
	assert.Equal(t, raw, result.Summary)
}

func TestParseAnalysis_MultiLineSummary(t *testing.T) {
	raw := `Urgency: medium
Summary: First sentence of the summary.
Second sentence continues here.
Tone: formal`

	result := ParseAnalysis(raw)
	assert.Equal(t, models.UrgencyMedium, result.Urgency)
	assert.Equal(t, "formal", result.Tone)
	assert.Equal(t, "First sentence of the summary. Second sentence continues here.", result.Summary)
}

func TestParseAnalysis_MarkdownDecoratedLabels(t *testing.T) {
	raw := `**Tone**: urgent
- Urgency: HIGH priority`

	result := ParseAnalysis(raw)
	assert.Equal(t, "urgent", result.Tone)
	assert.Equal(t, models.UrgencyHigh, result.Urgency)
}

func TestParseUrgency(t *testing.T) {
	tests := []struct {
		value    string
		expected models.Urgency
	}{
		{"high", models.UrgencyHigh},
		{"Urgent!", models.UrgencyHigh},
		{"alta", models.UrgencyHigh},
		{"medium", models.UrgencyMedium},
		{"media", models.UrgencyMedium},
		{"low", models.UrgencyLow},
		{"bassa", models.UrgencyLow},
		{"normal", models.UrgencyNormal},
		{"", models.UrgencyNormal},
		{"garbage value", models.UrgencyNormal},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseUrgency(tt.value))
		})
	}
}
