package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMeaningfulTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple words",
			input:    "invoice 42 overdue",
			expected: []string{"invoice", "42", "overdue"},
		},
		{
			name:     "with punctuation",
			input:    "Re: Invoice, ASAP!",
			expected: []string{"re", "invoice", "asap"},
		},
		{
			name:     "stopwords removed",
			input:    "the invoice is on the way",
			expected: []string{"invoice", "way"},
		},
		{
			name:     "italian accented words",
			input:    "La scadenza è già passata",
			expected: []string{"la", "scadenza", "già", "passata"},
		},
		{
			name:     "deduplicates preserving order",
			input:    "urgent urgent reminder urgent",
			expected: []string{"urgent", "reminder"},
		},
		{
			name:     "numbers kept",
			input:    "order 7 of 12",
			expected: []string{"order", "7", "12"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractMeaningfulTokens(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExtractMeaningfulTokens_Empty(t *testing.T) {
	assert.Empty(t, ExtractMeaningfulTokens(""))
	assert.Empty(t, ExtractMeaningfulTokens("   "))
}

func TestBuildTokenSet(t *testing.T) {
	set := BuildTokenSet("Invoice overdue", "payment reminder", "")

	assert.Contains(t, set, "invoice")
	assert.Contains(t, set, "overdue")
	assert.Contains(t, set, "payment")
	assert.Contains(t, set, "reminder")
	assert.NotContains(t, set, "")
}
