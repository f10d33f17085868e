package analysis

import (
	"strings"

	"mailflow/internal/models"
)

// Parsing defaults applied when a field is missing or unrecognized. Analysis
// is advisory, so the parser always produces a usable result.
const (
	defaultTone       = "neutral"
	defaultSentiment  = "neutral"
	defaultCategory   = "general"
	defaultComplexity = "medium"
)

// fieldLabels maps recognized line labels to canonical field names. The
// provider occasionally answers in Italian, so both label sets are accepted.
var fieldLabels = map[string]string{
	"tone":        "tone",
	"tono":        "tone",
	"sentiment":   "sentiment",
	"sentimento":  "sentiment",
	"urgency":     "urgency",
	"urgenza":     "urgency",
	"category":    "category",
	"categoria":   "category",
	"complexity":  "complexity",
	"complessita": "complexity",
	"complessità": "complexity",
	"summary":     "summary",
	"riassunto":   "summary",
	"sintesi":     "summary",
}

// ParseAnalysis extracts typed fields from loosely structured AI text output
// using case-insensitive label matching on each line. Unrecognized or missing
// fields fall back to documented defaults; the parser never fails.
func ParseAnalysis(raw string) models.AnalysisResult {
	result := models.AnalysisResult{
		Tone:       defaultTone,
		Sentiment:  defaultSentiment,
		Urgency:    models.UrgencyNormal,
		Category:   defaultCategory,
		Complexity: defaultComplexity,
	}

	var summaryLines []string
	inSummary := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		label, value, ok := splitLabeledLine(line)
		if !ok {
			// Multi-line summaries continue past the labeled line
			if inSummary {
				summaryLines = append(summaryLines, line)
			}
			continue
		}
		inSummary = false

		switch label {
		case "tone":
			if value != "" {
				result.Tone = strings.ToLower(value)
			}
		case "sentiment":
			if value != "" {
				result.Sentiment = strings.ToLower(value)
			}
		case "urgency":
			result.Urgency = parseUrgency(value)
		case "category":
			if value != "" {
				result.Category = strings.ToLower(value)
			}
		case "complexity":
			if value != "" {
				result.Complexity = strings.ToLower(value)
			}
		case "summary":
			inSummary = true
			if value != "" {
				summaryLines = append(summaryLines, value)
			}
		}
	}

	result.Summary = strings.Join(summaryLines, " ")
	if result.Summary == "" {
		// No labeled summary: fall back to the whole response, which for a
		// free-form answer usually is the summary.
		result.Summary = strings.TrimSpace(raw)
	}

	return result
}

// splitLabeledLine recognizes "Label: value" lines for known field labels
func splitLabeledLine(line string) (label, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}

	key := strings.ToLower(strings.TrimSpace(strings.Trim(line[:idx], "*#- ")))
	canonical, known := fieldLabels[key]
	if !known {
		return "", "", false
	}

	return canonical, strings.TrimSpace(line[idx+1:]), true
}

// parseUrgency maps free-text urgency values onto the closed urgency set,
// defaulting to normal because downstream consumers always need a value
func parseUrgency(value string) models.Urgency {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.Contains(v, "high") || strings.Contains(v, "alta") || strings.Contains(v, "urgent"):
		return models.UrgencyHigh
	case strings.Contains(v, "medium") || strings.Contains(v, "media"):
		return models.UrgencyMedium
	case strings.Contains(v, "low") || strings.Contains(v, "bassa"):
		return models.UrgencyLow
	default:
		return models.UrgencyNormal
	}
}
