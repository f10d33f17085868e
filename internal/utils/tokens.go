package utils

import (
	"regexp"
	"strings"
)

var (
	tokenPattern = regexp.MustCompile(`[a-zà-ù0-9]+`)

	// Function words carrying no signal for tone or urgency scans, in the
	// two languages the mailbox actually sees.
	stopwords = map[string]struct{}{
		"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
		"can": {}, "for": {}, "from": {}, "have": {}, "i": {}, "in": {},
		"is": {}, "it": {}, "me": {}, "my": {}, "of": {}, "on": {}, "or": {},
		"our": {}, "that": {}, "the": {}, "their": {}, "them": {}, "there": {},
		"these": {}, "they": {}, "this": {}, "those": {}, "to": {}, "was": {},
		"we": {}, "were": {}, "what": {}, "when": {}, "where": {}, "which": {},
		"who": {}, "with": {}, "you": {}, "your": {},
		"e": {}, "ed": {}, "o": {}, "ma": {}, "se": {}, "su": {},
		"da": {}, "dal": {}, "nel": {}, "nella": {}, "al": {}, "alla": {},
		"lo": {}, "un": {}, "mi": {}, "ti": {}, "si": {}, "ci": {}, "vi": {},
	}
)

// ExtractMeaningfulTokens tokenizes text, removes stopwords, and deduplicates tokens while preserving order.
func ExtractMeaningfulTokens(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	rawTokens := tokenize(text)
	filtered := filterTokens(rawTokens)
	return dedupeTokens(filtered)
}

// BuildTokenSet builds a unique token set from the provided values.
func BuildTokenSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		for _, token := range ExtractMeaningfulTokens(value) {
			set[token] = struct{}{}
		}
	}
	return set
}

func tokenize(text string) []string {
	lower := strings.ToLower(text)
	return tokenPattern.FindAllString(lower, -1)
}

func filterTokens(tokens []string) []string {
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) == 0 {
			continue
		}
		if len(token) == 1 && (token[0] < '0' || token[0] > '9') {
			continue
		}
		if _, isStopword := stopwords[token]; isStopword {
			continue
		}
		result = append(result, token)
	}
	return result
}

func dedupeTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return tokens
	}

	seen := make(map[string]struct{}, len(tokens))
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, exists := seen[token]; exists {
			continue
		}
		seen[token] = struct{}{}
		result = append(result, token)
	}
	return result
}
