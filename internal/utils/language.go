package utils

import (
	"regexp"
	"strings"
)

// Language codes
const (
	LangEnglish = "en"
	LangItalian = "it"
	LangHebrew  = "he"
	LangArabic  = "ar"
	LangRussian = "ru"
	LangChinese = "zh"
)

// Language represents a detected language
type Language struct {
	Code       string
	Name       string
	Confidence float64
}

// scriptRatio represents the ratio of characters in a specific script
type scriptRatio struct {
	code  string
	name  string
	ratio float64
}

var (
	hebrewPattern   = regexp.MustCompile(`[\x{0590}-\x{05FF}]`)
	arabicPattern   = regexp.MustCompile(`[\x{0600}-\x{06FF}]`)
	cyrillicPattern = regexp.MustCompile(`[\x{0400}-\x{04FF}]`)
	chinesePattern  = regexp.MustCompile(`[\x{4E00}-\x{9FFF}]`)

	// Accented vowels typical of written Italian
	italianAccentPattern = regexp.MustCompile(`[àèéìòù]`)

	// Common Italian function words and email formulas. Latin-script text is
	// classified by how many of its words appear here.
	italianMarkers = map[string]struct{}{
		"il": {}, "la": {}, "le": {}, "gli": {}, "di": {}, "che": {}, "per": {},
		"con": {}, "del": {}, "della": {}, "una": {}, "uno": {}, "sono": {},
		"non": {}, "questo": {}, "questa": {}, "vorrei": {}, "grazie": {},
		"gentile": {}, "buongiorno": {}, "salve": {}, "cordiali": {},
		"saluti": {}, "fattura": {}, "pagamento": {}, "ordine": {},
		"urgente": {}, "scadenza": {}, "perche": {}, "anche": {}, "quando": {},
	}
)

// DetectLanguage detects the language of the input text. Non-Latin scripts
// are classified by character ranges; Latin-script text is split between
// Italian and English by marker-word frequency.
func DetectLanguage(text string) Language {
	text = strings.TrimSpace(text)
	if text == "" {
		return Language{Code: LangEnglish, Name: "English", Confidence: 0.0}
	}

	if lang, ok := detectScript(text); ok {
		return lang
	}
	return detectLatin(text)
}

// detectScript classifies text dominated by a non-Latin script
func detectScript(text string) (Language, bool) {
	textRunes := float64(len([]rune(text)))

	ratios := []scriptRatio{
		{LangHebrew, "Hebrew", float64(len(hebrewPattern.FindAllString(text, -1))) / textRunes},
		{LangArabic, "Arabic", float64(len(arabicPattern.FindAllString(text, -1))) / textRunes},
		{LangRussian, "Russian", float64(len(cyrillicPattern.FindAllString(text, -1))) / textRunes},
		{LangChinese, "Chinese", float64(len(chinesePattern.FindAllString(text, -1))) / textRunes},
	}

	// Minimum 10% of characters must be in the target script
	best := scriptRatio{ratio: 0.1}
	found := false
	for _, r := range ratios {
		if r.ratio > best.ratio {
			best = r
			found = true
		}
	}
	if !found {
		return Language{}, false
	}
	return Language{Code: best.code, Name: best.name, Confidence: best.ratio}, true
}

// detectLatin splits Latin-script text between Italian and English
func detectLatin(text string) Language {
	words := tokenize(text)
	if len(words) == 0 {
		return Language{Code: LangEnglish, Name: "English", Confidence: 0.0}
	}

	markers := 0
	for _, w := range words {
		if _, ok := italianMarkers[w]; ok {
			markers++
		}
	}
	markerRatio := float64(markers) / float64(len(words))

	accents := len(italianAccentPattern.FindAllString(strings.ToLower(text), -1))
	accentRatio := float64(accents) / float64(len([]rune(text)))

	// Either signal alone is enough: short formal emails may carry markers
	// without accents, terse ones accents without markers.
	if markerRatio >= 0.12 || accentRatio >= 0.02 {
		confidence := markerRatio
		if accentRatio > confidence {
			confidence = accentRatio
		}
		return Language{Code: LangItalian, Name: "Italian", Confidence: confidence}
	}

	return Language{Code: LangEnglish, Name: "English", Confidence: 1 - markerRatio}
}

// GetLanguageInstruction returns a language instruction for the AI based on detected language
func GetLanguageInstruction(lang Language) string {
	switch lang.Code {
	case LangItalian:
		return "Please respond in Italian (Italiano)."
	case LangHebrew:
		return "Please respond in Hebrew (עברית)."
	case LangArabic:
		return "Please respond in Arabic (العربية)."
	case LangRussian:
		return "Please respond in Russian (Русский)."
	case LangChinese:
		return "Please respond in Chinese (中文)."
	default:
		return "Please respond in English."
	}
}
