package constants

import (
	"strings"
)

// LanguageCode is an ISO-639-1 code accepted by the translation proxy and
// the story generator.
type LanguageCode string

const (
	English    LanguageCode = "en"
	Spanish    LanguageCode = "es"
	French     LanguageCode = "fr"
	German     LanguageCode = "de"
	Italian    LanguageCode = "it"
	Portuguese LanguageCode = "pt"
	Dutch      LanguageCode = "nl"
	Polish     LanguageCode = "pl"
	Russian    LanguageCode = "ru"
	Japanese   LanguageCode = "ja"
	Chinese    LanguageCode = "zh"
)

var allLanguages = []LanguageCode{
	English,
	Spanish,
	French,
	German,
	Italian,
	Portuguese,
	Dutch,
	Polish,
	Russian,
	Japanese,
	Chinese,
}

// LanguageCodes returns every supported code as a plain string slice.
func LanguageCodes() []string {
	result := make([]string, len(allLanguages))
	for i, code := range allLanguages {
		result[i] = string(code)
	}
	return result
}

// CanonicalizeLanguage maps a language name or code to its ISO-639-1 code.
// Unknown inputs fall back to the first two letters, lowercased, which is
// what the Linguee API expects for codes it recognizes.
func CanonicalizeLanguage(input string) (LanguageCode, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return English, false
	}

	names := map[string]LanguageCode{
		"english":    English,
		"spanish":    Spanish,
		"french":     French,
		"german":     German,
		"italian":    Italian,
		"portuguese": Portuguese,
		"dutch":      Dutch,
		"polish":     Polish,
		"russian":    Russian,
		"japanese":   Japanese,
		"chinese":    Chinese,
	}

	if code, ok := names[normalized]; ok {
		return code, true
	}

	for _, code := range allLanguages {
		if normalized == string(code) {
			return code, true
		}
	}

	if len(normalized) >= 2 {
		return LanguageCode(normalized[:2]), false
	}
	return LanguageCode(normalized), false
}

// CEFRLevels holds the reading levels a story can be generated at.
var CEFRLevels = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

// IsCEFRLevel reports whether level is one of the six CEFR levels.
func IsCEFRLevel(level string) bool {
	upper := strings.ToUpper(strings.TrimSpace(level))
	for _, l := range CEFRLevels {
		if upper == l {
			return true
		}
	}
	return false
}
