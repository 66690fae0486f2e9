package langdetect

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

const (
	DesignFrench  = "FRENCH"
	DesignFlemish = "FLEMISH"

	CodeFrench  = "FR"
	CodeFlemish = "NL"
)

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.French, lingua.Dutch, lingua.English, lingua.German).
			WithMinimumRelativeDistance(0.1).
			Build()
	})
	return detector
}

// Detect returns the ISO 639-1 code of text, upper-cased, or "" when unsure.
func Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	lang, ok := getDetector().DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return lang.IsoCode639_1().String()
}

// DesignLanguage maps a language code to the design template language.
// FR selects the French template, anything else the Flemish one.
func DesignLanguage(code string) string {
	if strings.EqualFold(strings.TrimSpace(code), "FR") || strings.EqualFold(strings.TrimSpace(code), DesignFrench) {
		return DesignFrench
	}
	return DesignFlemish
}

// DesignCode maps a language code or template language to the two-letter
// code the design backend expects.
func DesignCode(code string) string {
	if DesignLanguage(code) == DesignFrench {
		return CodeFrench
	}
	return CodeFlemish
}

// ResolveDesignCode uses the requested code when given, else detects it from text.
func ResolveDesignCode(requested, text string) string {
	if strings.TrimSpace(requested) != "" {
		return DesignCode(requested)
	}
	return DesignCode(Detect(text))
}
