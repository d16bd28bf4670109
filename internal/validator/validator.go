// Package validator sanity-checks translation output: it detects the
// language the text is actually written in and compares it against the
// requested target.
package validator

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// Texts shorter than this carry too little signal for reliable detection
// and are not checked.
const minCheckRunes = 20

type Validator struct {
	detector lingua.LanguageDetector
}

func New() *Validator {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Validator{detector: detector}
}

func (v *Validator) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	return v.detector.DetectLanguageOf(text)
}

// DetectISO returns the ISO 639-1 code of the detected language.
func (v *Validator) DetectISO(text string) (string, bool) {
	lang, ok := v.Detect(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}

// Matches reports whether text appears to be written in targetLanguage.
// Regional codes like EN-US are compared by their ISO prefix. Short texts
// and detection failures report true: absence of evidence is not treated
// as a mismatch.
func (v *Validator) Matches(text, targetLanguage string) bool {
	if len([]rune(text)) < minCheckRunes {
		return true
	}

	detected, ok := v.DetectISO(text)
	if !ok {
		return true
	}

	target := strings.ToUpper(targetLanguage)
	if i := strings.IndexByte(target, '-'); i > 0 {
		target = target[:i]
	}
	// Common aliases that are not ISO 639-1.
	switch target {
	case "JP":
		target = "JA"
	case "KR":
		target = "KO"
	}

	return strings.EqualFold(detected, target)
}
