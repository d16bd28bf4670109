package terminology

import (
	"regexp"
	"strings"

	"github.com/valpere/termitran/internal"
)

// Knowledge-base pages are free-form documents maintained by humans; term
// pairs appear in several layouts. Three pattern families are tried in
// order, each restricted to a Han-script source term paired with a Latin
// or Japanese-script translation.
//
// Character classes: hiragana U+3040–U+309F, katakana U+30A0–U+30FF,
// halfwidth katakana U+FF65–U+FF9F, Han U+4E00–U+9FFF.
var termPatterns = []*regexp.Regexp{
	// Table / delimiter layout: "术语 | 翻译", "术语 → 翻译", "术语 = 翻译".
	regexp.MustCompile(`([^\s|→=:：《》【】\n,，]+)\s*[|→=]\s*([A-Za-z\x{3040}-\x{309F}\x{30A0}-\x{30FF}\x{4E00}-\x{9FFF}\x{FF65}-\x{FF9F}][A-Za-z0-9\x{3040}-\x{309F}\x{30A0}-\x{30FF}\x{4E00}-\x{9FFF}\x{FF65}-\x{FF9F} \-'()・ー]+)`),
	// Colon layout: "术语: 翻译" (ASCII or fullwidth colon).
	regexp.MustCompile(`([^\s|→=:：《》【】\n,，]+)\s*[:：]\s*([A-Za-z\x{3040}-\x{309F}\x{30A0}-\x{30FF}\x{4E00}-\x{9FFF}\x{FF65}-\x{FF9F}][A-Za-z0-9\x{3040}-\x{309F}\x{30A0}-\x{30FF}\x{4E00}-\x{9FFF}\x{FF65}-\x{FF9F} \-'()・ー]+)`),
	// Comma-terminated Japanese layout: "重影:ゴースト,".
	regexp.MustCompile(`([^\s|→=:：《》【】\n,，]+)\s*[:：]\s*([A-Za-z\x{3040}-\x{309F}\x{30A0}-\x{30FF}\x{FF65}-\x{FF9F}][A-Za-z0-9\x{3040}-\x{309F}\x{30A0}-\x{30FF}\x{FF65}-\x{FF9F} \-'()・ー]*)`),
}

var (
	hanRe      = regexp.MustCompile(`\p{Han}`)
	latinRe    = regexp.MustCompile(`[A-Za-z]`)
	japaneseRe = regexp.MustCompile(`[\x{3040}-\x{309F}\x{30A0}-\x{30FF}\x{FF65}-\x{FF9F}]`)
)

// ParseTerms extracts term pairs from free-form knowledge-base content.
// Pairs are deduplicated by (original, translation) and the result is
// capped at max entries to bound cache memory and downstream prompt size.
func ParseTerms(content string, max int) []internal.Term {
	if content == "" || max <= 0 {
		return nil
	}

	var terms []internal.Term
	seen := make(map[string]struct{})

	for _, pattern := range termPatterns {
		for _, match := range pattern.FindAllStringSubmatch(content, -1) {
			original := strings.TrimSpace(match[1])
			translation := strings.TrimSpace(match[2])
			if original == "" || translation == "" {
				continue
			}
			if !hanRe.MatchString(original) {
				continue
			}
			if !latinRe.MatchString(translation) && !japaneseRe.MatchString(translation) {
				continue
			}
			key := original + "|" + translation
			if _, dup := seen[key]; dup {
				continue
			}
			if len(terms) >= max {
				return terms
			}
			seen[key] = struct{}{}
			terms = append(terms, internal.Term{Original: original, Translation: translation})
		}
	}
	return terms
}
