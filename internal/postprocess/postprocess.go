// Package postprocess removes common LLM artifacts from translation output.
//
// It is applied to the raw text returned by any completion backend before
// the result is used downstream, covering reasoning blocks, localized
// "translation:" labels, and wrapping quotes.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes LLM artifacts from text in three phases and returns the
// trimmed result:
//  1. Thinking / reasoning block removal
//  2. Leading translation-label removal (prompt leakage)
//  3. Quote wrapping removal
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeTranslationLabels(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// --- Phase 1: thinking blocks ---

// thinkingBlockRe matches complete <thinking>…</thinking> style blocks.
// Each tag variant is listed explicitly because Go's RE2 engine does not
// support backreferences.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- Phase 2: translation labels ---

// labelPatterns match a leading localized "translation:" label that models
// sometimes prepend even when instructed not to. Anchored to the start of
// the string; the colon may be ASCII or fullwidth.
var labelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^译文\s*[:：]\s*`),
	regexp.MustCompile(`^訳文\s*[:：]\s*`),
	regexp.MustCompile(`(?i)^(?:the\s+)?translation\s*[:：]\s*`),
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? translation\s*[:：]\s*`),
}

func removeTranslationLabels(text string) string {
	for _, re := range labelPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// --- Phase 3: quote wrapping ---

// removeQuoteWrapping strips one matching pair of outer quotes when the
// entire text is wrapped in them. Supported pairs:
//
//	"…"  '…'  «…»  “…”  ‘…’  「…」  『…』
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') || // “ ”
		(first == '‘' && last == '’') || // ‘ ’
		(first == '「' && last == '」') ||
		(first == '『' && last == '』') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}
