package analysis

import (
	"fmt"
	"regexp"

	"github.com/valpere/termitran/internal"
)

// candidateTermRe matches contiguous Han runs of 2–8 runes — the window used
// by the local term extractor when no completion backend is configured.
var candidateTermRe = regexp.MustCompile(`[\x{4E00}-\x{9FA5}]{2,8}`)

// stopWords filters function words out of the candidate set.
var stopWords = map[string]struct{}{
	"这个": {}, "那个": {}, "可以": {}, "需要": {}, "如果": {},
	"因为": {}, "所以": {}, "但是": {}, "而且": {}, "或者": {},
	"进行": {}, "使用": {}, "操作": {}, "功能": {},
}

// maxHeuristicTerms caps the candidate list.
const maxHeuristicTerms = 15

// extractCandidateTerms returns deduplicated candidate terms from text, in
// first-occurrence order.
func extractCandidateTerms(text string) []string {
	var terms []string
	seen := make(map[string]struct{})
	for _, match := range candidateTermRe.FindAllString(text, -1) {
		if _, stop := stopWords[match]; stop {
			continue
		}
		if _, dup := seen[match]; dup {
			continue
		}
		seen[match] = struct{}{}
		terms = append(terms, match)
		if len(terms) >= maxHeuristicTerms {
			break
		}
	}
	return terms
}

// analyzeHeuristic classifies candidate terms purely by database
// membership; no external call is made.
func (e *Engine) analyzeHeuristic(text, languageFrom, languageTo string, database []internal.Term) *Result {
	existing := prefilter(text, database)
	known := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		known[t.Original] = struct{}{}
	}

	var newTerms []internal.Term
	for _, candidate := range extractCandidateTerms(text) {
		if _, ok := known[candidate]; ok {
			continue
		}
		newTerms = append(newTerms, internal.Term{
			Original:    candidate,
			Translation: "[待翻译]",
		})
	}

	result := &Result{
		Mode: ModeHeuristic,
		DocumentInfo: internal.DocumentInfo{
			Domain:  "技术文档",
			Style:   "技术说明",
			Purpose: "专业翻译",
		},
		ContentStructure: fmt.Sprintf("文档包含约 %d 个字符，识别到 %d 个潜在术语",
			len([]rune(text)), len(existing)+len(newTerms)),
		ExistingTerms: existing,
		NewTerms:      newTerms,
		TranslationStrategy: fmt.Sprintf("翻译方向：%s → %s\n保持专业、准确、流畅的翻译风格，确保术语一致性。",
			languageFrom, languageTo),
		ConfirmationText: fmt.Sprintf("系统识别到 %d 个已有术语和 %d 个新术语，请确认这些术语的翻译。",
			len(existing), len(newTerms)),
	}
	result.ProperNouns = properNouns(result.ExistingTerms, result.NewTerms)
	return result
}
