// Package analysis builds a structured document profile — domain, style,
// purpose, and the terminology offered for confirmation — by combining
// terminology-database lookups with a completion call, or a local
// heuristic when no backend is configured.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/valpere/termitran/internal"
	"github.com/valpere/termitran/internal/completion"
)

// Mode tags which path produced a Result. It is resolved once here; no
// downstream code inspects response shapes.
type Mode string

const (
	// ModeModel: the completion backend returned a parseable profile.
	ModeModel Mode = "model"
	// ModeHeuristic: no backend configured; local extraction was used.
	ModeHeuristic Mode = "heuristic"
	// ModeFallback: the backend was called but its output was unusable.
	ModeFallback Mode = "fallback"
)

// Result is the document profile offered to the user for confirmation.
// ProperNouns is always the ordered union ExistingTerms ++ NewTerms.
type Result struct {
	Mode                Mode                  `json:"mode"`
	DocumentInfo        internal.DocumentInfo `json:"document_info"`
	ContentStructure    string                `json:"content_structure"`
	ExistingTerms       []internal.Term       `json:"existing_terms"`
	NewTerms            []internal.Term       `json:"new_terms"`
	ProperNouns         []internal.Term       `json:"proper_nouns"`
	TranslationStrategy string                `json:"translation_strategy"`
	ConfirmationText    string                `json:"confirmation_text"`
	Usage               internal.Usage        `json:"usage"`
}

// Engine analyzes documents ahead of translation.
type Engine struct {
	completion  completion.Client
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

// New creates an analysis engine. backend may be nil; analysis then always
// runs in heuristic mode.
func New(backend completion.Client, maxTokens int, temperature float64, logger *zap.Logger) *Engine {
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		completion:  backend,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// prefilter returns the database terms whose original text occurs verbatim
// in text. Membership decided here is authoritative: the model is never
// asked about terms the database already covers, so recall is guaranteed
// regardless of model behavior.
func prefilter(text string, database []internal.Term) []internal.Term {
	var matched []internal.Term
	seen := make(map[string]struct{})
	for _, t := range database {
		if t.Original == "" {
			continue
		}
		if _, dup := seen[t.Original]; dup {
			continue
		}
		if strings.Contains(text, t.Original) {
			seen[t.Original] = struct{}{}
			matched = append(matched, internal.Term{
				Original:     t.Original,
				Translation:  t.Translation,
				FromDatabase: true,
			})
		}
	}
	return matched
}

func properNouns(existing, added []internal.Term) []internal.Term {
	out := make([]internal.Term, 0, len(existing)+len(added))
	out = append(out, existing...)
	out = append(out, added...)
	return out
}

// Analyze produces a document profile for text. It never fails: backend
// and parse failures degrade to fallback mode with the pre-filtered
// existing terms still populated.
func (e *Engine) Analyze(ctx context.Context, text, languageFrom, languageTo string, database []internal.Term) *Result {
	if e.completion == nil || e.completion.Available() != nil {
		return e.analyzeHeuristic(text, languageFrom, languageTo, database)
	}

	existing := prefilter(text, database)

	resp, err := e.completion.Complete(ctx, completion.Request{
		System:      "你是一个专业的翻译预处理专家，能够生成结构化的翻译分析报告。只输出 JSON。",
		Prompt:      buildAnalysisPrompt(text, languageFrom, languageTo, existing),
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		e.logger.Warn("analysis backend call failed; returning degraded result", zap.Error(err))
		return e.fallbackResult(existing)
	}

	var parsed struct {
		DocumentInfo struct {
			Domain  string `json:"domain"`
			Style   string `json:"style"`
			Purpose string `json:"purpose"`
		} `json:"documentInfo"`
		ContentStructure string `json:"contentStructure"`
		NewTerms         []struct {
			Original    string `json:"original"`
			Translation string `json:"translation"`
		} `json:"newTerms"`
		TranslationStrategy string `json:"translationStrategy"`
		ConfirmationText    string `json:"confirmationText"`
	}
	if !DecodeJSON(resp.Text, &parsed) {
		e.logger.Warn("analysis response unparsable; returning degraded result",
			zap.Int("response_bytes", len(resp.Text)))
		result := e.fallbackResult(existing)
		result.Usage = resp.Usage
		return result
	}

	// The model's novel terms, minus anything colliding with the locally
	// verified existing set.
	known := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		known[t.Original] = struct{}{}
	}
	var newTerms []internal.Term
	for _, t := range parsed.NewTerms {
		original := strings.TrimSpace(t.Original)
		if original == "" {
			continue
		}
		if _, collides := known[original]; collides {
			continue
		}
		known[original] = struct{}{}
		newTerms = append(newTerms, internal.Term{
			Original:    original,
			Translation: strings.TrimSpace(t.Translation),
		})
	}

	result := &Result{
		Mode: ModeModel,
		DocumentInfo: internal.DocumentInfo{
			Domain:  orDefault(parsed.DocumentInfo.Domain, "未识别"),
			Style:   orDefault(parsed.DocumentInfo.Style, "未识别"),
			Purpose: orDefault(parsed.DocumentInfo.Purpose, "未识别"),
		},
		ContentStructure:    parsed.ContentStructure,
		ExistingTerms:       existing,
		NewTerms:            newTerms,
		TranslationStrategy: orDefault(parsed.TranslationStrategy, "请保持专业准确的翻译风格"),
		ConfirmationText:    orDefault(parsed.ConfirmationText, "请确认以上术语翻译"),
		Usage:               resp.Usage,
	}
	result.ProperNouns = properNouns(result.ExistingTerms, result.NewTerms)
	return result
}

// fallbackResult is the degraded-but-valid profile returned when the model
// path fails. Pre-filtered existing terms are still populated so database
// recall holds unconditionally.
func (e *Engine) fallbackResult(existing []internal.Term) *Result {
	result := &Result{
		Mode:                ModeFallback,
		DocumentInfo:        internal.DocumentInfo{Domain: "未识别", Style: "未识别", Purpose: "未识别"},
		ExistingTerms:       existing,
		TranslationStrategy: "请保持专业准确的翻译风格",
		ConfirmationText:    "请确认以上术语翻译",
	}
	result.ProperNouns = properNouns(result.ExistingTerms, result.NewTerms)
	return result
}

// buildAnalysisPrompt asks only for document metadata and novel terms;
// existing terms are supplied deterministically from the pre-filter and
// never requested from the model.
func buildAnalysisPrompt(text, languageFrom, languageTo string, existing []internal.Term) string {
	dbList := "（无）"
	if len(existing) > 0 {
		var lines []string
		for _, t := range existing {
			lines = append(lines, fmt.Sprintf("%s → %s", t.Original, t.Translation))
		}
		dbList = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`你是一个专业的翻译预处理专家。请分析以下待翻译文本，并以 JSON 输出分析结果。

**待翻译文本：**
%s

**翻译方向：**
源语言：%s
目标语言：%s

**已收录术语（无需重复提出）：**
%s

**输出要求：**
只输出一个 JSON 对象，不要输出任何其他内容。格式如下：

{
  "documentInfo": {"domain": "所属领域", "style": "文体风格", "purpose": "翻译用途"},
  "contentStructure": "简要描述文档的结构和主要内容",
  "newTerms": [{"original": "新术语", "translation": "建议翻译"}],
  "translationStrategy": "翻译策略建议",
  "confirmationText": "一段专业、友好的确认文案"
}

newTerms 只包含上方已收录术语之外的专业术语和专有名词。`,
		text, languageFrom, languageTo, dbList)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
