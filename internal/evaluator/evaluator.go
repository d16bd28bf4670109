// Package evaluator scores a finished translation against its source on
// four 25-point dimensions via the completion backend.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/valpere/termitran/internal"
	"github.com/valpere/termitran/internal/analysis"
	"github.com/valpere/termitran/internal/completion"
	"github.com/valpere/termitran/internal/translator"
)

// ErrUnparsable is returned when the backend's evaluation cannot be decoded.
var ErrUnparsable = errors.New("evaluator: response unparsable")

// Scores are the four scoring dimensions plus their total.
type Scores struct {
	Accuracy    int `json:"accuracy"`
	Fluency     int `json:"fluency"`
	Terminology int `json:"terminology"`
	Style       int `json:"style"`
	Total       int `json:"total"`
}

// Evaluation is a complete quality report.
type Evaluation struct {
	Scores             Scores            `json:"scores"`
	Grade              string            `json:"grade"`
	Summary            string            `json:"summary"`
	Strengths          []string          `json:"strengths"`
	Weaknesses         []string          `json:"weaknesses"`
	Suggestions        []string          `json:"suggestions"`
	DetailedFeedback   map[string]string `json:"detailed_feedback"`
	RevisedTranslation string            `json:"revised_translation,omitempty"`
	Model              string            `json:"model"`
	EvaluatedAt        time.Time         `json:"evaluated_at"`
	Usage              internal.Usage    `json:"usage"`
}

// Request pairs the source and translated texts with their languages and
// the terms the translation was supposed to honor.
type Request struct {
	OriginalText   string
	TranslatedText string
	LanguageFrom   string
	LanguageTo     string
	Terminology    []internal.Term
}

// Evaluator scores translations.
type Evaluator struct {
	completion  completion.Client
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func New(backend completion.Client, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		completion:  backend,
		maxTokens:   2000,
		temperature: 0.3,
		logger:      logger,
	}
}

func (e *Evaluator) Available() error {
	if e.completion == nil {
		return completion.ErrNotConfigured
	}
	return e.completion.Available()
}

// Evaluate scores one translation. The grade is recomputed locally from the
// total so a model that reports an inconsistent grade cannot skew it.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (*Evaluation, error) {
	if err := e.Available(); err != nil {
		return nil, err
	}

	resp, err := e.completion.Complete(ctx, completion.Request{
		System:      "你是一位专业的翻译质量评估专家，请严格按照评分标准进行评估，输出纯JSON格式。",
		Prompt:      buildEvaluationPrompt(req),
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluation call failed: %w", err)
	}

	var parsed struct {
		Scores struct {
			Accuracy    int `json:"accuracy"`
			Fluency     int `json:"fluency"`
			Terminology int `json:"terminology"`
			Style       int `json:"style"`
			Total       int `json:"total"`
		} `json:"scores"`
		Summary            string            `json:"summary"`
		Strengths          []string          `json:"strengths"`
		Weaknesses         []string          `json:"weaknesses"`
		Suggestions        []string          `json:"suggestions"`
		DetailedFeedback   map[string]string `json:"detailedFeedback"`
		RevisedTranslation string            `json:"revisedTranslation"`
	}
	if !analysis.DecodeJSON(resp.Text, &parsed) {
		return nil, ErrUnparsable
	}

	total := parsed.Scores.Total
	if total == 0 {
		total = parsed.Scores.Accuracy + parsed.Scores.Fluency + parsed.Scores.Terminology + parsed.Scores.Style
	}

	eval := &Evaluation{
		Scores: Scores{
			Accuracy:    parsed.Scores.Accuracy,
			Fluency:     parsed.Scores.Fluency,
			Terminology: parsed.Scores.Terminology,
			Style:       parsed.Scores.Style,
			Total:       total,
		},
		Grade:              gradeFor(total),
		Summary:            parsed.Summary,
		Strengths:          parsed.Strengths,
		Weaknesses:         parsed.Weaknesses,
		Suggestions:        parsed.Suggestions,
		DetailedFeedback:   parsed.DetailedFeedback,
		RevisedTranslation: parsed.RevisedTranslation,
		Model:              resp.Model,
		EvaluatedAt:        time.Now(),
		Usage:              resp.Usage,
	}

	e.logger.Info("translation evaluated",
		zap.Int("total", eval.Scores.Total),
		zap.String("grade", eval.Grade))
	return eval, nil
}

// gradeFor maps a 0-100 total onto the letter scale.
func gradeFor(total int) string {
	switch {
	case total >= 95:
		return "A+"
	case total >= 90:
		return "A"
	case total >= 85:
		return "B+"
	case total >= 80:
		return "B"
	case total >= 70:
		return "C+"
	case total >= 60:
		return "C"
	case total >= 50:
		return "D"
	default:
		return "F"
	}
}

func buildEvaluationPrompt(req Request) string {
	terminologyStr := "无"
	if len(req.Terminology) > 0 {
		var lines []string
		for _, t := range req.Terminology {
			lines = append(lines, fmt.Sprintf("%s → %s", t.Original, t.Translation))
		}
		terminologyStr = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`你是一位资深的翻译质量评估专家，请对以下翻译结果进行**严格、专业**的评分和评价。

## 评分标准（总分100分）

### 1. 准确性 (0-25分)
- 25分: 完美传达原文所有信息，无遗漏、无误译
- 20分: 基本准确，有极少量可忽略的细微偏差
- 15分: 大部分准确，存在少量误译或遗漏
- 10分: 有明显误译或重要信息遗漏
- 5分: 多处严重误译，信息传达不完整
- 0分: 完全误译或与原文无关

### 2. 流畅性 (0-25分)
- 25分: 读起来完全自然，如同母语写作
- 20分: 流畅自然，偶有生硬表达
- 15分: 基本通顺，有明显翻译腔
- 10分: 句子生硬，影响阅读体验
- 5分: 难以理解，语法错误较多
- 0分: 完全不通顺，无法阅读

### 3. 术语一致性 (0-25分)
- 25分: 所有专业术语翻译准确且前后一致
- 20分: 术语基本准确，有极少量不一致
- 15分: 大部分术语正确，存在少量错误
- 10分: 术语翻译有明显问题
- 5分: 术语翻译混乱，前后不一致
- 0分: 术语完全错误

### 4. 风格适配 (0-25分)
- 25分: 完美匹配文档类型和目标受众
- 20分: 风格基本合适，有小瑕疵
- 15分: 风格尚可，但不够专业/正式
- 10分: 风格与文档类型有明显偏差
- 5分: 风格严重不匹配
- 0分: 风格完全不适合

## 待评估内容

**原文 (%s):**
%s

**译文 (%s):**
%s

**术语表（如有提供）:**
%s

## 输出格式

请严格按照以下JSON格式输出评估结果（不要添加任何其他内容）：

{
  "scores": {
    "accuracy": <0-25的整数>,
    "fluency": <0-25的整数>,
    "terminology": <0-25的整数>,
    "style": <0-25的整数>,
    "total": <0-100的整数>
  },
  "grade": "<A+/A/B+/B/C+/C/D/F>",
  "summary": "<一句话总体评价>",
  "strengths": ["<优点1>", "<优点2>"],
  "weaknesses": ["<问题1>", "<问题2>"],
  "suggestions": ["<改进建议1>", "<改进建议2>"],
  "detailedFeedback": {
    "accuracy": "<准确性详细评价>",
    "fluency": "<流畅性详细评价>",
    "terminology": "<术语一致性详细评价>",
    "style": "<风格适配详细评价>"
  },
  "revisedTranslation": "<如果评分低于80分，请提供改进后的译文；否则留空>"
}

## 评分等级对照
- A+ (95-100): 卓越，可直接使用
- A (90-94): 优秀，微调后可用
- B+ (85-89): 良好，需少量修改
- B (80-84): 合格，需要修改
- C+ (70-79): 一般，需要较多修改
- C (60-69): 较差，需要大幅修改
- D (50-59): 差，建议重译
- F (<50): 不合格，必须重译

请严格按照标准评分，不要因为"鼓励"而给高分。专业翻译需要严格把关。`,
		translator.LanguageName(req.LanguageFrom), req.OriginalText,
		translator.LanguageName(req.LanguageTo), req.TranslatedText,
		terminologyStr)
}
