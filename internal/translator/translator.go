// Package translator executes the final translation pass against the
// completion backend, embedding confirmed terminology, document context,
// and the translation strategy into a single prompt.
//
// Chunked-input orchestration does not live here: callers segment long
// texts themselves and invoke Translate once per chunk.
package translator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/valpere/termitran/internal"
	"github.com/valpere/termitran/internal/completion"
	"github.com/valpere/termitran/internal/postprocess"
)

// DefaultStrategy is used when the analysis step produced no strategy.
const DefaultStrategy = "保持专业、准确、流畅的翻译风格"

// Request carries everything a single translation call needs.
type Request struct {
	Text           string
	LanguageFrom   string
	LanguageTo     string
	ConfirmedTerms []internal.Term
	DocumentInfo   *internal.DocumentInfo
	Strategy       string
}

// Client builds translation prompts and invokes the completion backend.
// It holds no per-request state.
type Client struct {
	completion  completion.Client
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

// New creates a translation client. maxTokens and temperature bound each
// completion call.
func New(backend completion.Client, maxTokens int, temperature float64, logger *zap.Logger) *Client {
	if maxTokens <= 0 {
		maxTokens = 16000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		completion:  backend,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Available reports whether the underlying completion backend is usable.
func (c *Client) Available() error {
	if c.completion == nil {
		return completion.ErrNotConfigured
	}
	return c.completion.Available()
}

// Translate performs one translation call and cleans the output. The
// returned usage covers this call only.
func (c *Client) Translate(ctx context.Context, req Request) (*internal.TranslationResult, error) {
	if err := c.Available(); err != nil {
		return nil, err
	}

	prompt := buildPrompt(req)
	start := time.Now()

	resp, err := c.completion.Complete(ctx, completion.Request{
		Prompt:      prompt,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	c.logger.Info("translation call finished",
		zap.String("model", resp.Model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("terms", len(req.ConfirmedTerms)))

	return &internal.TranslationResult{
		TranslatedText: postprocess.Clean(resp.Text),
		Usage:          resp.Usage,
		TranslatedAt:   time.Now(),
	}, nil
}

// buildPrompt renders the translation prompt: language names, document
// background, strategy, the confirmed-term table, the source text, and the
// output rules.
func buildPrompt(req Request) string {
	sourceLang := LanguageName(req.LanguageFrom)
	targetLang := LanguageName(req.LanguageTo)

	var terms []string
	for _, t := range req.ConfirmedTerms {
		if !t.Confirmed {
			continue
		}
		terms = append(terms, fmt.Sprintf("- %s → %s", t.Original, t.Translation))
	}
	termsTable := "（无特定术语要求）"
	if len(terms) > 0 {
		termsTable = strings.Join(terms, "\n")
	}

	var docInfo string
	if req.DocumentInfo != nil {
		docInfo = fmt.Sprintf(`
**文档背景信息：**
- 所属领域：%s
- 文体风格：%s
- 翻译用途：%s
`,
			orDefault(req.DocumentInfo.Domain, "通用"),
			orDefault(req.DocumentInfo.Style, "通用"),
			orDefault(req.DocumentInfo.Purpose, "通用翻译"))
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = DefaultStrategy
	}

	return fmt.Sprintf(`你是一位专业的翻译专家。请将以下%s文本翻译成%s。
%s
**翻译策略：**
%s

**专业术语对照表（必须严格遵守）：**
%s

**原文：**
%s

**翻译要求：**
1. 严格按照术语对照表翻译专业术语，保持术语一致性
2. 保持原文的格式、段落结构
3. 确保译文专业、准确、流畅
4. 如果原文有标题、列表等格式，请保持相同格式
5. 只输出翻译结果，不要添加任何解释或注释

**译文：**`, sourceLang, targetLang, docInfo, strategy, termsTable, req.Text)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
