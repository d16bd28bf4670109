package session_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/valpere/termitran/internal"
	"github.com/valpere/termitran/internal/analysis"
	"github.com/valpere/termitran/internal/session"
	"github.com/valpere/termitran/internal/terminology"
	"github.com/valpere/termitran/internal/translator"
)

// scenarioTranslator produces a deterministic non-empty translation without
// a network backend.
type scenarioTranslator struct{}

func (scenarioTranslator) Available() error { return nil }

func (scenarioTranslator) Translate(ctx context.Context, req translator.Request) (*internal.TranslationResult, error) {
	var pinned []string
	for _, t := range req.ConfirmedTerms {
		pinned = append(pinned, t.Translation)
	}
	return &internal.TranslationResult{
		TranslatedText: "The " + strings.Join(pinned, ", ") + " pipeline is described here.",
		Usage:          internal.Usage{InputTokens: 10, OutputTokens: 10, TotalTokens: 20},
		TranslatedAt:   time.Now(),
	}, nil
}

// The full workflow against the built-in seed dictionary: every seed term
// occurring verbatim in the input is recalled, confirmed, and pinned into
// the translation request.
func TestWorkflow_SeedDictionaryRecall(t *testing.T) {
	ctx := context.Background()

	terms := terminology.NewStore(nil, nil)
	engine := analysis.New(nil, 0, 0, nil)
	orch := session.NewOrchestrator(
		session.NewMemoryStore(0, 0),
		engine,
		scenarioTranslator{},
		terms,
		nil,
		nil,
	)

	s, err := orch.Submit(ctx, "激光雷达用于建图和定位。", "ZH", "EN")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	recalled := make(map[string]string)
	for _, term := range s.Analysis.ExistingTerms {
		recalled[term.Original] = term.Translation
	}
	for original, want := range map[string]string{
		"激光雷达": "LiDAR",
		"建图":   "Mapping",
		"定位":   "Localization",
	} {
		if recalled[original] != want {
			t.Errorf("seed term %s: got %q, want %q", original, recalled[original], want)
		}
	}

	if _, err := orch.Confirm(ctx, s.ID, nil); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	s, err = orch.Translate(ctx, s.ID)
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if s.Result.TranslatedText == "" || s.Result.TranslatedText == s.SourceText {
		t.Errorf("translation should be non-empty and distinct from the input, got %q", s.Result.TranslatedText)
	}
	for _, want := range []string{"LiDAR", "Mapping", "Localization"} {
		if !strings.Contains(s.Result.TranslatedText, want) {
			t.Errorf("confirmed term %q did not reach the translator", want)
		}
	}
}
