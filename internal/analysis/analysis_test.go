package analysis_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/valpere/termitran/internal"
	"github.com/valpere/termitran/internal/analysis"
	"github.com/valpere/termitran/internal/completion"
)

// fakeBackend returns canned completion output and records the last prompt.
type fakeBackend struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeBackend) Complete(ctx context.Context, req completion.Request) (*completion.Response, error) {
	f.lastPrompt = req.Prompt
	if f.err != nil {
		return nil, f.err
	}
	return &completion.Response{
		Text:  f.response,
		Model: "fake",
		Usage: internal.Usage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30},
	}, nil
}

func (f *fakeBackend) Available() error { return nil }

var robotDatabase = []internal.Term{
	{Original: "激光雷达", Translation: "LiDAR"},
	{Original: "建图", Translation: "Mapping"},
	{Original: "定位", Translation: "Localization"},
	{Original: "充电桩", Translation: "Charging Dock"},
}

func TestAnalyze_ModelMode(t *testing.T) {
	backend := &fakeBackend{response: `{
		"documentInfo": {"domain": "机器人", "style": "技术说明", "purpose": "手册翻译"},
		"contentStructure": "单段说明",
		"newTerms": [{"original": "回充系统", "translation": "Auto-Recharge System"}],
		"translationStrategy": "保持术语一致",
		"confirmationText": "请确认术语"
	}`}
	engine := analysis.New(backend, 2000, 0.7, nil)

	text := "激光雷达用于建图和定位。回充系统自动工作。"
	result := engine.Analyze(context.Background(), text, "ZH", "EN", robotDatabase)

	if result.Mode != analysis.ModeModel {
		t.Fatalf("expected model mode, got %s", result.Mode)
	}
	if result.DocumentInfo.Domain != "机器人" {
		t.Errorf("domain: got %q", result.DocumentInfo.Domain)
	}
	if len(result.ExistingTerms) != 3 {
		t.Fatalf("expected 3 existing terms, got %v", result.ExistingTerms)
	}
	for _, term := range result.ExistingTerms {
		if !term.FromDatabase {
			t.Errorf("existing term %q must be marked FromDatabase", term.Original)
		}
		if term.Confirmed {
			t.Errorf("term %q must not be pre-confirmed", term.Original)
		}
	}
	if len(result.NewTerms) != 1 || result.NewTerms[0].Original != "回充系统" {
		t.Errorf("new terms: got %v", result.NewTerms)
	}
	if len(result.ProperNouns) != 4 {
		t.Errorf("proper nouns must be existing ++ new, got %v", result.ProperNouns)
	}
	if result.Usage.TotalTokens != 30 {
		t.Errorf("usage not propagated: %+v", result.Usage)
	}
}

func TestAnalyze_DatabaseRecallIsLocal(t *testing.T) {
	// The model must never be asked about database terms; membership is
	// decided by local matching, so even a term the model ignores is
	// recalled.
	backend := &fakeBackend{response: `{"documentInfo": {"domain": "x", "style": "y", "purpose": "z"}, "newTerms": []}`}
	engine := analysis.New(backend, 2000, 0.7, nil)

	result := engine.Analyze(context.Background(), "充电桩在房间角落。", "ZH", "EN", robotDatabase)
	if len(result.ExistingTerms) != 1 || result.ExistingTerms[0].Original != "充电桩" {
		t.Errorf("expected 充电桩 recalled locally, got %v", result.ExistingTerms)
	}
}

func TestAnalyze_NewTermCollisionFiltered(t *testing.T) {
	// A "new" term that is already in the database keeps its database
	// translation.
	backend := &fakeBackend{response: `{
		"documentInfo": {"domain": "x", "style": "y", "purpose": "z"},
		"newTerms": [{"original": "激光雷达", "translation": "Laser Radar"}, {"original": "回充", "translation": "Recharge"}]
	}`}
	engine := analysis.New(backend, 2000, 0.7, nil)

	result := engine.Analyze(context.Background(), "激光雷达和回充。", "ZH", "EN", robotDatabase)
	for _, term := range result.NewTerms {
		if term.Original == "激光雷达" {
			t.Errorf("database collision must be filtered from new terms: %v", result.NewTerms)
		}
	}
	if len(result.NewTerms) != 1 || result.NewTerms[0].Translation != "Recharge" {
		t.Errorf("genuine new term lost: %v", result.NewTerms)
	}
}

func TestAnalyze_FencedJSONResponse(t *testing.T) {
	backend := &fakeBackend{response: "分析结果如下：\n```json\n{\"documentInfo\": {\"domain\": \"机器人\", \"style\": \"s\", \"purpose\": \"p\"}, \"newTerms\": []}\n```"}
	engine := analysis.New(backend, 2000, 0.7, nil)

	result := engine.Analyze(context.Background(), "激光雷达。", "ZH", "EN", robotDatabase)
	if result.Mode != analysis.ModeModel {
		t.Errorf("fenced JSON should parse, got mode %s", result.Mode)
	}
}

func TestAnalyze_FallbackKeepsExistingTerms(t *testing.T) {
	// Parse failure degrades the profile but never the database recall.
	backend := &fakeBackend{response: "I could not produce JSON, sorry."}
	engine := analysis.New(backend, 2000, 0.7, nil)

	result := engine.Analyze(context.Background(), "激光雷达用于建图。", "ZH", "EN", robotDatabase)
	if result.Mode != analysis.ModeFallback {
		t.Fatalf("expected fallback mode, got %s", result.Mode)
	}
	if len(result.ExistingTerms) != 2 {
		t.Errorf("fallback must keep pre-filtered terms, got %v", result.ExistingTerms)
	}
	if result.TranslationStrategy == "" || result.ConfirmationText == "" {
		t.Error("fallback must provide usable defaults")
	}
}

func TestAnalyze_FallbackOnBackendError(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused")}
	engine := analysis.New(backend, 2000, 0.7, nil)

	result := engine.Analyze(context.Background(), "激光雷达。", "ZH", "EN", robotDatabase)
	if result.Mode != analysis.ModeFallback {
		t.Fatalf("expected fallback mode, got %s", result.Mode)
	}
	if len(result.ExistingTerms) != 1 {
		t.Errorf("fallback must keep pre-filtered terms, got %v", result.ExistingTerms)
	}
}

func TestAnalyze_HeuristicWithoutBackend(t *testing.T) {
	engine := analysis.New(nil, 2000, 0.7, nil)

	result := engine.Analyze(context.Background(), "激光雷达用于建图。点云数据很重要。", "ZH", "EN", robotDatabase)
	if result.Mode != analysis.ModeHeuristic {
		t.Fatalf("expected heuristic mode, got %s", result.Mode)
	}
	if len(result.ExistingTerms) != 2 {
		t.Errorf("expected 激光雷达 and 建图 matched, got %v", result.ExistingTerms)
	}
	// Candidate extraction proposes Han runs not in the database.
	foundNew := false
	for _, term := range result.NewTerms {
		if strings.Contains(term.Original, "点云数据") {
			foundNew = true
		}
		if term.Translation != "[待翻译]" {
			t.Errorf("heuristic candidates carry no translation, got %q", term.Translation)
		}
	}
	if !foundNew {
		t.Errorf("expected a candidate containing 点云数据, got %v", result.NewTerms)
	}
	if len(result.ProperNouns) != len(result.ExistingTerms)+len(result.NewTerms) {
		t.Error("proper nouns must be the union of existing and new terms")
	}
}

func TestAnalyze_PromptExcludesDatabaseTermRequests(t *testing.T) {
	backend := &fakeBackend{response: `{"documentInfo": {"domain": "x", "style": "y", "purpose": "z"}, "newTerms": []}`}
	engine := analysis.New(backend, 2000, 0.7, nil)

	engine.Analyze(context.Background(), "激光雷达。", "ZH", "EN", robotDatabase)
	if backend.lastPrompt == "" {
		t.Fatal("backend was not called")
	}
	// Matched database terms are listed as already covered.
	if !strings.Contains(backend.lastPrompt, "激光雷达 → LiDAR") {
		t.Error("prompt should list matched terms as already covered")
	}
}
