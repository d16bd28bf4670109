package translator_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/valpere/termitran/internal"
	"github.com/valpere/termitran/internal/completion"
	"github.com/valpere/termitran/internal/translator"
)

type fakeBackend struct {
	response string
	err      error
	lastReq  completion.Request
}

func (f *fakeBackend) Complete(ctx context.Context, req completion.Request) (*completion.Response, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &completion.Response{
		Text:  f.response,
		Model: "fake",
		Usage: internal.Usage{InputTokens: 3, OutputTokens: 4, TotalTokens: 7},
	}, nil
}

func (f *fakeBackend) Available() error { return nil }

func TestTranslate_PromptContents(t *testing.T) {
	backend := &fakeBackend{response: "The LiDAR is used for mapping."}
	client := translator.New(backend, 0, 0.2, nil)

	_, err := client.Translate(context.Background(), translator.Request{
		Text:         "激光雷达用于建图。",
		LanguageFrom: "ZH",
		LanguageTo:   "EN",
		ConfirmedTerms: []internal.Term{
			{Original: "激光雷达", Translation: "LiDAR", Confirmed: true},
			{Original: "建图", Translation: "Mapping", Confirmed: true},
			{Original: "未确认", Translation: "Ignored", Confirmed: false},
		},
		DocumentInfo: &internal.DocumentInfo{Domain: "机器人", Style: "技术说明", Purpose: "手册"},
		Strategy:     "保持术语一致",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := backend.lastReq.Prompt
	for _, want := range []string{
		"中文", "英文",
		"- 激光雷达 → LiDAR",
		"- 建图 → Mapping",
		"机器人",
		"保持术语一致",
		"激光雷达用于建图。",
		"**译文：**",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	// Unconfirmed terms must never reach the prompt.
	if strings.Contains(prompt, "未确认") {
		t.Error("unconfirmed term leaked into prompt")
	}
}

func TestTranslate_DefaultsWithoutAnalysis(t *testing.T) {
	backend := &fakeBackend{response: "ok"}
	client := translator.New(backend, 0, 0.2, nil)

	_, err := client.Translate(context.Background(), translator.Request{
		Text:         "你好",
		LanguageFrom: "ZH",
		LanguageTo:   "EN",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prompt := backend.lastReq.Prompt
	if !strings.Contains(prompt, "（无特定术语要求）") {
		t.Error("expected empty-terms placeholder")
	}
	if !strings.Contains(prompt, translator.DefaultStrategy) {
		t.Error("expected default strategy")
	}
}

func TestTranslate_CleansArtifacts(t *testing.T) {
	backend := &fakeBackend{response: "<think>translating</think>译文：\"The robot works.\""}
	client := translator.New(backend, 0, 0.2, nil)

	result, err := client.Translate(context.Background(), translator.Request{
		Text: "机器人工作。", LanguageFrom: "ZH", LanguageTo: "EN",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TranslatedText != "The robot works." {
		t.Errorf("artifacts not cleaned: %q", result.TranslatedText)
	}
	if result.Usage.TotalTokens != 7 {
		t.Errorf("usage not propagated: %+v", result.Usage)
	}
}

func TestTranslate_BackendError(t *testing.T) {
	backend := &fakeBackend{err: errors.New("upstream down")}
	client := translator.New(backend, 0, 0.2, nil)

	if _, err := client.Translate(context.Background(), translator.Request{Text: "你好"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestAvailable_NilBackend(t *testing.T) {
	client := translator.New(nil, 0, 0.2, nil)
	if err := client.Available(); !errors.Is(err, completion.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestLanguageName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"ZH", "中文"},
		{"zh", "中文"},
		{"EN-US", "美式英文"},
		{"JP", "日文"},
		{"XX", "XX"},
	}
	for _, tt := range tests {
		if got := translator.LanguageName(tt.code); got != tt.want {
			t.Errorf("LanguageName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
