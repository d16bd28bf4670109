package layout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/valpere/termitran/internal/extraction"
)

type countingBackend struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
}

func (c *countingBackend) TranslateText(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[text]++
	if c.fail[text] {
		return "", errors.New("backend failure")
	}
	return "EN:" + text, nil
}

func pagesWithBlocks(texts ...string) []extraction.Page {
	page := extraction.Page{PageID: 1}
	for _, text := range texts {
		page.Blocks = append(page.Blocks, extraction.Block{Text: text, PageID: 1})
	}
	return []extraction.Page{page}
}

func TestTranslateBlocks_DeduplicatesRepeats(t *testing.T) {
	backend := &countingBackend{}
	tr := NewTranslator(nil, backend, nil, nil)

	// The header text repeats on every page but is translated once.
	pages := pagesWithBlocks("页眉", "正文一", "页眉", "正文二", "页眉")
	translations := tr.translateBlocks(context.Background(), pages)

	if backend.calls["页眉"] != 1 {
		t.Errorf("duplicate block translated %d times", backend.calls["页眉"])
	}
	if len(translations) != 3 {
		t.Errorf("expected 3 distinct translations, got %d", len(translations))
	}
	if translations["正文一"] != "EN:正文一" {
		t.Errorf("unexpected translation %q", translations["正文一"])
	}
}

func TestTranslateBlocks_FailedBlockKeepsSourceText(t *testing.T) {
	backend := &countingBackend{fail: map[string]bool{"坏块": true}}
	tr := NewTranslator(nil, backend, nil, nil)

	translations := tr.translateBlocks(context.Background(), pagesWithBlocks("好块", "坏块"))
	if translations["好块"] != "EN:好块" {
		t.Errorf("healthy block lost: %q", translations["好块"])
	}
	if translations["坏块"] != "坏块" {
		t.Errorf("failed block must fall back to its source text, got %q", translations["坏块"])
	}
}

func TestTranslateBlocks_CancelledContextSelfMapsRemainder(t *testing.T) {
	backend := &countingBackend{}
	tr := NewTranslator(nil, backend, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// More than one batch forces the inter-batch wait, which observes the
	// cancelled context.
	texts := []string{"一", "二", "三", "四", "五", "六", "七"}
	translations := tr.translateBlocks(ctx, pagesWithBlocks(texts...))

	if len(translations) != len(texts) {
		t.Fatalf("every block needs an entry, got %d of %d", len(translations), len(texts))
	}
	for _, text := range texts[5:] {
		if translations[text] != text {
			t.Errorf("post-cancel block %q must self-map, got %q", text, translations[text])
		}
	}
}

func TestTranslate_NoExtractor(t *testing.T) {
	tr := NewTranslator(nil, &countingBackend{}, nil, nil)
	if _, err := tr.Translate(context.Background(), []byte("%PDF"), ModeOverlay); err == nil {
		t.Fatal("expected error without an extraction service")
	}
}

type failingExtractor struct{}

func (failingExtractor) Extract(ctx context.Context, pdf []byte, dpi int) (*extraction.Result, error) {
	return nil, errors.New("service down")
}

func TestTranslate_ExtractionFailureIsFatal(t *testing.T) {
	tr := NewTranslator(failingExtractor{}, &countingBackend{}, nil, nil)
	if _, err := tr.Translate(context.Background(), []byte("%PDF"), ModeOverlay); err == nil {
		t.Fatal("extraction failure must be fatal")
	}
}

type dpiRecordingExtractor struct {
	dpi int
}

func (e *dpiRecordingExtractor) Extract(ctx context.Context, pdf []byte, dpi int) (*extraction.Result, error) {
	e.dpi = dpi
	return nil, errors.New("stop")
}

func TestTranslate_ConfiguredDPIReachesExtractor(t *testing.T) {
	extractor := &dpiRecordingExtractor{}
	tr := NewTranslator(extractor, &countingBackend{}, nil, nil, WithDPI(300, 150))

	tr.Translate(context.Background(), []byte("%PDF"), ModeOverlay)
	if extractor.dpi != 300 {
		t.Errorf("extractor asked for %d dpi, want 300", extractor.dpi)
	}
	if got := tr.scale(); got != 0.5 {
		t.Errorf("scale = %v, want 0.5", got)
	}
}

func TestTranslate_DefaultDPI(t *testing.T) {
	extractor := &dpiRecordingExtractor{}
	tr := NewTranslator(extractor, &countingBackend{}, nil, nil)

	tr.Translate(context.Background(), []byte("%PDF"), ModeOverlay)
	if extractor.dpi != defaultSourceDPI {
		t.Errorf("extractor asked for %d dpi, want %d", extractor.dpi, defaultSourceDPI)
	}
	if got := tr.scale(); got != 0.5 {
		t.Errorf("default scale = %v, want 0.5", got)
	}
}

func TestTranslateBlocks_BatchingConfigurable(t *testing.T) {
	backend := &countingBackend{}
	tr := NewTranslator(nil, backend, nil, nil, WithBatching(2, 0))

	// Four batches of two, no inter-batch pause.
	texts := []string{"一", "二", "三", "四", "五", "六", "七"}
	translations := tr.translateBlocks(context.Background(), pagesWithBlocks(texts...))

	if len(translations) != len(texts) {
		t.Fatalf("expected %d translations, got %d", len(texts), len(translations))
	}
	for _, text := range texts {
		if translations[text] != "EN:"+text {
			t.Errorf("block %q: got %q", text, translations[text])
		}
	}
}

func TestRenderOverlay_NoUsableFontFails(t *testing.T) {
	tr := NewTranslator(nil, &countingBackend{}, []string{"/nonexistent/font.ttf"}, nil)

	_, err := tr.renderOverlay([]byte("%PDF"), &extraction.Result{}, nil)
	if err == nil {
		t.Fatal("overlay render needs an embeddable font")
	}
}
