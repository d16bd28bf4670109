package layout

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/valpere/termitran/internal/extraction"
)

// TextTranslator translates one standalone text run. The document renderer
// does not care how; the CLI adapts the prompt-driven translation client.
type TextTranslator interface {
	TranslateText(ctx context.Context, text string) (string, error)
}

const (
	defaultBatchSize  = 5
	defaultBatchDelay = time.Second
)

// translateBlocks builds a text → translation map for every distinct block
// text in the document. Duplicate blocks are translated once. Calls run in
// batches; a failed block falls back to its source text so rendering never
// drops content.
func (t *Translator) translateBlocks(ctx context.Context, pages []extraction.Page) map[string]string {
	var unique []string
	seen := make(map[string]struct{})
	for _, page := range pages {
		for _, b := range page.Blocks {
			if _, ok := seen[b.Text]; ok {
				continue
			}
			seen[b.Text] = struct{}{}
			unique = append(unique, b.Text)
		}
	}

	translations := make(map[string]string, len(unique))
	var mu sync.Mutex

	for start := 0; start < len(unique); start += t.batchSize {
		if start > 0 {
			if !t.waitBetweenBatches(ctx) {
				// Remaining blocks keep their source text.
				for _, text := range unique[start:] {
					translations[text] = text
				}
				return translations
			}
		}

		end := start + t.batchSize
		if end > len(unique) {
			end = len(unique)
		}

		var wg sync.WaitGroup
		for _, text := range unique[start:end] {
			wg.Add(1)
			go func(text string) {
				defer wg.Done()
				translated, err := t.backend.TranslateText(ctx, text)
				if err != nil || translated == "" {
					if err != nil {
						t.logger.Warn("block translation failed, keeping source text",
							zap.Int("text_runes", len([]rune(text))),
							zap.Error(err))
					}
					translated = text
				}
				mu.Lock()
				translations[text] = translated
				mu.Unlock()
			}(text)
		}
		wg.Wait()
	}

	return translations
}

// waitBetweenBatches pauses for the configured batch delay. It reports
// false when the context is cancelled before the next batch may start.
func (t *Translator) waitBetweenBatches(ctx context.Context) bool {
	if t.batchDelay <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(t.batchDelay):
		return true
	}
}
