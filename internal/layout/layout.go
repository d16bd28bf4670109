// Package layout translates PDF documents while keeping their visual
// layout. Text blocks and their positions come from the extraction
// service; each block is translated and redrawn, either on top of the
// original page (overlay) or as a paired source/translation listing
// (bilingual).
package layout

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/signintech/gopdf"
	"go.uber.org/zap"

	"github.com/valpere/termitran/internal/extraction"
)

// Mode selects the output format.
type Mode string

const (
	// ModeOverlay redraws each translated block over the original page at
	// its source position.
	ModeOverlay Mode = "overlay"
	// ModeBilingual produces a fresh document listing source and
	// translation line pairs.
	ModeBilingual Mode = "bilingual"
)

// RenderedDocument is a finished translation run.
type RenderedDocument struct {
	PDF             []byte
	PageCount       int
	BlockCount      int
	TranslatedCount int
}

const blockPadding = 2

// Translator renders layout-preserving document translations.
type Translator struct {
	extractor extraction.Service
	backend   TextTranslator
	fontPaths []string
	logger    *zap.Logger

	sourceDPI  float64
	targetDPI  float64
	batchSize  int
	batchDelay time.Duration
}

// Option configures a Translator.
type Option func(*Translator)

// WithDPI sets the extraction resolution and the render resolution. The
// extractor is asked for coordinates at source DPI and the renderer scales
// them by target/source. Non-positive values keep the defaults.
func WithDPI(source, target float64) Option {
	return func(t *Translator) {
		if source > 0 {
			t.sourceDPI = source
		}
		if target > 0 {
			t.targetDPI = target
		}
	}
}

// WithBatching sets how many blocks are translated concurrently per group
// and the pause between groups. A non-positive size keeps the default; a
// zero delay disables the pause.
func WithBatching(size int, delay time.Duration) Option {
	return func(t *Translator) {
		if size > 0 {
			t.batchSize = size
		}
		if delay >= 0 {
			t.batchDelay = delay
		}
	}
}

// NewTranslator wires a document translator. fontPaths are candidate TTF
// files tried in order; the first readable one is embedded in the output.
func NewTranslator(extractor extraction.Service, backend TextTranslator, fontPaths []string, logger *zap.Logger, opts ...Option) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Translator{
		extractor:  extractor,
		backend:    backend,
		fontPaths:  fontPaths,
		logger:     logger,
		sourceDPI:  defaultSourceDPI,
		targetDPI:  defaultTargetDPI,
		batchSize:  defaultBatchSize,
		batchDelay: defaultBatchDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate extracts, translates, and re-renders pdf. Extraction failure is
// fatal; individual block failures degrade to the source text.
func (t *Translator) Translate(ctx context.Context, pdf []byte, mode Mode) (*RenderedDocument, error) {
	if t.extractor == nil {
		return nil, extraction.ErrNotConfigured
	}

	extracted, err := t.extractor.Extract(ctx, pdf, int(t.sourceDPI))
	if err != nil {
		return nil, fmt.Errorf("document extraction failed: %w", err)
	}

	translations := t.translateBlocks(ctx, extracted.Pages)

	blockCount := 0
	translatedCount := 0
	for _, page := range extracted.Pages {
		for _, b := range page.Blocks {
			blockCount++
			if tr, ok := translations[b.Text]; ok && tr != b.Text {
				translatedCount++
			}
		}
	}

	var rendered []byte
	switch mode {
	case ModeBilingual:
		rendered, err = t.renderBilingual(extracted, translations)
	case ModeOverlay, "":
		rendered, err = t.renderOverlay(pdf, extracted, translations)
	default:
		return nil, fmt.Errorf("unknown layout mode %q", mode)
	}
	if err != nil {
		return nil, err
	}

	t.logger.Info("document rendered",
		zap.String("mode", string(mode)),
		zap.Int("pages", extracted.PageCount),
		zap.Int("blocks", blockCount),
		zap.Int("translated", translatedCount))
	return &RenderedDocument{
		PDF:             rendered,
		PageCount:       extracted.PageCount,
		BlockCount:      blockCount,
		TranslatedCount: translatedCount,
	}, nil
}

// resolveFont returns the first configured font file that exists.
func (t *Translator) resolveFont() (string, error) {
	for _, path := range t.fontPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.New("layout: no usable font file configured")
}

// renderOverlay imports each original page and paints translated blocks
// over their source positions: a padded white patch first, then the
// translation sized to fit the block.
func (t *Translator) renderOverlay(src []byte, extracted *extraction.Result, translations map[string]string) ([]byte, error) {
	fontPath, err := t.resolveFont()
	if err != nil {
		return nil, err
	}

	scale := t.scale()
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{Unit: gopdf.UnitPT, PageSize: *gopdf.PageSizeA4})
	if err := pdf.AddTTFFont("doc", fontPath); err != nil {
		return nil, fmt.Errorf("loading font %s: %w", fontPath, err)
	}

	for i, page := range extracted.Pages {
		pageW := page.Width * scale
		pageH := page.Height * scale
		if pageW <= 0 || pageH <= 0 {
			pageW, pageH = gopdf.PageSizeA4.W, gopdf.PageSizeA4.H
		}

		pdf.AddPageWithOption(gopdf.PageOption{PageSize: &gopdf.Rect{W: pageW, H: pageH}})
		rs := io.ReadSeeker(bytes.NewReader(src))
		tpl := pdf.ImportPageStream(&rs, i+1, "/MediaBox")
		pdf.UseImportedTemplate(tpl, 0, 0, pageW, pageH)

		for _, b := range page.Blocks {
			translated, ok := translations[b.Text]
			if !ok || translated == b.Text {
				continue
			}
			box, ok := BlockBox(b.Quad, scale, pageH)
			if !ok {
				continue
			}

			// Canvas Y grows upward; gopdf draws from the top, so the
			// box top sits at pageH - (box.Y + box.Height).
			topY := pageH - box.Y - box.Height

			pdf.SetFillColor(255, 255, 255)
			pdf.RectFromUpperLeftWithStyle(
				box.X-blockPadding, topY-blockPadding,
				box.Width+2*blockPadding, box.Height+2*blockPadding, "F")

			size := FontSizeFor(box.Height)
			if err := pdf.SetFont("doc", "", size); err != nil {
				return nil, err
			}
			pdf.SetTextColor(0, 0, 0)
			pdf.SetXY(box.X, topY+(box.Height-size)/2)
			if err := pdf.Cell(&gopdf.Rect{W: box.Width, H: size}, translated); err != nil {
				t.logger.Warn("block render failed, leaving original visible",
					zap.Int("page", page.PageID),
					zap.Error(err))
			}
		}
	}

	return pdf.GetBytesPdf(), nil
}

// Bilingual page geometry.
const (
	bilingualPageW    = 595
	bilingualPageH    = 842
	bilingualMargin   = 50
	bilingualLineH    = 16
	bilingualFontSize = 11
	bilingualMaxRunes = 80
)

// renderBilingual produces a fresh paginated document with each block's
// source and translation on adjacent lines.
func (t *Translator) renderBilingual(extracted *extraction.Result, translations map[string]string) ([]byte, error) {
	fontPath, err := t.resolveFont()
	if err != nil {
		return nil, err
	}

	pdf := &gopdf.GoPdf{}
	pageSize := gopdf.Rect{W: bilingualPageW, H: bilingualPageH}
	pdf.Start(gopdf.Config{Unit: gopdf.UnitPT, PageSize: pageSize})
	if err := pdf.AddTTFFont("doc", fontPath); err != nil {
		return nil, fmt.Errorf("loading font %s: %w", fontPath, err)
	}
	if err := pdf.SetFont("doc", "", bilingualFontSize); err != nil {
		return nil, err
	}
	pdf.SetTextColor(0, 0, 0)

	pdf.AddPage()
	y := float64(bilingualMargin)

	writeLine := func(text string) error {
		if y > bilingualPageH-bilingualMargin-3*bilingualLineH {
			pdf.AddPage()
			y = bilingualMargin
		}
		pdf.SetXY(bilingualMargin, y)
		err := pdf.Cell(&gopdf.Rect{W: bilingualPageW - 2*bilingualMargin, H: bilingualLineH}, truncateRunes(text, bilingualMaxRunes))
		y += bilingualLineH
		return err
	}

	for _, page := range extracted.Pages {
		for _, b := range page.Blocks {
			translated := translations[b.Text]
			if translated == "" {
				translated = b.Text
			}
			if err := writeLine("原: " + b.Text); err != nil {
				t.logger.Warn("bilingual line render failed", zap.Error(err))
			}
			if err := writeLine("译: " + translated); err != nil {
				t.logger.Warn("bilingual line render failed", zap.Error(err))
			}
			y += bilingualLineH / 2
		}
	}

	return pdf.GetBytesPdf(), nil
}

func truncateRunes(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}
