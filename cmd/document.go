/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/valpere/termitran/internal"
	"github.com/valpere/termitran/internal/extraction"
	"github.com/valpere/termitran/internal/layout"
	"github.com/valpere/termitran/internal/translator"
)

var (
	documentInput  string
	documentOutput string
	documentSource string
	documentTarget string
	documentMode   string
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Translate a PDF while keeping its layout",
	Long: `Translate a PDF document. Text blocks and their positions are recognized
by the extraction service; each block is translated with the terminology
database pinned into the prompt.

Output modes:
  overlay    redraw translations over the original pages (default)
  bilingual  a fresh document listing source and translation line pairs`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pdf, err := os.ReadFile(documentInput)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}

		cfg, logger, err := loadApp()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx := context.Background()

		terms := newTerminologyStore(cfg, logger)
		database := terms.Load(ctx, documentTarget)
		// Document mode has no confirmation step; database terms are
		// pinned as-is.
		for i := range database {
			database[i].Confirmed = true
		}

		extractor := extraction.NewClient(extraction.Config{
			BaseURL: cfg.Extraction.BaseURL,
			AppID:   cfg.Extraction.AppID,
			Secret:  cfg.Extraction.SecretCode,
			Timeout: cfg.Extraction.Timeout,
		}, logger)

		backend := &blockTranslator{
			client: newTranslator(cfg, logger),
			from:   documentSource,
			to:     documentTarget,
			terms:  database,
		}

		doc := layout.NewTranslator(extractor, backend, cfg.Layout.FontPaths, logger,
			layout.WithDPI(float64(cfg.Extraction.DPI), cfg.Layout.TargetDPI),
			layout.WithBatching(cfg.Layout.BatchSize, cfg.Layout.BatchDelay))
		rendered, err := doc.Translate(ctx, pdf, layout.Mode(documentMode))
		if err != nil {
			return err
		}

		if dir := filepath.Dir(documentOutput); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := os.WriteFile(documentOutput, rendered.PDF, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}

		fmt.Printf("Successfully translated %s to %s (%s mode)\n", documentSource, documentTarget, documentMode)
		fmt.Printf("Pages: %d, blocks: %d, translated: %d\n",
			rendered.PageCount, rendered.BlockCount, rendered.TranslatedCount)
		return nil
	},
}

// blockTranslator adapts the prompt-driven translation client to the
// per-block interface the layout renderer uses.
type blockTranslator struct {
	client *translator.Client
	from   string
	to     string
	terms  []internal.Term
}

func (b *blockTranslator) TranslateText(ctx context.Context, text string) (string, error) {
	result, err := b.client.Translate(ctx, translator.Request{
		Text:           text,
		LanguageFrom:   b.from,
		LanguageTo:     b.to,
		ConfirmedTerms: b.terms,
	})
	if err != nil {
		return "", err
	}
	return result.TranslatedText, nil
}

func init() {
	rootCmd.AddCommand(documentCmd)

	documentCmd.Flags().StringVarP(&documentInput, "input", "i", "", "Input PDF file (required)")
	documentCmd.Flags().StringVarP(&documentOutput, "output", "o", "", "Output PDF file (required)")
	documentCmd.Flags().StringVarP(&documentSource, "source", "s", "ZH", "Source language code")
	documentCmd.Flags().StringVarP(&documentTarget, "target", "t", "EN", "Target language code")
	documentCmd.Flags().StringVar(&documentMode, "mode", "overlay", "Output mode: overlay or bilingual")

	documentCmd.MarkFlagRequired("input")
	documentCmd.MarkFlagRequired("output")
}
