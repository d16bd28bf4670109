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
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/termitran/internal/session"
	"github.com/valpere/termitran/internal/validator"
)

var (
	translateInput         string
	translateOutput        string
	translateSource        string
	translateTarget        string
	translateNoTerms       bool
	translateTermOverrides []string
	translateSkipValidate  bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate text with the analyze/confirm/translate workflow",
	Long: `Translate a text file with consistent terminology.

The input is first analyzed: terms already in the terminology database are
matched and novel terms are proposed. All proposed terms are confirmed as
suggested unless overridden:

  --no-terms             confirm none of the proposed terms
  --term 原文=translation  pin a specific translation (repeatable)

The confirmed terms are pinned into the translation prompt, and newly
confirmed terms are written back to the terminology database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if translateInput == translateOutput {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		raw, err := os.ReadFile(translateInput)
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
		mem := newMemoryStore(cfg, logger)
		if mem != nil {
			defer mem.Close()
		}

		var recorder session.Recorder
		if mem != nil {
			recorder = mem
		}
		orch := session.NewOrchestrator(
			session.NewMemoryStore(cfg.Session.TTL, cfg.Session.SweepInterval),
			newAnalysisEngine(cfg, logger),
			newTranslator(cfg, logger),
			terms,
			recorder,
			logger,
			session.WithChunking(cfg.Session.ChunkThreshold, cfg.Session.ChunkSize, cfg.Session.ChunkDelay),
		)

		s, err := orch.Submit(ctx, string(raw), translateSource, translateTarget)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Analysis mode: %s\n", s.Analysis.Mode)
		printTerms("Matched terms", s.Analysis.ExistingTerms)
		printTerms("Proposed terms", s.Analysis.NewTerms)

		confirmations := buildConfirmations(s)
		if _, err := orch.Confirm(ctx, s.ID, confirmations); err != nil {
			return err
		}

		s, err = orch.Translate(ctx, s.ID)
		if err != nil {
			return err
		}

		if !translateSkipValidate {
			v := validator.New()
			if !v.Matches(s.Result.TranslatedText, translateTarget) {
				fmt.Fprintf(os.Stderr, "Warning: output does not look like %s\n", translateTarget)
			}
		}

		if dir := filepath.Dir(translateOutput); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := os.WriteFile(translateOutput, []byte(s.Result.TranslatedText), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}

		fmt.Printf("Successfully translated %s to %s\n", translateSource, translateTarget)
		fmt.Printf("Confirmed terms: %d, tokens used: %d\n", len(s.ConfirmedTerms), s.Result.Usage.TotalTokens)
		return nil
	},
}

// buildConfirmations maps the CLI term flags onto the session confirmation
// contract: nil confirms everything as suggested, an empty map confirms
// nothing, and explicit entries pin or override individual terms.
func buildConfirmations(s *session.Session) map[string]string {
	if translateNoTerms {
		return map[string]string{}
	}
	if len(translateTermOverrides) == 0 {
		return nil
	}

	confirmations := make(map[string]string)
	// Overridden terms are pinned; every other proposed term stays
	// confirmed with its suggestion.
	for _, t := range s.Analysis.ProperNouns {
		confirmations[t.Original] = ""
	}
	for _, override := range translateTermOverrides {
		parts := strings.SplitN(override, "=", 2)
		if len(parts) == 2 {
			confirmations[parts[0]] = parts[1]
		}
	}
	return confirmations
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&translateInput, "input", "i", "", "Input file to translate (required)")
	translateCmd.Flags().StringVarP(&translateOutput, "output", "o", "", "Output file for translation (required)")
	translateCmd.Flags().StringVarP(&translateSource, "source", "s", "ZH", "Source language code")
	translateCmd.Flags().StringVarP(&translateTarget, "target", "t", "EN", "Target language code")
	translateCmd.Flags().BoolVar(&translateNoTerms, "no-terms", false, "Confirm none of the proposed terms")
	translateCmd.Flags().StringSliceVar(&translateTermOverrides, "term", nil, "Pin a term translation as 原文=translation (repeatable)")
	translateCmd.Flags().BoolVar(&translateSkipValidate, "no-validate", false, "Skip output language validation")

	translateCmd.MarkFlagRequired("input")
	translateCmd.MarkFlagRequired("output")
}
