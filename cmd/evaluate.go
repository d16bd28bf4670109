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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/valpere/termitran/internal/evaluator"
)

var (
	evaluateOriginal   string
	evaluateTranslated string
	evaluateSource     string
	evaluateTarget     string
	evaluateJSON       bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a translation against its source",
	Long: `Score a finished translation on accuracy, fluency, terminology
consistency and style, 25 points each. Terms from the terminology database
are passed to the evaluator as the expected term renderings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		original, err := os.ReadFile(evaluateOriginal)
		if err != nil {
			return fmt.Errorf("failed to read original file: %w", err)
		}
		translated, err := os.ReadFile(evaluateTranslated)
		if err != nil {
			return fmt.Errorf("failed to read translated file: %w", err)
		}

		cfg, logger, err := loadApp()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx := context.Background()
		terms := newTerminologyStore(cfg, logger)

		eval := evaluator.New(newAnalysisBackend(cfg, logger), logger)
		result, err := eval.Evaluate(ctx, evaluator.Request{
			OriginalText:   string(original),
			TranslatedText: string(translated),
			LanguageFrom:   evaluateSource,
			LanguageTo:     evaluateTarget,
			Terminology:    terms.Load(ctx, evaluateTarget),
		})
		if err != nil {
			return err
		}

		if evaluateJSON {
			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			return nil
		}

		fmt.Printf("Grade: %s (%d/100)\n", result.Grade, result.Scores.Total)
		fmt.Printf("  Accuracy:    %d/25\n", result.Scores.Accuracy)
		fmt.Printf("  Fluency:     %d/25\n", result.Scores.Fluency)
		fmt.Printf("  Terminology: %d/25\n", result.Scores.Terminology)
		fmt.Printf("  Style:       %d/25\n", result.Scores.Style)
		if result.Summary != "" {
			fmt.Printf("\n%s\n", result.Summary)
		}
		for _, s := range result.Suggestions {
			fmt.Printf("  - %s\n", s)
		}
		if result.RevisedTranslation != "" {
			fmt.Printf("\nRevised translation:\n%s\n", result.RevisedTranslation)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVarP(&evaluateOriginal, "original", "i", "", "Original text file (required)")
	evaluateCmd.Flags().StringVarP(&evaluateTranslated, "translated", "T", "", "Translated text file (required)")
	evaluateCmd.Flags().StringVarP(&evaluateSource, "source", "s", "ZH", "Source language code")
	evaluateCmd.Flags().StringVarP(&evaluateTarget, "target", "t", "EN", "Target language code")
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "Print the full evaluation as JSON")

	evaluateCmd.MarkFlagRequired("original")
	evaluateCmd.MarkFlagRequired("translated")
}
