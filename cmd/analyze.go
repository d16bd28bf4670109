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
)

var (
	analyzeInput  string
	analyzeSource string
	analyzeTarget string
	analyzeJSON   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a document without translating it",
	Long: `Analyze a text file: detect its domain, style and purpose, match terms
against the terminology database and propose translations for novel terms.

Nothing is translated and nothing is written back to the database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(analyzeInput)
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
		engine := newAnalysisEngine(cfg, logger)

		database := terms.Load(ctx, analyzeTarget)
		result := engine.Analyze(ctx, string(raw), analyzeSource, analyzeTarget, database)

		if analyzeJSON {
			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			return nil
		}

		fmt.Printf("Mode:     %s\n", result.Mode)
		fmt.Printf("Domain:   %s\n", result.DocumentInfo.Domain)
		fmt.Printf("Style:    %s\n", result.DocumentInfo.Style)
		fmt.Printf("Purpose:  %s\n", result.DocumentInfo.Purpose)
		if result.ContentStructure != "" {
			fmt.Printf("Structure: %s\n", result.ContentStructure)
		}
		fmt.Printf("Strategy: %s\n", result.TranslationStrategy)
		printTerms("Matched terms", result.ExistingTerms)
		printTerms("Proposed terms", result.NewTerms)
		if result.ConfirmationText != "" {
			fmt.Printf("\n%s\n", result.ConfirmationText)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "Input file to analyze (required)")
	analyzeCmd.Flags().StringVarP(&analyzeSource, "source", "s", "ZH", "Source language code")
	analyzeCmd.Flags().StringVarP(&analyzeTarget, "target", "t", "EN", "Target language code")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the full analysis as JSON")

	analyzeCmd.MarkFlagRequired("input")
}
