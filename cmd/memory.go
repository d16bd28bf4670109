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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/termitran/internal/memory"
)

var (
	memoryLimit int
	memoryPair  string
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect the local translation memory",
}

func openMemory() (*memory.Store, func(), error) {
	cfg, logger, err := loadApp()
	if err != nil {
		return nil, nil, err
	}
	if cfg.MemoryPath == "" {
		logger.Sync()
		return nil, nil, fmt.Errorf("translation memory is disabled (memory_path is empty)")
	}
	db, err := memory.New(cfg.MemoryPath)
	if err != nil {
		logger.Sync()
		return nil, nil, fmt.Errorf("failed to open translation memory: %w", err)
	}
	cleanup := func() {
		db.Close()
		logger.Sync()
	}
	return db, cleanup, nil
}

var memoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored translations, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, cleanup, err := openMemory()
		if err != nil {
			return err
		}
		defer cleanup()

		entries, err := db.ListTranslations(context.Background(), memoryLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s→%s\t%s\t%s\n",
				e.CreatedAt.Format("2006-01-02 15:04"),
				e.SourceLang, e.TargetLang,
				truncate(e.SourceText, 30), truncate(e.TranslatedText, 30))
		}
		w.Flush()
		fmt.Fprintf(os.Stderr, "%d entries\n", len(entries))
		return nil
	},
}

var memoryTermsCmd = &cobra.Command{
	Use:   "terms",
	Short: "List confirmed terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, cleanup, err := openMemory()
		if err != nil {
			return err
		}
		defer cleanup()

		entries, err := db.ListTerms(context.Background(), memoryPair)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.LanguagePair, e.Original, e.Translation)
		}
		w.Flush()
		fmt.Fprintf(os.Stderr, "%d terms\n", len(entries))
		return nil
	},
}

var memoryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored translations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, cleanup, err := openMemory()
		if err != nil {
			return err
		}
		defer cleanup()

		deleted, err := db.ClearTranslations(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d entries\n", deleted)
		return nil
	},
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

func init() {
	rootCmd.AddCommand(memoryCmd)
	memoryCmd.AddCommand(memoryListCmd, memoryTermsCmd, memoryClearCmd)

	memoryListCmd.Flags().IntVar(&memoryLimit, "limit", 20, "Maximum entries to list (0 = all)")
	memoryTermsCmd.Flags().StringVar(&memoryPair, "pair", "", "Filter by language pair key (e.g. zh_to_en)")
}
