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
	"fmt"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/valpere/termitran/internal"
	"github.com/valpere/termitran/internal/analysis"
	"github.com/valpere/termitran/internal/completion"
	"github.com/valpere/termitran/internal/config"
	"github.com/valpere/termitran/internal/logging"
	"github.com/valpere/termitran/internal/memory"
	"github.com/valpere/termitran/internal/terminology"
	"github.com/valpere/termitran/internal/translator"
)

// loadApp loads configuration and builds the logger every command starts
// from.
func loadApp() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFile)
	return cfg, logger, nil
}

// newTerminologyStore wires the term database. Without knowledge-base
// credentials the store serves the built-in seed dictionary.
func newTerminologyStore(cfg *config.Config, logger *zap.Logger) *terminology.Store {
	var source terminology.Source
	if cfg.Terminology.AppID != "" && cfg.Terminology.AppSecret != "" {
		source = terminology.NewWikiSource(terminology.WikiConfig{
			AppID:     cfg.Terminology.AppID,
			AppSecret: cfg.Terminology.AppSecret,
			BaseURL:   cfg.Terminology.BaseURL,
			Nodes:     cfg.Terminology.Nodes,
		}, logger)
	}
	return terminology.NewStore(source, logger,
		terminology.WithTTL(cfg.Terminology.CacheTTL),
		terminology.WithMaxEntries(cfg.Terminology.MaxEntries))
}

func newAnalysisBackend(cfg *config.Config, logger *zap.Logger) completion.Client {
	return completion.NewChatClient(completion.ChatConfig{
		BaseURL:       cfg.Analysis.BaseURL,
		APIKey:        cfg.Analysis.APIKey,
		Model:         cfg.Analysis.Model,
		FallbackModel: cfg.Analysis.FallbackModel,
		Timeout:       cfg.Analysis.Timeout,
	}, logger)
}

func newTranslationBackend(cfg *config.Config, logger *zap.Logger) completion.Client {
	return completion.NewChatClient(completion.ChatConfig{
		BaseURL:       cfg.Translation.BaseURL,
		APIKey:        cfg.Translation.APIKey,
		Model:         cfg.Translation.Model,
		FallbackModel: cfg.Translation.FallbackModel,
		Timeout:       cfg.Translation.Timeout,
	}, logger)
}

func newAnalysisEngine(cfg *config.Config, logger *zap.Logger) *analysis.Engine {
	return analysis.New(newAnalysisBackend(cfg, logger), cfg.Analysis.MaxTokens, cfg.Analysis.Temperature, logger)
}

func newTranslator(cfg *config.Config, logger *zap.Logger) *translator.Client {
	return translator.New(newTranslationBackend(cfg, logger), cfg.Translation.MaxTokens, cfg.Translation.Temperature, logger)
}

// newMemoryStore opens the local translation memory. A missing or broken
// database is not fatal; persistence is simply skipped.
func newMemoryStore(cfg *config.Config, logger *zap.Logger) *memory.Store {
	if cfg.MemoryPath == "" {
		return nil
	}
	db, err := memory.New(cfg.MemoryPath)
	if err != nil {
		logger.Warn("translation memory unavailable", zap.Error(err))
		return nil
	}
	return db
}

// printTerms renders a term table to stderr so it never mixes with piped
// translation output.
func printTerms(title string, terms []internal.Term) {
	if len(terms) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "%s:\n", title)
	w := tabwriter.NewWriter(os.Stderr, 2, 4, 2, ' ', 0)
	for _, t := range terms {
		origin := "new"
		if t.FromDatabase {
			origin = "database"
		}
		fmt.Fprintf(w, "  %s\t%s\t(%s)\n", t.Original, t.Translation, origin)
	}
	w.Flush()
}
