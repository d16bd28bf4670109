// Package memory persists completed translations and confirmed terminology
// in a local SQLite database. Writes are best effort from the workflow's
// point of view; the CLI can list and prune entries.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/termitran/internal"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translations (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS confirmed_terms (
		id TEXT PRIMARY KEY,
		language_pair TEXT NOT NULL,
		original TEXT NOT NULL,
		translation TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(language_pair, original)
	);

	CREATE INDEX IF NOT EXISTS idx_translations_langs ON translations(source_lang, target_lang);
	CREATE INDEX IF NOT EXISTS idx_terms_pair ON confirmed_terms(language_pair);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordTranslation stores one completed translation.
func (s *Store) RecordTranslation(ctx context.Context, sourceText, translatedText, languageFrom, languageTo string) error {
	id := fmt.Sprintf("tr_%d", time.Now().UnixNano())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translations (id, source_text, translated_text, source_lang, target_lang, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, normalizeText(sourceText), translatedText, languageFrom, languageTo, time.Now())
	return err
}

// RecordTerms upserts confirmed terms for a language pair. A re-confirmed
// term replaces its previous translation.
func (s *Store) RecordTerms(ctx context.Context, terms []internal.Term, languagePair string) error {
	for _, t := range terms {
		if t.Original == "" {
			continue
		}
		id := fmt.Sprintf("term_%d", time.Now().UnixNano())
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO confirmed_terms (id, language_pair, original, translation, created_at) VALUES (?, ?, ?, ?, ?)`,
			id, languagePair, normalizeText(t.Original), t.Translation, time.Now())
		if err != nil {
			return err
		}
	}
	return nil
}

// TranslationEntry is a row from the translations table.
type TranslationEntry struct {
	ID             string
	SourceText     string
	TranslatedText string
	SourceLang     string
	TargetLang     string
	CreatedAt      time.Time
}

// ListTranslations returns stored translations, newest first, capped at limit
// (pass 0 for no cap).
func (s *Store) ListTranslations(ctx context.Context, limit int) ([]TranslationEntry, error) {
	query := `SELECT id, source_text, translated_text, source_lang, target_lang, created_at FROM translations ORDER BY created_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []TranslationEntry
	for rows.Next() {
		var e TranslationEntry
		if err := rows.Scan(&e.ID, &e.SourceText, &e.TranslatedText, &e.SourceLang, &e.TargetLang, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TermEntry is a row from the confirmed_terms table.
type TermEntry struct {
	ID           string
	LanguagePair string
	Original     string
	Translation  string
	CreatedAt    time.Time
}

// ListTerms returns confirmed terms, optionally filtered by language pair
// (pass "" to return everything).
func (s *Store) ListTerms(ctx context.Context, languagePair string) ([]TermEntry, error) {
	query := `SELECT id, language_pair, original, translation, created_at FROM confirmed_terms`
	var args []interface{}
	if languagePair != "" {
		query += ` WHERE language_pair = ?`
		args = append(args, languagePair)
	}
	query += ` ORDER BY language_pair, original`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []TermEntry
	for rows.Next() {
		var e TermEntry
		if err := rows.Scan(&e.ID, &e.LanguagePair, &e.Original, &e.Translation, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearTranslations removes all stored translations.
func (s *Store) ClearTranslations(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translations`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization
// for consistent key comparison.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
