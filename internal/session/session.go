// Package session drives the interactive translation workflow: submit a
// document for analysis, confirm the proposed terminology, then translate
// with the confirmed terms pinned. Each session walks a fixed lifecycle and
// every operation validates the state it requires.
package session

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/valpere/termitran/internal"
	"github.com/valpere/termitran/internal/analysis"
	"github.com/valpere/termitran/internal/segmenter"
	"github.com/valpere/termitran/internal/terminology"
	"github.com/valpere/termitran/internal/translator"
)

// Status is a session's position in the workflow lifecycle.
type Status string

const (
	StatusAnalyzing            Status = "analyzing"
	StatusAwaitingConfirmation Status = "awaiting_confirmation"
	StatusNounsConfirmed       Status = "nouns_confirmed"
	StatusTranslationCompleted Status = "translation_completed"
)

// Long inputs are translated in segments so a single completion call never
// carries the whole document.
const (
	defaultChunkThreshold = 3000
	defaultChunkSize      = 2000
	defaultChunkDelay     = time.Second
)

// Session is one document's trip through the workflow.
type Session struct {
	ID             string                      `json:"id"`
	Status         Status                      `json:"status"`
	SourceText     string                      `json:"source_text"`
	LanguageFrom   string                      `json:"language_from"`
	LanguageTo     string                      `json:"language_to"`
	Analysis       *analysis.Result            `json:"analysis,omitempty"`
	ConfirmedTerms []internal.Term             `json:"confirmed_terms,omitempty"`
	Result         *internal.TranslationResult `json:"result,omitempty"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

// Analyzer produces the document profile offered for confirmation.
type Analyzer interface {
	Analyze(ctx context.Context, text, languageFrom, languageTo string, database []internal.Term) *analysis.Result
}

// Terminology exposes the term database operations the workflow needs.
type Terminology interface {
	Load(ctx context.Context, targetLanguage string) []internal.Term
	Add(ctx context.Context, terms []internal.Term, targetLanguage string) terminology.AddResult
}

// Translator performs the final translation calls.
type Translator interface {
	Available() error
	Translate(ctx context.Context, req translator.Request) (*internal.TranslationResult, error)
}

// Recorder persists completed work. All calls are best effort; failures are
// logged and never fail the workflow.
type Recorder interface {
	RecordTranslation(ctx context.Context, sourceText, translatedText, languageFrom, languageTo string) error
	RecordTerms(ctx context.Context, terms []internal.Term, languagePair string) error
}

// Orchestrator owns the session lifecycle. Operations on the same session
// are serialized; different sessions proceed independently.
type Orchestrator struct {
	store      Store
	analyzer   Analyzer
	translator Translator
	terms      Terminology
	recorder   Recorder
	logger     *zap.Logger

	chunkThreshold int
	chunkSize      int
	chunkDelay     time.Duration

	locks sync.Map // session ID -> *sync.Mutex
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithChunking sets the rune threshold above which inputs are segmented,
// the segment size, and the delay between sequential segment calls.
// Non-positive threshold or size keeps the default; a zero delay disables
// the inter-segment pause.
func WithChunking(threshold, size int, delay time.Duration) Option {
	return func(o *Orchestrator) {
		if threshold > 0 {
			o.chunkThreshold = threshold
		}
		if size > 0 {
			o.chunkSize = size
		}
		if delay >= 0 {
			o.chunkDelay = delay
		}
	}
}

// NewOrchestrator wires the workflow. recorder may be nil when no memory
// database is configured.
func NewOrchestrator(store Store, analyzer Analyzer, trans Translator, terms Terminology, recorder Recorder, logger *zap.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		store:          store,
		analyzer:       analyzer,
		translator:     trans,
		terms:          terms,
		recorder:       recorder,
		logger:         logger,
		chunkThreshold: defaultChunkThreshold,
		chunkSize:      defaultChunkSize,
		chunkDelay:     defaultChunkDelay,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) lock(id string) *sync.Mutex {
	mu, _ := o.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Submit starts a session: the text is analyzed against the terminology
// database and the session lands in awaiting_confirmation with the proposed
// terms attached.
func (o *Orchestrator) Submit(ctx context.Context, text, languageFrom, languageTo string) (*Session, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	now := time.Now()
	s := &Session{
		ID:           uuid.NewString(),
		Status:       StatusAnalyzing,
		SourceText:   text,
		LanguageFrom: languageFrom,
		LanguageTo:   languageTo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var database []internal.Term
	if o.terms != nil {
		database = o.terms.Load(ctx, languageTo)
	}
	s.Analysis = o.analyzer.Analyze(ctx, text, languageFrom, languageTo, database)
	s.Status = StatusAwaitingConfirmation
	s.UpdatedAt = time.Now()

	o.store.Put(s.ID, s)
	o.logger.Info("session created",
		zap.String("session_id", s.ID),
		zap.String("analysis_mode", string(s.Analysis.Mode)),
		zap.Int("existing_terms", len(s.Analysis.ExistingTerms)),
		zap.Int("new_terms", len(s.Analysis.NewTerms)))
	return s, nil
}

// Confirm records the user's terminology decisions and advances the session
// to nouns_confirmed.
//
// confirmations maps a term's original text to its final translation; an
// empty value keeps the suggested translation. A nil map confirms every
// proposed term as suggested; a non-nil empty map confirms none. Entries
// whose original was never proposed are accepted as ad-hoc terms when they
// carry a translation. Newly confirmed terms that did not come from the
// database are added to it and recorded to memory, best effort.
func (o *Orchestrator) Confirm(ctx context.Context, id string, confirmations map[string]string) (*Session, error) {
	mu := o.lock(id)
	mu.Lock()
	defer mu.Unlock()

	s, ok := o.store.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.Status != StatusAwaitingConfirmation {
		return nil, &InvalidStateError{Current: s.Status, Required: StatusAwaitingConfirmation}
	}
	if s.Analysis == nil {
		return nil, ErrIncompleteSession
	}

	var confirmed []internal.Term
	proposed := make(map[string]struct{}, len(s.Analysis.ProperNouns))
	for _, t := range s.Analysis.ProperNouns {
		proposed[t.Original] = struct{}{}
		if confirmations != nil {
			override, picked := confirmations[t.Original]
			if !picked {
				continue
			}
			if strings.TrimSpace(override) != "" {
				t.Translation = strings.TrimSpace(override)
			}
		}
		t.Confirmed = true
		confirmed = append(confirmed, t)
	}

	// Confirmations outside the proposed list become ad-hoc terms; without
	// a suggested translation to fall back on they need an explicit one.
	adhoc := make([]string, 0, len(confirmations))
	for original, translation := range confirmations {
		if _, known := proposed[original]; known {
			continue
		}
		if strings.TrimSpace(original) == "" || strings.TrimSpace(translation) == "" {
			continue
		}
		adhoc = append(adhoc, original)
	}
	sort.Strings(adhoc)
	for _, original := range adhoc {
		confirmed = append(confirmed, internal.Term{
			Original:    original,
			Translation: strings.TrimSpace(confirmations[original]),
			Confirmed:   true,
		})
	}

	var novel []internal.Term
	for _, t := range confirmed {
		if !t.FromDatabase {
			novel = append(novel, t)
		}
	}
	if len(novel) > 0 && o.terms != nil {
		res := o.terms.Add(ctx, novel, s.LanguageTo)
		o.logger.Info("confirmed terms added to database",
			zap.String("session_id", s.ID),
			zap.Int("count", res.Count),
			zap.Bool("saved_remotely", res.SavedRemotely))
		if o.recorder != nil {
			if err := o.recorder.RecordTerms(ctx, novel, terminology.LanguagePairKey(s.LanguageTo)); err != nil {
				o.logger.Warn("recording confirmed terms failed", zap.Error(err))
			}
		}
	}

	s.ConfirmedTerms = confirmed
	s.Status = StatusNounsConfirmed
	s.UpdatedAt = time.Now()
	o.store.Put(s.ID, s)
	return s, nil
}

// Translate runs the final translation with the confirmed terms pinned into
// the prompt. It requires nouns_confirmed; inputs longer than the chunk
// threshold are segmented and translated sequentially with the per-chunk
// results rejoined on blank lines.
func (o *Orchestrator) Translate(ctx context.Context, id string) (*Session, error) {
	mu := o.lock(id)
	mu.Lock()
	defer mu.Unlock()

	s, ok := o.store.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.Status != StatusNounsConfirmed {
		return nil, &InvalidStateError{Current: s.Status, Required: StatusNounsConfirmed}
	}
	if s.Analysis == nil {
		return nil, ErrIncompleteSession
	}
	if o.translator == nil || o.translator.Available() != nil {
		return nil, ErrTranslationBackendUnavailable
	}

	req := translator.Request{
		LanguageFrom:   s.LanguageFrom,
		LanguageTo:     s.LanguageTo,
		ConfirmedTerms: s.ConfirmedTerms,
		DocumentInfo:   &s.Analysis.DocumentInfo,
		Strategy:       s.Analysis.TranslationStrategy,
	}

	var result *internal.TranslationResult
	if len([]rune(s.SourceText)) > o.chunkThreshold {
		var err error
		result, err = o.translateChunked(ctx, s, req)
		if err != nil {
			return nil, err
		}
	} else {
		req.Text = s.SourceText
		var err error
		result, err = o.translator.Translate(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	if o.recorder != nil {
		if err := o.recorder.RecordTranslation(ctx, s.SourceText, result.TranslatedText, s.LanguageFrom, s.LanguageTo); err != nil {
			o.logger.Warn("recording translation failed", zap.Error(err))
		}
	}

	s.Result = result
	s.Status = StatusTranslationCompleted
	s.UpdatedAt = time.Now()
	o.store.Put(s.ID, s)
	o.logger.Info("session translated",
		zap.String("session_id", s.ID),
		zap.Int("total_tokens", result.Usage.TotalTokens))
	return s, nil
}

func (o *Orchestrator) translateChunked(ctx context.Context, s *Session, req translator.Request) (*internal.TranslationResult, error) {
	chunks := segmenter.Segment(s.SourceText, o.chunkSize)
	o.logger.Info("translating in chunks",
		zap.String("session_id", s.ID),
		zap.Int("chunks", len(chunks)))

	parts := make([]string, 0, len(chunks))
	var usage internal.Usage
	for i, chunk := range chunks {
		if i > 0 && o.chunkDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(o.chunkDelay):
			}
		}
		chunkReq := req
		chunkReq.Text = chunk
		res, err := o.translator.Translate(ctx, chunkReq)
		if err != nil {
			return nil, err
		}
		parts = append(parts, res.TranslatedText)
		usage.Add(res.Usage)
	}

	return &internal.TranslationResult{
		TranslatedText: strings.Join(parts, "\n\n"),
		Usage:          usage,
		TranslatedAt:   time.Now(),
	}, nil
}

// Get returns the session as-is without advancing state.
func (o *Orchestrator) Get(id string) (*Session, error) {
	s, ok := o.store.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}
