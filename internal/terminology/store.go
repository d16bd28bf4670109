// Package terminology caches original→translation term mappings per
// language pair, loading from an external knowledge base on miss or expiry
// and degrading to a built-in seed dictionary on any failure.
package terminology

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/valpere/termitran/internal"
	"github.com/valpere/termitran/internal/retrypolicy"
)

// Language-pair keys: a coarse bucket derived from the target language.
const (
	KeyToEnglish  = "zh_to_en"
	KeyToJapanese = "zh_to_ja"
)

// LanguagePairKey maps a target language code to its terminology bucket.
// Japanese targets get their own bucket; every other code, including an
// unspecified one, uses the default Chinese→English bucket.
func LanguagePairKey(targetLanguage string) string {
	lang := strings.ToUpper(strings.TrimSpace(targetLanguage))
	if strings.HasPrefix(lang, "JA") || lang == "JP" {
		return KeyToJapanese
	}
	return KeyToEnglish
}

// AddResult reports the outcome of Add. Success is true whenever the local
// cache was updated; SavedRemotely indicates whether the remote write also
// succeeded, with Reason carrying the failure cause when it did not.
type AddResult struct {
	Success       bool   `json:"success"`
	Count         int    `json:"count"`
	SavedRemotely bool   `json:"saved_remotely"`
	Reason        string `json:"reason,omitempty"`
}

type cacheEntry struct {
	entries   map[string]string
	order     []string
	expiresAt time.Time
}

// Store caches terminology per language-pair key with time-bounded
// freshness. Expired data is discarded before a reload attempt; a reload
// failure falls back to the seed dictionary, so Load never errors.
type Store struct {
	source     Source
	ttl        time.Duration
	maxEntries int
	retry      retrypolicy.Policy
	logger     *zap.Logger

	mu    sync.Mutex
	cache map[string]*cacheEntry
	locks map[string]*sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides the default 30-minute cache freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithMaxEntries overrides the 500-entry cache ceiling.
func WithMaxEntries(n int) Option {
	return func(s *Store) { s.maxEntries = n }
}

// WithRetryPolicy sets the policy applied to remote fetches.
func WithRetryPolicy(p retrypolicy.Policy) Option {
	return func(s *Store) { s.retry = p }
}

// NewStore creates a terminology store backed by source. source may be nil;
// every load then serves the seed dictionary.
func NewStore(source Source, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		source:     source,
		ttl:        30 * time.Minute,
		maxEntries: 500,
		retry:      retrypolicy.Policy{MaxAttempts: 2, Delay: time.Second, Backoff: 2},
		logger:     logger,
		cache:      make(map[string]*cacheEntry),
		locks:      make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// keyLock returns the per-language-pair mutex, creating it on first use.
// Serializing refreshes per key prevents duplicate remote fetches when two
// callers observe the same expiry.
func (s *Store) keyLock(langKey string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[langKey]
	if !ok {
		l = &sync.Mutex{}
		s.locks[langKey] = l
	}
	return l
}

func (s *Store) cached(langKey string) *cacheEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache[langKey]
}

func (s *Store) storeCache(langKey string, terms []internal.Term) *cacheEntry {
	entry := &cacheEntry{
		entries:   make(map[string]string, len(terms)),
		expiresAt: time.Now().Add(s.ttl),
	}
	for _, t := range terms {
		key := normalizeTerm(t.Original)
		if _, dup := entry.entries[key]; dup {
			continue
		}
		entry.entries[key] = t.Translation
		entry.order = append(entry.order, key)
	}
	s.mu.Lock()
	s.cache[langKey] = entry
	s.mu.Unlock()
	return entry
}

func (e *cacheEntry) terms() []internal.Term {
	out := make([]internal.Term, 0, len(e.order))
	for _, original := range e.order {
		out = append(out, internal.Term{Original: original, Translation: e.entries[original]})
	}
	return out
}

// Load returns the terminology for the language pair implied by
// targetLanguage. Cached entries are served while fresh; otherwise the
// remote source is fetched, parsed, and cached. On any failure the seed
// dictionary is cached and returned — Load never fails.
func (s *Store) Load(ctx context.Context, targetLanguage string) []internal.Term {
	langKey := LanguagePairKey(targetLanguage)

	if entry := s.cached(langKey); entry != nil && time.Now().Before(entry.expiresAt) && len(entry.entries) > 0 {
		return entry.terms()
	}

	lock := s.keyLock(langKey)
	lock.Lock()
	defer lock.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if entry := s.cached(langKey); entry != nil && time.Now().Before(entry.expiresAt) && len(entry.entries) > 0 {
		return entry.terms()
	}

	if s.source == nil {
		s.logger.Warn("terminology source not configured; using seed dictionary",
			zap.String("lang_key", langKey))
		return s.storeCache(langKey, SeedTerms()).terms()
	}

	content, err := retrypolicy.DoValue(ctx, s.retry, func(ctx context.Context) (string, error) {
		return s.source.Fetch(ctx, langKey)
	})
	if err != nil {
		s.logger.Warn("terminology fetch failed; using seed dictionary",
			zap.String("lang_key", langKey), zap.Error(err))
		return s.storeCache(langKey, SeedTerms()).terms()
	}

	terms := ParseTerms(content, s.maxEntries)
	if len(terms) == 0 {
		s.logger.Warn("no terms parsed from knowledge base; using seed dictionary",
			zap.String("lang_key", langKey))
		return s.storeCache(langKey, SeedTerms()).terms()
	}

	s.logger.Info("terminology loaded",
		zap.String("lang_key", langKey), zap.Int("count", len(terms)))
	return s.storeCache(langKey, terms).terms()
}

// Query looks up a single term for the language pair implied by
// targetLanguage, triggering a Load when the cache is empty or expired.
// It returns nil on empty input or no match — never an error.
func (s *Store) Query(ctx context.Context, term, targetLanguage string) *internal.Term {
	term = normalizeTerm(term)
	if term == "" {
		return nil
	}

	langKey := LanguagePairKey(targetLanguage)
	entry := s.cached(langKey)
	if entry == nil || len(entry.entries) == 0 || time.Now().After(entry.expiresAt) {
		s.Load(ctx, targetLanguage)
		entry = s.cached(langKey)
	}
	if entry == nil {
		return nil
	}

	translation, ok := entry.entries[term]
	if !ok {
		return nil
	}
	return &internal.Term{Original: term, Translation: translation, FromDatabase: true}
}

// Add merges terms into the cache for targetLanguage unconditionally, then
// best-effort persists them to the remote source. Persistence failure does
// not fail the call; the result records it.
func (s *Store) Add(ctx context.Context, terms []internal.Term, targetLanguage string) AddResult {
	if len(terms) == 0 {
		return AddResult{Success: true}
	}

	langKey := LanguagePairKey(targetLanguage)
	lock := s.keyLock(langKey)
	lock.Lock()
	entry := s.cached(langKey)
	if entry == nil {
		entry = &cacheEntry{
			entries:   make(map[string]string),
			expiresAt: time.Now().Add(s.ttl),
		}
		s.mu.Lock()
		s.cache[langKey] = entry
		s.mu.Unlock()
	}
	for _, t := range terms {
		key := normalizeTerm(t.Original)
		if key == "" {
			continue
		}
		if _, exists := entry.entries[key]; !exists {
			entry.order = append(entry.order, key)
		}
		entry.entries[key] = t.Translation
	}
	// An Add into an expired bucket must not be lost to the next reload.
	entry.expiresAt = time.Now().Add(s.ttl)
	lock.Unlock()

	result := AddResult{Success: true, Count: len(terms)}

	if s.source == nil {
		result.Reason = "knowledge base not configured"
		return result
	}
	if err := s.source.Append(ctx, langKey, terms); err != nil {
		s.logger.Warn("terminology remote save failed; cached locally",
			zap.String("lang_key", langKey), zap.Error(err))
		result.Reason = err.Error()
		return result
	}

	result.SavedRemotely = true
	return result
}

// normalizeTerm trims whitespace and applies Unicode NFC normalization for
// consistent cache key comparison.
func normalizeTerm(term string) string {
	return norm.NFC.String(strings.TrimSpace(term))
}
