package terminology_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/valpere/termitran/internal"
	"github.com/valpere/termitran/internal/retrypolicy"
	"github.com/valpere/termitran/internal/terminology"
)

// fakeSource is an in-memory knowledge base that counts calls.
type fakeSource struct {
	mu        sync.Mutex
	content   map[string]string
	fetchErr  error
	appendErr error
	fetches   int
	appends   int
}

func (f *fakeSource) Fetch(ctx context.Context, langKey string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return "", f.fetchErr
	}
	return f.content[langKey], nil
}

func (f *fakeSource) Append(ctx context.Context, langKey string, terms []internal.Term) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appends++
	return f.appendErr
}

func noRetry() terminology.Option {
	return terminology.WithRetryPolicy(retrypolicy.Policy{MaxAttempts: 1, Delay: time.Millisecond, Backoff: 1})
}

func TestLanguagePairKey(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"EN", terminology.KeyToEnglish},
		{"en-US", terminology.KeyToEnglish},
		{"JA", terminology.KeyToJapanese},
		{"ja-JP", terminology.KeyToJapanese},
		{"JP", terminology.KeyToJapanese},
		{"FR", terminology.KeyToEnglish},
		{"", terminology.KeyToEnglish},
	}
	for _, tt := range tests {
		if got := terminology.LanguagePairKey(tt.target); got != tt.want {
			t.Errorf("LanguagePairKey(%q) = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestStore_LoadFromSource(t *testing.T) {
	source := &fakeSource{content: map[string]string{
		terminology.KeyToEnglish: "激光雷达 | LiDAR\n建图 | Mapping",
	}}
	store := terminology.NewStore(source, nil, noRetry())

	terms := store.Load(context.Background(), "EN")
	if len(terms) != 2 {
		t.Fatalf("expected 2 terms, got %d: %v", len(terms), terms)
	}

	// A fresh cache entry must not trigger a second fetch.
	store.Load(context.Background(), "EN")
	if source.fetches != 1 {
		t.Errorf("expected 1 fetch, got %d", source.fetches)
	}
}

func TestStore_LoadSeedFallbackOnError(t *testing.T) {
	source := &fakeSource{fetchErr: errors.New("unreachable")}
	store := terminology.NewStore(source, nil, noRetry())

	terms := store.Load(context.Background(), "EN")
	if len(terms) == 0 {
		t.Fatal("expected seed dictionary, got nothing")
	}
	found := false
	for _, term := range terms {
		if term.Original == "激光雷达" && term.Translation == "LiDAR" {
			found = true
		}
	}
	if !found {
		t.Errorf("seed dictionary should contain 激光雷达 → LiDAR")
	}
}

func TestStore_LoadSeedFallbackWithoutSource(t *testing.T) {
	store := terminology.NewStore(nil, nil)
	terms := store.Load(context.Background(), "EN")
	if len(terms) == 0 {
		t.Fatal("expected seed dictionary with nil source")
	}
}

func TestStore_LoadSeedFallbackOnUnparsableContent(t *testing.T) {
	source := &fakeSource{content: map[string]string{
		terminology.KeyToEnglish: "free prose without any term pairs",
	}}
	store := terminology.NewStore(source, nil, noRetry())

	terms := store.Load(context.Background(), "EN")
	if len(terms) == 0 {
		t.Fatal("expected seed dictionary when nothing parses")
	}
}

func TestStore_TTLExpiryRefetches(t *testing.T) {
	source := &fakeSource{content: map[string]string{
		terminology.KeyToEnglish: "激光雷达 | LiDAR",
	}}
	store := terminology.NewStore(source, nil, noRetry(),
		terminology.WithTTL(10*time.Millisecond))

	store.Load(context.Background(), "EN")
	time.Sleep(20 * time.Millisecond)
	store.Load(context.Background(), "EN")

	if source.fetches != 2 {
		t.Errorf("expected refetch after TTL expiry, got %d fetches", source.fetches)
	}
}

func TestStore_Query(t *testing.T) {
	source := &fakeSource{content: map[string]string{
		terminology.KeyToEnglish: "激光雷达 | LiDAR",
	}}
	store := terminology.NewStore(source, nil, noRetry())

	term := store.Query(context.Background(), "激光雷达", "EN")
	if term == nil {
		t.Fatal("expected a match")
	}
	if term.Translation != "LiDAR" {
		t.Errorf("expected LiDAR, got %q", term.Translation)
	}
	if !term.FromDatabase {
		t.Error("query results must be marked FromDatabase")
	}

	if miss := store.Query(context.Background(), "不存在", "EN"); miss != nil {
		t.Errorf("expected nil on miss, got %v", miss)
	}
	if empty := store.Query(context.Background(), "  ", "EN"); empty != nil {
		t.Errorf("expected nil on empty input, got %v", empty)
	}
}

func TestStore_AddMergesCacheAndPersists(t *testing.T) {
	source := &fakeSource{content: map[string]string{}}
	store := terminology.NewStore(source, nil, noRetry())

	result := store.Add(context.Background(), []internal.Term{
		{Original: "充电桩", Translation: "Charging Dock"},
	}, "EN")

	if !result.Success {
		t.Fatal("add should succeed")
	}
	if !result.SavedRemotely {
		t.Errorf("expected remote save, reason: %s", result.Reason)
	}
	if source.appends != 1 {
		t.Errorf("expected 1 append, got %d", source.appends)
	}

	term := store.Query(context.Background(), "充电桩", "EN")
	if term == nil || term.Translation != "Charging Dock" {
		t.Errorf("added term not queryable: %v", term)
	}
}

func TestStore_AddAfterExpirySurvivesReload(t *testing.T) {
	source := &fakeSource{content: map[string]string{
		terminology.KeyToEnglish: "激光雷达 | LiDAR",
	}}
	store := terminology.NewStore(source, nil, noRetry(),
		terminology.WithTTL(10*time.Millisecond))

	store.Load(context.Background(), "EN")
	time.Sleep(20 * time.Millisecond)

	store.Add(context.Background(), []internal.Term{
		{Original: "回充系统", Translation: "Auto-Recharge System"},
	}, "EN")

	// Add must refresh the bucket so the next lookup serves the merged
	// entries instead of discarding them with a reload.
	term := store.Query(context.Background(), "回充系统", "EN")
	if term == nil || term.Translation != "Auto-Recharge System" {
		t.Fatalf("term added after expiry was lost: %v", term)
	}
	if existing := store.Query(context.Background(), "激光雷达", "EN"); existing == nil {
		t.Error("previously loaded terms must survive the add")
	}
}

func TestStore_AddSucceedsLocallyWhenRemoteFails(t *testing.T) {
	source := &fakeSource{appendErr: errors.New("permission denied")}
	store := terminology.NewStore(source, nil, noRetry())

	result := store.Add(context.Background(), []internal.Term{
		{Original: "禁区", Translation: "Forbidden Zone"},
	}, "EN")

	if !result.Success {
		t.Fatal("local add must succeed regardless of remote failure")
	}
	if result.SavedRemotely {
		t.Error("remote save should be reported as failed")
	}
	if result.Reason == "" {
		t.Error("expected a failure reason")
	}
}

func TestStore_BucketsAreIndependent(t *testing.T) {
	source := &fakeSource{content: map[string]string{
		terminology.KeyToEnglish:  "激光雷达 | LiDAR",
		terminology.KeyToJapanese: "重影:ゴースト,",
	}}
	store := terminology.NewStore(source, nil, noRetry())

	en := store.Query(context.Background(), "激光雷达", "EN")
	if en == nil || en.Translation != "LiDAR" {
		t.Errorf("english bucket: got %v", en)
	}
	ja := store.Query(context.Background(), "重影", "JA")
	if ja == nil || ja.Translation != "ゴースト" {
		t.Errorf("japanese bucket: got %v", ja)
	}
	if cross := store.Query(context.Background(), "重影", "EN"); cross != nil {
		t.Errorf("term must not leak across buckets: %v", cross)
	}
}
